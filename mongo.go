package docpager

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionCounter counts documents of a MongoDB collection.
type CollectionCounter struct {
	Collection *mongo.Collection
}

func (c CollectionCounter) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}

	n, err := c.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count documents in '%s': %w", c.Collection.Name(), err)
	}

	return n, nil
}

var _ Counter = CollectionCounter{}

// Paginate fetches the page described by session from coll and builds the
// response. It is a shortcut for callers that need nothing between the fetch
// and the build.
func Paginate[T any](ctx context.Context, coll *mongo.Collection, session *Session[T]) (*Response[T], error) {
	cur, err := coll.Find(ctx, session.Filter(), session.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("cannot fetch page: %w", err)
	}

	page := make([]T, 0, max(session.Limit(), 0))
	if err = cur.All(ctx, &page); err != nil {
		return nil, fmt.Errorf("cannot decode page: %w", err)
	}

	return session.Build(ctx, page, CollectionCounter{Collection: coll})
}
