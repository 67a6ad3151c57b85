package docpager

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Counter counts documents matching a filter. It is the only store
// operation the session performs itself. Implementations must report an
// empty match as zero, not as an error.
type Counter interface {
	CountDocuments(ctx context.Context, filter bson.M) (int64, error)
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(ctx context.Context, filter bson.M) (int64, error)

func (f CounterFunc) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	return f(ctx, filter)
}

var _ Counter = CounterFunc(nil)
