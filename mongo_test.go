package docpager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func Test_CollectionCounter(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.posts", mtest.FirstBatch, bson.D{{Key: "n", Value: int64(4)}}))

		n, err := CollectionCounter{Collection: mt.Coll}.CountDocuments(context.Background(), nil)
		require.NoError(mt, err)
		assert.EqualValues(mt, 4, n)
	})

	mt.Run("error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "unknown operator",
		}))

		_, err := CollectionCounter{Collection: mt.Coll}.CountDocuments(context.Background(), bson.M{"$bad": 1})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), mt.Coll.Name())
	})
}

func Test_Paginate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empty page", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.posts", mtest.FirstBatch))

		s, err := NewSession[tPost](Request{Paging: Paging{Limit: 10}})
		require.NoError(mt, err)

		resp, err := Paginate(context.Background(), mt.Coll, s)
		require.NoError(mt, err)
		assert.Empty(mt, resp.Data)
		assert.Nil(mt, resp.Paging.Next)
		assert.Nil(mt, resp.Paging.Previous)
	})

	mt.Run("fetch error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad sort",
		}))

		s, err := NewSession[tPost](Request{})
		require.NoError(mt, err)

		_, err = Paginate(context.Background(), mt.Coll, s)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "cannot fetch page")
	})
}
