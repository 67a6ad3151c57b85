package docpager

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matches evaluates the subset of MongoDB query operators the session emits
// against an in-memory document.
func matches(doc bson.M, filter bson.M) bool {
	for field, cond := range filter {
		switch field {
		case "$and":
			for _, sub := range cond.(bson.A) {
				if !matches(doc, asM(sub)) {
					return false
				}
			}
		case "$or":
			matched := false
			for _, sub := range cond.(bson.A) {
				if matches(doc, asM(sub)) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		default:
			if !matchesField(doc, field, cond) {
				return false
			}
		}
	}

	return true
}

func matchesField(doc bson.M, field string, cond any) bool {
	v, ok := lookupField(doc, field)

	ops, isOps := cond.(bson.M)
	if !isOps {
		return ok && compareValues(v, cond) == 0
	}

	for op, arg := range ops {
		switch op {
		case "$exists":
			if ok != arg.(bool) {
				return false
			}
		case "$eq":
			if !ok || compareValues(v, arg) != 0 {
				return false
			}
		case "$gt":
			if !ok || compareValues(v, arg) <= 0 {
				return false
			}
		case "$lt":
			if !ok || compareValues(v, arg) >= 0 {
				return false
			}
		default:
			panic(fmt.Sprintf("unsupported operator %s", op))
		}
	}

	return true
}

func asM(v any) bson.M {
	switch vt := v.(type) {
	case bson.M:
		return vt
	case bson.D:
		return vt.Map()
	default:
		panic(fmt.Sprintf("unexpected clause %T", v))
	}
}

func compareValues(a, b any) int {
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		if !ok {
			panic(fmt.Sprintf("cannot compare %T with %T", a, b))
		}
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	switch at := a.(type) {
	case string:
		return strings.Compare(at, b.(string))
	case time.Time:
		return at.Compare(b.(time.Time))
	case primitive.ObjectID:
		return strings.Compare(at.Hex(), b.(primitive.ObjectID).Hex())
	default:
		panic(fmt.Sprintf("cannot compare %T", a))
	}
}

func asFloat(v any) (float64, bool) {
	switch vt := v.(type) {
	case int:
		return float64(vt), true
	case int32:
		return float64(vt), true
	case int64:
		return float64(vt), true
	case float64:
		return vt, true
	default:
		return 0, false
	}
}

// sortDocs sorts docs in place by a MongoDB sort document.
func sortDocs(docs []bson.M, order bson.D) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, e := range order {
			dir, ok := e.Value.(int)
			if !ok {
				continue
			}
			vi, _ := lookupField(docs[i], e.Key)
			vj, _ := lookupField(docs[j], e.Key)
			if c := compareValues(vi, vj) * dir; c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// memStore is a collection held in memory.
type memStore []bson.M

func (m memStore) find(filter bson.M, order bson.D, limit int) []bson.M {
	var ret []bson.M
	for _, doc := range m {
		if matches(doc, filter) {
			ret = append(ret, doc)
		}
	}

	sortDocs(ret, order)
	if limit > 0 && len(ret) > limit {
		ret = ret[:limit]
	}

	return ret
}

func (m memStore) CountDocuments(_ context.Context, filter bson.M) (int64, error) {
	var n int64
	for _, doc := range m {
		if matches(doc, filter) {
			n++
		}
	}

	return n, nil
}
