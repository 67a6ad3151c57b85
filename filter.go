package docpager

import (
	"maps"
	"reflect"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
)

// compose returns a new filter matching base AND fragment. Neither input is
// modified. Fragment keys are merged at the top level unless they collide
// with keys of base, in which case the fragment goes into "$and".
func compose(base, fragment bson.M) bson.M {
	ret := maps.Clone(base)
	if ret == nil {
		ret = bson.M{}
	}
	if len(fragment) == 0 {
		return ret
	}

	collides := lo.SomeBy(lo.Keys(fragment), func(k string) bool {
		_, ok := base[k]
		return ok
	})
	if !collides {
		maps.Copy(ret, fragment)
		return ret
	}

	ret["$and"] = append(andClauses(base["$and"]), fragment)

	return ret
}

// andClauses copies the clauses of an existing "$and" into a fresh slice.
func andClauses(v any) bson.A {
	switch vt := v.(type) {
	case nil:
		return bson.A{}
	case bson.A:
		return append(bson.A{}, vt...)
	case []any:
		return append(bson.A{}, vt...)
	case []bson.M:
		return lo.Map(vt, func(m bson.M, _ int) any { return m })
	case []bson.D:
		return lo.Map(vt, func(d bson.D, _ int) any { return d })
	default:
		return bson.A{bson.M{"$and": vt}}
	}
}

// prune returns a copy of filter without keys whose value carries no
// constraint: nil, empty strings, empty slices and empty documents.
func prune(filter bson.M) bson.M {
	return lo.PickBy(filter, func(_ string, v any) bool {
		return !isBlank(v)
	})
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
