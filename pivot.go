package docpager

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pivot holds the ordering key values of one boundary document, keyed by
// field. It lives only while the predicates and tokens of a single response
// are being built.
type Pivot map[string]any

// Getters maps fields to accessors. Use it when the field cannot be read
// through the document's BSON representation.
//
//	docpager.Getters[Post]{
//		"_id":       func(p Post) any { return p.ID },
//		"createdAt": func(p Post) any { return p.CreatedAt },
//	}
type Getters[T any] map[string]func(T) any

// lookupField reads a possibly nested field from a document. Maps are walked
// directly, anything else goes through bson.Marshal so that struct tags apply.
func lookupField(doc any, field string) (any, bool) {
	path := strings.Split(field, ".")

	switch d := doc.(type) {
	case nil:
		return nil, false
	case bson.M:
		return lookupMap(d, path)
	case map[string]any:
		return lookupMap(d, path)
	case bson.D:
		return lookupMap(d.Map(), path)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, false
	}

	rv, err := bson.Raw(raw).LookupErr(path...)
	if err != nil {
		return nil, false
	}

	return rawValue(rv)
}

func lookupMap(m map[string]any, path []string) (any, bool) {
	v, ok := m[path[0]]
	if !ok {
		return nil, false
	}

	if len(path) == 1 {
		return v, v != nil
	}

	switch next := v.(type) {
	case bson.M:
		return lookupMap(next, path[1:])
	case map[string]any:
		return lookupMap(next, path[1:])
	case bson.D:
		return lookupMap(next.Map(), path[1:])
	default:
		return lookupField(next, strings.Join(path[1:], "."))
	}
}

func rawValue(rv bson.RawValue) (any, bool) {
	switch rv.Type {
	case bsontype.Null, bsontype.Undefined:
		return nil, false
	case bsontype.ObjectID:
		return rv.ObjectID(), true
	case bsontype.DateTime:
		return rv.Time().UTC(), true
	case bsontype.String:
		return rv.StringValue(), true
	case bsontype.Int32:
		return rv.Int32(), true
	case bsontype.Int64:
		return rv.Int64(), true
	case bsontype.Double:
		return rv.Double(), true
	case bsontype.Boolean:
		return rv.Boolean(), true
	}

	var out any
	if err := rv.Unmarshal(&out); err != nil {
		return nil, false
	}

	return out, true
}

// tokenValue renders a pivot value for a cursor token. JSON scalars are kept
// as they are so that untyped keys decode to comparable values. Time values
// become RFC 3339 text in UTC and object ids their hex form.
func tokenValue(v any) any {
	switch vt := v.(type) {
	case time.Time:
		return vt.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if vt == nil {
			return nil
		}
		return vt.UTC().Format(time.RFC3339Nano)
	case primitive.DateTime:
		return vt.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return vt.Hex()
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return vt
	case fmt.Stringer:
		return vt.String()
	default:
		return fmt.Sprint(v)
	}
}
