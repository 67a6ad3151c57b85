package docpager

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoerceFunc converts a raw cursor value into the type the collection stores
// for a key. Cursor tokens carry times and object ids as text and decode
// numbers as int64 or float64, so a CoerceFunc must accept those. It must
// also accept the already typed value, because boundary pivots are taken
// straight from fetched documents.
type CoerceFunc func(raw any) (any, error)

// CoerceObjectID accepts a hex string or a primitive.ObjectID.
func CoerceObjectID(raw any) (any, error) {
	switch v := raw.(type) {
	case primitive.ObjectID:
		return v, nil
	case string:
		return primitive.ObjectIDFromHex(v)
	default:
		return nil, fmt.Errorf("cannot coerce %T to ObjectID", raw)
	}
}

// CoerceTime accepts an RFC 3339 string, time.Time or primitive.DateTime.
func CoerceTime(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case primitive.DateTime:
		return v.Time().UTC(), nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, err
		}
		return parsed.UTC(), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to time", raw)
	}
}

// CoerceInt64 accepts a decimal string or any integer type. Unsigned values
// above math.MaxInt64 are rejected.
func CoerceInt64(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt64(uint64(v))
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt64(v)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return nil, fmt.Errorf("cannot coerce %T to int64", raw)
	}
}

func uintToInt64(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("cannot coerce %d to int64: value overflows", v)
	}

	return int64(v), nil
}

// CoerceFloat64 accepts a decimal string, a float or an integer.
func CoerceFloat64(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return nil, fmt.Errorf("cannot coerce %T to float64", raw)
	}
}

// CoerceString accepts strings only.
func CoerceString(raw any) (any, error) {
	v, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %T to string", raw)
	}

	return v, nil
}
