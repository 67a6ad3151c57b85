package docpager

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"
)

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

func (o Direction) ForOperator() Operator {
	switch o {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}
}

// Reverse returns the opposite direction.
func (o Direction) Reverse() Direction {
	return lo.Ternary(o == DirectionDESC, DirectionASC, DirectionDESC)
}

// Sign returns the sort value used in MongoDB sort documents: 1 for ASC and
// -1 for DESC.
func (o Direction) Sign() int {
	return lo.Ternary(o == DirectionDESC, -1, 1)
}

// Key describes a single ordering key of a paginated collection.
//
// Field is a document attribute, nested attributes are addressed with dots
// ("author.name"). Coerce converts a value decoded from a cursor token back to
// the type stored in the collection; nil means the value is used as is.
// Direction never changes after the Key is built.
type Key struct {
	Field     string
	Coerce    CoerceFunc
	Direction Direction
}

// DefaultIdentifier is the unique tiebreaker appended to every ordering.
var DefaultIdentifier = Key{
	Field:     "_id",
	Coerce:    CoerceObjectID,
	Direction: DirectionASC,
}

// IsZero reports whether the key was left unset.
func (k Key) IsZero() bool {
	return k.Field == ""
}

// AfterOf returns a condition selecting values strictly after value in the
// key's direction. The second result is false when value cannot be coerced;
// the caller must then drop the constraint.
func (k Key) AfterOf(value any) (Condition, bool) {
	return k.condition(value, k.Direction.ForOperator())
}

// BeforeOf is the mirror of AfterOf.
func (k Key) BeforeOf(value any) (Condition, bool) {
	return k.condition(value, k.Direction.ForOperator().Flip())
}

// EqualTo returns an equality condition on the key.
func (k Key) EqualTo(value any) (Condition, bool) {
	return k.condition(value, operatorEq)
}

// EffectiveDirection returns the direction the key is sorted in for the
// requested traversal.
func (k Key) EffectiveDirection(reverse bool) Direction {
	return lo.Ternary(reverse, k.Direction.Reverse(), k.Direction)
}

func (k Key) condition(value any, op Operator) (Condition, bool) {
	coerced, err := k.coerce(value)
	if err != nil {
		return Condition{}, false
	}

	return Condition{Field: k.Field, Operator: op, Value: coerced}, true
}

func (k Key) coerce(value any) (ret any, err error) {
	if k.Coerce == nil {
		return value, nil
	}

	defer func() {
		if r := recover(); r != nil {
			ret, err = nil, fmt.Errorf("coerce '%s': %v", k.Field, r)
		}
	}()

	return k.Coerce(value)
}

func (k Key) validate() error {
	return OrderBy{Column: k.Field, Direction: k.Direction}.validate()
}

type (
	Orderings []OrderBy
	OrderBy   struct {
		Column    string
		Direction Direction
	}

	ColumnAlias = string

	// KeyMapping maps external sort aliases to ordering keys. Use it to
	// whitelist the fields a client is allowed to sort by.
	KeyMapping = map[ColumnAlias]Key
)

var _availableColumnNameSymbols = append([]rune("_.-"), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("%w: invalid ordering direction '%s'", ErrInvalidKey, o.Direction)
	}

	if o.Column == "" {
		return fmt.Errorf("%w: empty ordering field", ErrInvalidKey)
	}

	// Guard against operator injection by restricting allowed characters in field names.
	if !lo.Every(_availableColumnNameSymbols, []rune(o.Column)) {
		return fmt.Errorf("%w: ordering field name contains forbidden symbols '%s'", ErrInvalidKey, o.Column)
	}

	return nil
}

// ToSQLSlice converts Orderings to a slice of strings in the form
// "<order_column> <order_direction>" suitable for SQL query builders.
//
// Example: for Orderings: [{"a", "ASC"}, {"b", "DESC"}] returns ["a ASC", "b DESC"].
func (o Orderings) ToSQLSlice() []string {
	ret := make([]string, 0, len(o))
	for _, ordering := range o {
		ret = append(ret, fmt.Sprintf("%s %s", ordering.Column, ordering.Direction))
	}

	return ret
}

// ToSQL converts Orderings to a single string
// "<order_column_1> <order_direction_1>, <order_column_2> <order_direction_2>"
// suitable for embedding into an SQL query.
func (o Orderings) ToSQL() string {
	return strings.Join(o.ToSQLSlice(), ", ")
}

// Apply applies the ordering to a gorm query.
func (o Orderings) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.ToSQL())
}

// BSON converts Orderings to an ordered MongoDB sort document.
//
// Example: for [{"a", "ASC"}, {"b", "DESC"}] returns {a: 1, b: -1}.
func (o Orderings) BSON() bson.D {
	ret := make(bson.D, 0, len(o))
	for _, ordering := range o {
		ret = append(ret, bson.E{Key: ordering.Column, Value: ordering.Direction.Sign()})
	}

	return ret
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	var err error
	for _, ordering := range o {
		err = ordering.validate()
		if err != nil {
			return err
		}
	}

	return nil
}

// ParseKeys builds the primary and the optional secondary key from a list of
// strings in the format "alias asc|desc". Aliases are resolved via mapping,
// the direction from the string overrides the one stored in the mapping.
func ParseKeys(stringsOrderings []string, mapping KeyMapping) (Key, *Key, error) {
	if len(stringsOrderings) > 2 {
		return Key{}, nil, fmt.Errorf("%w: at most two sort keys are supported, got %d", ErrInvalidKey, len(stringsOrderings))
	}

	aliases := lo.Keys(mapping)
	keys := make([]Key, 0, len(stringsOrderings))

	for _, stringOrdering := range stringsOrderings {
		cutStringOrdering := strings.Fields(stringOrdering)
		if len(cutStringOrdering) != 2 {
			return Key{}, nil, fmt.Errorf("%w: invalid ordering string format '%s'", ErrInvalidKey, stringOrdering)
		}

		alias := cutStringOrdering[0]
		key, ok := mapping[alias]
		if !ok {
			return Key{}, nil, fmt.Errorf("%w '%s', closest: '%s'", ErrUnknownAlias, alias, closestAlias(alias, aliases))
		}

		key.Direction = Direction(strings.ToUpper(cutStringOrdering[1]))
		if err := key.validate(); err != nil {
			return Key{}, nil, err
		}

		keys = append(keys, key)
	}

	switch len(keys) {
	case 0:
		return Key{}, nil, nil
	case 1:
		return keys[0], nil, nil
	default:
		return keys[0], &keys[1], nil
	}
}

func closestAlias(input ColumnAlias, dataSet []ColumnAlias) ColumnAlias {
	minDist := math.MaxInt
	closest := ""

	for _, dataSetAlias := range dataSet {
		dist := levenshtein([]rune(dataSetAlias), []rune(input))
		if dist < minDist || (dist == minDist && dataSetAlias < closest) {
			minDist = dist
			closest = dataSetAlias
		}
	}

	return closest
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := lo.Ternary(a[i-1] == b[j-1], 0, 1)
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	return min(a, min(b, c))
}
