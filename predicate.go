package docpager

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// Condition is a single comparison Operator(Field, Value).
	Condition struct {
		Field    string
		Operator Operator
		Value    any
	}

	conjunction []Condition

	// Predicate represents the disjunctive normal form (DNF) of a seek
	// condition. Each conjunction is joined by OR, and each conjunction
	// consists of a list of conditions which are joined by AND.
	//
	// Thus:
	//
	//	DNF = X1 OR X2 ... OR Xn, where Xi = Ai1 AND Ai2 ... AND Aim.
	//
	// An empty Predicate puts no constraint on the dataset.
	Predicate []conjunction
)

// IsEmpty reports whether the predicate constrains nothing.
func (p Predicate) IsEmpty() bool {
	for _, conj := range p {
		if len(conj) > 0 {
			return false
		}
	}

	return true
}

// BSON renders a condition as a MongoDB operator document. Strict
// inequalities also require the field to be present.
func (c Condition) BSON() bson.M {
	if c.Operator == operatorEq {
		return bson.M{c.Operator.Mongo(): c.Value}
	}

	return bson.M{c.Operator.Mongo(): c.Value, "$exists": true}
}

func (d conjunction) toBSON() bson.M {
	if len(d) == 0 {
		return nil
	}

	ret := make(bson.M, len(d))
	for _, cond := range d {
		if prev, ok := ret[cond.Field].(bson.M); ok {
			for k, v := range cond.BSON() {
				prev[k] = v
			}
			continue
		}

		ret[cond.Field] = cond.BSON()
	}

	return ret
}

// BSON renders the predicate as a MongoDB filter fragment:
//
//	{a: {$gt: 1, $exists: true}}
//	{$or: [{a: {$gt: 1, $exists: true}}, {a: {$eq: 1}, b: {$gt: "x", $exists: true}}]}
//
// Returns nil for an empty predicate.
func (p Predicate) BSON() bson.M {
	ors := make(bson.A, 0, len(p))
	for _, conj := range p {
		doc := conj.toBSON()
		if doc == nil {
			continue
		}

		ors = append(ors, doc)
	}

	switch len(ors) {
	case 0:
		return nil
	case 1:
		return ors[0].(bson.M)
	default:
		return bson.M{"$or": ors}
	}
}

// Apply adds the predicate to a gorm query. An empty predicate leaves the
// query untouched.
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	exp := p.toGORMExpression()
	if exp == nil {
		return db
	}

	return db.Clauses(exp)
}

// ToSQL returns the predicate as an SQL expression with "?" placeholders.
//
// Usage:
//
//	where, args := p.ToSQL()
//	query := fmt.Sprintf("SELECT * FROM table WHERE %s", where)
func (p Predicate) ToSQL() (string, []driver.Value) {
	return p.toSQLClause()
}

// toGORMExpression converts a condition of the form Operator(Field, Value)
// into an SQL condition "Field Operator Value" represented as a clause.Expression.
//
// IMPORTANT: The method uses the SQL placeholder "?".
func (c Condition) toGORMExpression() clause.Expression {
	sqlClause, arg := c.toSQLClause()

	return clause.Expr{
		SQL:  sqlClause,
		Vars: []any{arg},
	}
}

// toSQLClause converts a condition to an SQL condition of the form
// "Field Operator ?" with a corresponding value.
//
// Example:
//
//	Condition = { Field: "id", Operator: ">", Value: 123}
//
// Result:
//
//	("id > ?", 123)
func (c Condition) toSQLClause() (string, driver.Value) {
	return fmt.Sprintf("%s %s ?", c.Field, c.Operator), parseAnyValue(c.Value)
}

func parseAnyValue(v any) any {
	// Cursor values travel as text; give time-like strings back their type.
	fnParseBytesToTimeOrValue := func(vBytes []byte) any {
		dst := time.Time{}
		err := dst.UnmarshalText(vBytes)
		if err == nil {
			return dst
		}

		return v
	}

	switch vt := v.(type) {
	case string:
		return fnParseBytesToTimeOrValue([]byte(vt))
	case []byte:
		return fnParseBytesToTimeOrValue(vt)
	default:
		return v
	}
}

// toGORMExpression converts a conjunction (K1, K2, K3) into a gorm expression
// "K1 AND K2 AND K3".
func (d conjunction) toGORMExpression() clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(d))
	for _, cond := range d {
		andExpressions = append(andExpressions, cond.toGORMExpression())
	}

	if len(andExpressions) == 1 {
		return andExpressions[0]
	} else if len(andExpressions) > 1 {
		return clause.And(andExpressions...)
	}

	return nil
}

// toSQLClause converts a conjunction (K1, K2, K3) into an SQL condition
// "(K1 AND K2 AND K3)" with corresponding values.
func (d conjunction) toSQLClause() (string, []driver.Value) {
	andClauses := make([]string, 0, len(d))
	andValues := make([]driver.Value, 0, len(d))

	for _, cond := range d {
		andClause, andValue := cond.toSQLClause()
		andClauses = append(andClauses, andClause)
		andValues = append(andValues, andValue)
	}

	if len(andClauses) >= 1 {
		return fmt.Sprintf("(%s)", strings.Join(andClauses, " AND ")), andValues
	}

	return "", nil
}

// toGORMExpression joins the conjunctions with OR.
func (p Predicate) toGORMExpression() clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(p))

	for _, conj := range p {
		andExpressions := conj.toGORMExpression()
		if andExpressions == nil {
			continue
		}

		orExpressions = append(orExpressions, andExpressions)
	}

	if len(orExpressions) == 1 {
		return orExpressions[0]
	} else if len(orExpressions) > 1 {
		return clause.Or(orExpressions...)
	}

	return nil
}

// toSQLClause joins the conjunctions with OR.
//
// Example:
//
//	Predicate = {
//		{{Field: "id", Operator: "<", Value: 10}},
//		{{Field: "id", Operator: "=", Value: 10}, {Field: "name", Operator: "<", Value: "abc"}},
//	}
//
// Result:
//
//	("((id < ?) OR (id = ? AND name < ?))", [10, 10, "abc"])
func (p Predicate) toSQLClause() (string, []driver.Value) {
	orClauses := make([]string, 0, len(p))
	values := make([]driver.Value, 0, len(p))

	for _, conj := range p {
		orClause, orValues := conj.toSQLClause()
		if orClause == "" {
			continue
		}

		orClauses = append(orClauses, orClause)
		values = append(values, orValues...)
	}

	if len(orClauses) >= 1 {
		return fmt.Sprintf("(%s)", strings.Join(orClauses, " OR ")), values
	}

	return "TRUE", nil
}
