package docpager

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// CursorBuilder composes the ordering keys of a collection into seek
// predicates and sort specifications.
//
// The active keys are the primary key, the optional secondary key and the
// unique identifier. The identifier is always the last key so that the
// ordering is total even when primary and secondary values repeat. When the
// primary (or secondary) key already is the identifier it is not repeated.
type CursorBuilder struct {
	primary    Key
	secondary  *Key
	identifier Key
	keys       []Key
}

type BuilderOption func(*CursorBuilder)

// WithBuilderIdentifier replaces DefaultIdentifier as the tiebreaker key.
func WithBuilderIdentifier(identifier Key) BuilderOption {
	return func(b *CursorBuilder) {
		b.identifier = identifier
	}
}

// NewCursorBuilder builds a CursorBuilder. A zero primary key with a
// secondary key promotes the secondary; with neither the collection is
// ordered by the identifier alone.
func NewCursorBuilder(primary Key, secondary *Key, opts ...BuilderOption) (*CursorBuilder, error) {
	b := &CursorBuilder{identifier: DefaultIdentifier}
	for _, opt := range opts {
		opt(b)
	}

	if primary.IsZero() && secondary != nil {
		primary, secondary = *secondary, nil
	}
	if primary.IsZero() {
		primary = b.identifier
	}
	if secondary != nil && (secondary.IsZero() || secondary.Field == primary.Field) {
		secondary = nil
	}

	b.primary = primary
	b.secondary = secondary
	b.keys = append(b.keys, primary)
	if secondary != nil {
		b.keys = append(b.keys, *secondary)
	}

	if !lo.ContainsBy(b.keys, func(k Key) bool { return k.Field == b.identifier.Field }) {
		b.keys = append(b.keys, b.identifier)
	}

	if err := b.Sort(false).validate(); err != nil {
		return nil, fmt.Errorf("cannot build cursor: %w", err)
	}

	return b, nil
}

// Keys returns the active keys in sort order.
func (b *CursorBuilder) Keys() []Key {
	return slices.Clone(b.keys)
}

// Primary returns the primary key.
func (b *CursorBuilder) Primary() Key {
	return b.primary
}

// Secondary returns the secondary key or nil.
func (b *CursorBuilder) Secondary() *Key {
	return b.secondary
}

// Identifier returns the tiebreaker key.
func (b *CursorBuilder) Identifier() Key {
	return b.identifier
}

// Scheme fingerprints the ordering configuration, e.g. "createdAt:DESC,_id:ASC".
// A token is only meaningful for the scheme it was issued under.
func (b *CursorBuilder) Scheme() string {
	return strings.Join(lo.Map(b.keys, func(k Key, _ int) string {
		return fmt.Sprintf("%s:%s", k.Field, k.Direction)
	}), ",")
}

// ExtractPivot reads the value of every active key from doc.
func (b *CursorBuilder) ExtractPivot(doc any) Pivot {
	return b.extract(func(field string) (any, bool) {
		return lookupField(doc, field)
	})
}

func (b *CursorBuilder) extract(get func(field string) (any, bool)) Pivot {
	pivot := make(Pivot, len(b.keys))
	for _, key := range b.keys {
		if v, ok := get(key.Field); ok {
			pivot[key.Field] = v
		}
	}

	return pivot
}

// AfterOf returns the predicate selecting documents strictly after pivot:
//
//	(k1 > v1) OR (k1 = v1 AND k2 > v2) OR (k1 = v1 AND k2 = v2 AND id > vid)
//
// with ">" replaced by "<" for DESC keys. Expansion stops at the first key
// missing from the pivot, so no condition ever references an absent value.
// A value that cannot be coerced drops its condition, which widens the
// window; if the first conjunction ends up empty the predicate is empty.
func (b *CursorBuilder) AfterOf(pivot Pivot) Predicate {
	return b.seek(pivot, false)
}

// BeforeOf is the mirror of AfterOf.
func (b *CursorBuilder) BeforeOf(pivot Pivot) Predicate {
	return b.seek(pivot, true)
}

func (b *CursorBuilder) seek(pivot Pivot, before bool) Predicate {
	dnf := make(Predicate, 0, len(b.keys))
	equalities := make(conjunction, 0, len(b.keys))

	for _, key := range b.keys {
		value, ok := pivot[key.Field]
		if !ok {
			break
		}

		bound := lo.Ternary(before, key.BeforeOf, key.AfterOf)
		conj := slices.Clone(equalities)
		if cond, ok := bound(value); ok {
			conj = append(conj, cond)
		}

		if len(conj) == 0 {
			return nil
		}
		dnf = append(dnf, conj)

		if eq, ok := key.EqualTo(value); ok {
			equalities = append(equalities, eq)
		}
	}

	return dnf
}

// Sort returns the effective ordering for the requested traversal. The
// identifier is always last.
func (b *CursorBuilder) Sort(reverse bool) Orderings {
	return lo.Map(b.keys, func(k Key, _ int) OrderBy {
		return OrderBy{Column: k.Field, Direction: k.EffectiveDirection(reverse)}
	})
}

// TokenPayload renders the pivot as token values, the minimal mapping needed
// to rebuild it later. Numbers, booleans and strings keep their JSON type;
// times and object ids are rendered as text and need a coercer to come back.
func (b *CursorBuilder) TokenPayload(pivot Pivot) map[string]any {
	ret := make(map[string]any, len(b.keys))
	for _, key := range b.keys {
		v, ok := pivot[key.Field]
		if !ok || v == nil {
			continue
		}
		if tv := tokenValue(v); tv != nil {
			ret[key.Field] = tv
		}
	}

	return ret
}

// ReconstructPivot coerces decoded token values back to typed values. A
// value that fails coercion stays raw; predicates built from it drop the
// corresponding condition.
func (b *CursorBuilder) ReconstructPivot(values map[string]any) Pivot {
	pivot := make(Pivot, len(b.keys))
	for _, key := range b.keys {
		raw, ok := values[key.Field]
		if !ok {
			continue
		}

		coerced, err := key.coerce(raw)
		pivot[key.Field] = lo.Ternary[any](err != nil, raw, coerced)
	}

	return pivot
}
