package docpager

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// Cursors carries the opaque tokens of a request. At most one may be set.
type Cursors struct {
	After  string `json:"after,omitempty"`
	Before string `json:"before,omitempty"`
}

// Paging is the paging part of a request. Limit and Offset are passed to the
// fetch query as is.
type Paging struct {
	Limit   int      `json:"limit,omitempty"`
	Offset  int      `json:"offset,omitempty"`
	Cursors *Cursors `json:"cursors,omitempty"`
}

// Request describes one page request.
type Request struct {
	// Filter is the base condition. It is never modified.
	Filter bson.M
	Paging Paging
	// Search is an optional full-text query.
	Search string
	// Primary and Secondary define the ordering. A zero Primary orders by
	// the identifier.
	Primary   Key
	Secondary *Key
}

// Session is the state of one paginated request. It derives the filter and
// sort of the fetch query, and after the caller has fetched the page, builds
// the cursors and counts of the response.
//
// A Session is built per request and is not reused.
type Session[T any] struct {
	condition bson.M
	scope     bson.M
	filter    bson.M
	sort      Orderings
	search    string
	limit     int
	skip      int
	reverse   bool

	builder *CursorBuilder
	codec   *Codec
	logger  logrus.FieldLogger
	getters Getters[T]
}

// NewSession resolves the request cursor and derives the fetch filter and
// sort. Supplying both cursors fails with ErrAmbiguousCursors. A cursor that
// cannot be decoded is ignored and pagination starts from the beginning of
// the collection.
func NewSession[T any](req Request, opts ...Option) (*Session[T], error) {
	st := settings{logger: _discardLogger}
	for _, opt := range opts {
		opt(&st)
	}

	cursors := lo.FromPtr(req.Paging.Cursors)
	if cursors.After != "" && cursors.Before != "" {
		return nil, ErrAmbiguousCursors
	}

	builderOpts := make([]BuilderOption, 0, 1)
	if st.identifier != nil {
		builderOpts = append(builderOpts, WithBuilderIdentifier(*st.identifier))
	}

	builder, err := NewCursorBuilder(req.Primary, req.Secondary, builderOpts...)
	if err != nil {
		return nil, err
	}

	s := &Session[T]{
		condition: maps.Clone(req.Filter),
		search:    req.Search,
		limit:     req.Paging.Limit,
		skip:      req.Paging.Offset,
		builder:   builder,
		codec:     st.codec,
		logger:    st.logger,
	}
	if s.condition == nil {
		s.condition = bson.M{}
	}
	if getters, ok := st.getters.(Getters[T]); ok {
		s.getters = getters
	}
	if st.maxLimit > 0 {
		s.limit = NormalizeLimitMax(s.limit, st.maxLimit)
	}

	s.scope = s.condition
	if s.search != "" {
		s.scope = maps.Clone(s.condition)
		s.scope["$text"] = bson.M{"$search": s.search}
	}
	s.scope = prune(s.scope)

	var seek Predicate
	if pivot, reverse, ok := s.resolve(cursors); ok {
		s.reverse = reverse
		seek = lo.Ternary(reverse, builder.BeforeOf, builder.AfterOf)(pivot)
		if seek.IsEmpty() {
			s.logger.WithField("scheme", builder.Scheme()).Warn("cursor yields no constraint")
		}
	}

	s.filter = prune(compose(s.scope, seek.BSON()))
	s.sort = builder.Sort(s.reverse)

	return s, nil
}

// resolve decodes whichever cursor is present. ok is false when there is no
// usable cursor.
func (s *Session[T]) resolve(cursors Cursors) (pivot Pivot, reverse bool, ok bool) {
	token, reverse := cursors.After, false
	if cursors.Before != "" {
		token, reverse = cursors.Before, true
	}

	res := s.codec.Decode(token)
	if res.Status == CursorDecoded && res.Payload.Scheme != s.builder.Scheme() {
		res = invalid(fmt.Errorf("cursor scheme '%s' does not match '%s'", res.Payload.Scheme, s.builder.Scheme()))
	}

	switch res.Status {
	case CursorDecoded:
		return s.builder.ReconstructPivot(res.Payload.Values), reverse, true
	case CursorInvalid:
		s.logger.WithError(res.Err).WithField("reverse", reverse).Debug("ignoring unusable cursor")
	}

	return nil, false, false
}

// Filter returns the filter of the fetch query.
func (s *Session[T]) Filter() bson.M {
	return maps.Clone(s.filter)
}

// Condition returns the base filter as supplied by the request.
func (s *Session[T]) Condition() bson.M {
	return maps.Clone(s.condition)
}

// Orderings returns the key ordering of the fetch query.
func (s *Session[T]) Orderings() Orderings {
	return slices.Clone(s.sort)
}

// Sort returns the MongoDB sort document of the fetch query. When searching,
// the text relevance score is appended.
func (s *Session[T]) Sort() bson.D {
	sort := s.sort.BSON()
	if s.search != "" {
		sort = append(sort, bson.E{Key: "score", Value: bson.M{"$meta": "textScore"}})
	}

	return sort
}

// Limit returns the page size, NoLimit if none was requested.
func (s *Session[T]) Limit() int {
	return s.limit
}

// Skip returns the requested offset.
func (s *Session[T]) Skip() int {
	return s.skip
}

// IsReverse reports whether the request pages backwards from a "before"
// cursor. The fetch query then runs in reversed order.
func (s *Session[T]) IsReverse() bool {
	return s.reverse
}

// Builder returns the cursor builder of the session.
func (s *Session[T]) Builder() *CursorBuilder {
	return s.builder
}

// FindOptions returns options for mongo.Collection.Find matching the session.
func (s *Session[T]) FindOptions() *options.FindOptions {
	opts := options.Find().SetSort(s.Sort())
	if s.limit > 0 {
		opts.SetLimit(int64(s.limit))
	}
	if s.skip > 0 {
		opts.SetSkip(int64(s.skip))
	}
	if s.search != "" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	return opts
}

// Boundaries is the page in display order together with everything derived
// from its first and last documents.
type Boundaries[T any] struct {
	Data           []T
	First, Last    Pivot
	AfterCursor    string
	BeforeCursor   string
	FilterNext     bson.M
	FilterPrevious bson.M
}

// Boundaries restores the display order of a fetched page and derives the
// cursors and the filters of the documents around it. The page itself is
// not modified. For an empty page only Data is set.
//
// FilterNext and FilterPrevious are built on the request filter and search,
// not on the cursor of the current request.
func (s *Session[T]) Boundaries(page []T) Boundaries[T] {
	data := make([]T, len(page))
	copy(data, page)
	if s.reverse {
		slices.Reverse(data)
	}

	if len(data) == 0 {
		return Boundaries[T]{Data: data}
	}

	first := s.pivotOf(data[0])
	last := s.pivotOf(data[len(data)-1])

	return Boundaries[T]{
		Data:           data,
		First:          first,
		Last:           last,
		AfterCursor:    s.encode(last),
		BeforeCursor:   s.encode(first),
		FilterNext:     prune(compose(s.scope, s.builder.AfterOf(last).BSON())),
		FilterPrevious: prune(compose(s.scope, s.builder.BeforeOf(first).BSON())),
	}
}

func (s *Session[T]) pivotOf(doc T) Pivot {
	return s.builder.extract(func(field string) (any, bool) {
		if getter, ok := s.getters[field]; ok {
			v := getter(doc)
			return v, v != nil
		}

		return lookupField(doc, field)
	})
}

// encode returns an empty token when the pivot cannot be encoded; a broken
// boundary document must not fail the whole page.
func (s *Session[T]) encode(pivot Pivot) string {
	token, err := s.codec.Encode(Payload{
		Scheme: s.builder.Scheme(),
		Values: s.builder.TokenPayload(pivot),
	})
	if err != nil {
		s.logger.WithError(err).Warn("cannot encode cursor")
		return ""
	}

	return token
}

// Build finalizes the session with the fetched page.
func (s *Session[T]) Build(ctx context.Context, page []T, counter Counter) (*Response[T], error) {
	return BuildAs(ctx, s, page, counter, func(item T) T { return item })
}

// BuildAs finalizes the session with the fetched page and projects every
// item with toEntity.
//
// The documents after the page, before the page and matching the request
// filter are counted concurrently. The first count error is returned. An
// empty page is returned without counting.
//
// A nil toEntity converts items by type assertion; an item that is not an E
// fails the call.
func BuildAs[T, E any](
	ctx context.Context,
	s *Session[T],
	page []T,
	counter Counter,
	toEntity func(T) E,
) (*Response[E], error) {
	if toEntity == nil {
		for _, item := range page {
			if _, ok := any(item).(E); !ok {
				return nil, fmt.Errorf("cannot build page: %T does not convert to the entity type", item)
			}
		}
		toEntity = func(item T) E { return any(item).(E) }
	}

	b := s.Boundaries(page)
	if len(b.Data) == 0 {
		return &Response[E]{Data: []E{}}, nil
	}

	var countNext, countPrevious, count int64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		countNext, err = counter.CountDocuments(gCtx, b.FilterNext)
		return wrapCount("next", err)
	})
	g.Go(func() (err error) {
		countPrevious, err = counter.CountDocuments(gCtx, b.FilterPrevious)
		return wrapCount("previous", err)
	})
	g.Go(func() (err error) {
		count, err = counter.CountDocuments(gCtx, s.condition)
		return wrapCount("total", err)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cannot build page: %w", err)
	}

	resp := &Response[E]{
		Data: lo.Map(b.Data, func(item T, _ int) E { return toEntity(item) }),
		Paging: PageInfo{
			Count:  max(count, 0),
			Length: len(b.Data),
		},
	}
	if countNext > 0 {
		resp.Paging.Next = &NextPage{After: b.AfterCursor, Count: countNext}
	}
	if countPrevious > 0 {
		resp.Paging.Previous = &PreviousPage{Before: b.BeforeCursor, Count: countPrevious}
	}

	s.logger.WithFields(logrus.Fields{
		"length":   resp.Paging.Length,
		"next":     countNext,
		"previous": countPrevious,
		"count":    count,
	}).Debug("page built")

	return resp, nil
}

func wrapCount(which string, err error) error {
	if err != nil {
		return fmt.Errorf("count %s: %w", which, err)
	}

	return nil
}
