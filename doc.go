// Package docpager provides opaque cursor pagination over ordered document
// collections.
//
// # Overview
//
// A collection is ordered by a primary key, an optional secondary key and the
// unique document identifier as the final tiebreaker. A page boundary is
// described by a Pivot, the key values of the first or last document of a
// page, and handed to clients as an opaque token. Presenting the token as
// "after" resumes iteration right after the page; as "before", right before
// it.
//
// Key concepts
//   - Key: one ordering key with its coercion function and direction.
//   - CursorBuilder: seek predicates and sort orders over the active keys.
//   - Codec: signed (JWT) or plain tokens.
//   - Session: derives the fetch filter and sort of one request and, once the
//     caller has fetched the page, builds the response with cursors and the
//     counts of documents before and after the page.
//
// The package never fetches pages itself. The caller runs the query with
// Session.Filter and Session.Sort (or Session.FindOptions) and passes the
// page to Session.Build:
//
//	s, err := docpager.NewSession[Post](docpager.Request{
//		Filter:  bson.M{"author": author},
//		Paging:  docpager.Paging{Limit: 20, Cursors: &docpager.Cursors{After: after}},
//		Primary: docpager.Key{Field: "createdAt", Coerce: docpager.CoerceTime, Direction: docpager.DirectionDESC},
//	}, docpager.WithCodec(docpager.NewCodec(secret)))
//	if err != nil {
//		return err
//	}
//
//	cur, err := coll.Find(ctx, s.Filter(), s.FindOptions())
//	...
//	resp, err := s.Build(ctx, posts, docpager.CollectionCounter{Collection: coll})
//
// Predicates render to MongoDB filters (Predicate.BSON) as well as to SQL
// through gorm (Predicate.Apply, Predicate.ToSQL), so the same keyset logic
// serves relational stores.
package docpager
