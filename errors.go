package docpager

import "errors"

var (
	// ErrAmbiguousCursors is returned when a request carries both "after" and
	// "before" cursors. A client pages in exactly one direction per call.
	ErrAmbiguousCursors = errors.New(`cannot use both "after" and "before" cursors`)

	// ErrInvalidKey reports an unusable ordering key configuration.
	ErrInvalidKey = errors.New("invalid ordering key")

	// ErrUnknownAlias reports a sort alias missing from the KeyMapping.
	ErrUnknownAlias = errors.New("unknown sort alias")
)
