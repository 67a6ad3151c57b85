package commands

import (
	"fmt"
	"strings"

	"github.com/Alp4ka/docpager"
)

var coercers = map[string]docpager.CoerceFunc{
	"":         nil,
	"objectid": docpager.CoerceObjectID,
	"time":     docpager.CoerceTime,
	"int":      docpager.CoerceInt64,
	"float":    docpager.CoerceFloat64,
	"string":   docpager.CoerceString,
}

// parseKeyFlag parses "field[:asc|desc[:type]]".
func parseKeyFlag(raw string) (docpager.Key, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) > 3 || parts[0] == "" {
		return docpager.Key{}, fmt.Errorf("%w: malformed key '%s'", docpager.ErrInvalidKey, raw)
	}

	key := docpager.Key{Field: parts[0], Direction: docpager.DirectionASC}
	if len(parts) > 1 && parts[1] != "" {
		key.Direction = docpager.Direction(strings.ToUpper(parts[1]))
		if !key.Direction.Valid() {
			return docpager.Key{}, fmt.Errorf("%w: invalid direction in '%s'", docpager.ErrInvalidKey, raw)
		}
	}

	if len(parts) > 2 {
		coerce, ok := coercers[strings.ToLower(parts[2])]
		if !ok {
			return docpager.Key{}, fmt.Errorf("%w: unknown type in '%s'", docpager.ErrInvalidKey, raw)
		}
		key.Coerce = coerce
	}

	return key, nil
}
