package docpager

const (
	// NoLimit leaves the fetch query unbounded, as MongoDB treats a zero limit.
	NoLimit      = 0
	MaxLimit     = 100
	DefaultLimit = 10
)

// IsNormalizedLimitMax clamps limit into (0, maxLimit]. A non-positive limit
// becomes DefaultLimit. The second result reports whether limit was already
// in range.
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if limit <= NoLimit {
		return min(DefaultLimit, maxLimit), false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}
