package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	lo "github.com/samber/lo"
)

// NormalizeHeader turns "Start year" or " PPP-Rate" into start_year / ppp_rate.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, h)
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return h
}

// CleanNumeric strips formatting (thousands separators, spaces, currency symbols) and parses
// the rest. Anything unparseable is missing, never an error.
func CleanNumeric(s string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',', r == '_', unicode.IsSpace(r), unicode.Is(unicode.Sc, r):
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// CleanYear is CleanNumeric restricted to whole numbers ("2018.0" is fine, "2018.5" is not).
// Values that do not fit an int32 are missing; the plausible range is checked by
// RequireYearBounds so that typos are counted rather than silently dropped.
func CleanYear(s string) *int {
	v := CleanNumeric(s)
	if v == nil || *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return nil
	}
	return lo.ToPtr(int(*v))
}
