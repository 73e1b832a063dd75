package editor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberPrefix matches the longest leading decimal literal of an input,
// optionally signed and with an exponent.
var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber coerces free-form numeric input the way a number input would:
// leading whitespace is ignored, the longest numeric prefix is parsed
// ("12abc" → 12), a decimal comma is accepted ("2,5" → 2.5), and anything
// unparseable or non-finite becomes 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	m := numberPrefix.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
