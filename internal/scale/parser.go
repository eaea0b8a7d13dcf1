// Package scale ingests live weight readings from a measuring instrument.
package scale

import (
	"regexp"
	"strconv"
)

// Indicator firmware wraps the numeric payload in free-form text (units,
// stability flags, checksums), so we pull out the first signed integer
// instead of demanding an exact frame grammar.
var weightPattern = regexp.MustCompile(`[-+]?\d+`)

// ParseWeight extracts the weight in kg from one raw indicator line. The
// sign carries no meaning on a bridge scale, so the absolute value is
// returned. ok is false when the line holds no parsable integer.
func ParseWeight(line string) (weight int64, ok bool) {
	match := weightPattern.FindString(line)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0, false
	}
	if n < 0 {
		n = -n
	}
	return n, true
}
