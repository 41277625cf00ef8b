package runtime

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat renders x the way Java's Float.toString and Double.toString do: the shortest
// digits that round-trip at the given precision, plain notation with at least one fractional
// digit for 1e-3 <= |x| < 1e7, and computerized scientific notation (1.0E7) otherwise.
func formatFloat(x float64, bits int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case x == 0:
		if math.Signbit(x) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(x)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(x, 'f', -1, bits)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}

	// strconv yields "d.ddde±XX"; Java wants "d.dddEX" with at least one fractional digit.
	s := strconv.FormatFloat(x, 'e', -1, bits)
	mantissa, exp, _ := strings.Cut(s, "e")
	if !strings.ContainsRune(mantissa, '.') {
		mantissa += ".0"
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mantissa + "E" + strconv.Itoa(e)
}
