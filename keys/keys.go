package keys

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeKey trims s and, when it consists only of ASCII digits, strips
// leading zeros ("00042" -> "42", "000" -> "0"). Any other input is returned
// trimmed. NormalizeKey is idempotent.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !isDigits(s) {
		return s
	}
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

// NormalizeKeyAny normalizes a key of any scalar type. Integral floats are
// rendered without a fractional part; nil yields "".
func NormalizeKeyAny(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return NormalizeKey(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return NormalizeKeyAny(float64(x))
	default:
		return ""
	}
}

// NormalizeBranch pads the single-digit branch codes used by the ERP export.
func NormalizeBranch(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "5":
		return "05"
	case "8":
		return "08"
	}
	return s
}

// ParseBrazilianNumber parses monetary text such as "R$ 1.234,56" or "1,234.56".
// The right-most separator is taken as the decimal point. Unparsable input
// yields 0.
func ParseBrazilianNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		return parseBrazilianString(x)
	default:
		return 0
	}
}

func parseBrazilianString(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return 0
	}
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	if lastComma > lastDot {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

// IsSentinel reports whether s is one of the given "missing" markers after
// trimming. The comparison is case-insensitive.
func IsSentinel(s string, sentinels []string) bool {
	s = strings.TrimSpace(s)
	for _, m := range sentinels {
		if strings.EqualFold(s, m) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
