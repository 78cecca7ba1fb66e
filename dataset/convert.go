package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/salescube/keys"
)

// AsString renders a field value as text. Integral numbers are printed
// without a fractional part; nil yields "".
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// AsFloat converts a field value to a number. Text is parsed with the
// Brazilian number rules; anything unparsable yields 0.
func AsFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
		return keys.ParseBrazilianNumber(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return keys.ParseBrazilianNumber(x)
	}
}
