package dates

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/salescube/internal/cache"
)

// ExcelSerialThreshold separates Excel day serials from millisecond
// timestamps. Numbers above it are timestamps; everything else, including
// negative numbers and the threshold itself, is a serial.
const ExcelSerialThreshold = 1_000_000

// minNumericTextDigits is the shortest all-digit string read as a serial or
// timestamp. Shorter digit runs such as "2024" are years.
const minNumericTextDigits = 5

// excelEpochOffset is the serial of 1970-01-01 in the Excel 1900 date system.
const excelEpochOffset = 25569

type parsed struct {
	t  time.Time
	ok bool
}

// Cache memoizes date parsing keyed by the raw string.
// It is safe for concurrent use.
type Cache struct {
	strings *cache.LRU[string, parsed]
}

// NewCache creates a date cache holding at most capacity distinct strings.
// A capacity <= 0 means unbounded.
func NewCache(capacity int) *Cache {
	return &Cache{strings: cache.NewLRU[string, parsed](capacity)}
}

// Parse converts v into a UTC time. ok is false when v carries no usable date.
func (c *Cache) Parse(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x, true
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return *x, true
	case float64:
		return FromNumber(x)
	case float32:
		return FromNumber(float64(x))
	case int:
		return FromNumber(float64(x))
	case int64:
		return FromNumber(float64(x))
	case string:
		return c.ParseString(x)
	default:
		return time.Time{}, false
	}
}

// ParseString parses s, consulting the cache first. Failed parses are cached
// too, so an unparsable value is only attempted once.
func (c *Cache) ParseString(s string) (time.Time, bool) {
	if p, ok := c.strings.Get(s); ok {
		return p.t, p.ok
	}
	t, ok := parseString(s)
	c.strings.Set(s, parsed{t: t, ok: ok})
	return t, ok
}

// Len returns the number of distinct strings cached.
func (c *Cache) Len() int { return c.strings.Len() }

// Stats returns the string cache hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) { return c.strings.Stats() }

// FromNumber converts an Excel serial or millisecond timestamp.
func FromNumber(n float64) (time.Time, bool) {
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}
	if n > ExcelSerialThreshold {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	ms := math.Round((n - excelEpochOffset) * 86400 * 1000)
	return time.UnixMilli(int64(ms)).UTC(), true
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
}

var fallbackLayouts = []string{
	"2006/01/02",
	"2006/01/02 15:04:05",
	"2006",
	"02-01-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.ANSIC,
}

func parseString(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	// Spreadsheets exported as text keep serials and timestamps as digits.
	if len(s) >= minNumericTextDigits && isDigits(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return FromNumber(n)
		}
	}

	if strings.ContainsAny(s, "T-") {
		for _, layout := range isoLayouts {
			// time.Parse interprets zone-less layouts as UTC.
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}

	if t, ok := parseDayMonthYear(s); ok {
		return t, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseDayMonthYear parses "DD/MM/YYYY", ignoring a trailing time part.
func parseDayMonthYear(s string) (time.Time, bool) {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if len(s) != 10 || s[2] != '/' || s[5] != '/' {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(s[0:2])
	month, err2 := strconv.Atoi(s[3:5])
	year, err3 := strconv.Atoi(s[6:10])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
