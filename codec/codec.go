// Package codec encodes and decodes ETL payloads.
//
// Payload files are self-describing only by extension and content, so the
// codec is chosen by name from configuration (see ByName). All built-in
// codecs speak JSON; they differ in speed, not in wire format.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Names returns the names accepted by ByName.
func Names() []string { return []string{JSON{}.Name(), GoJSON{}.Name()} }

// ByName returns a built-in codec by its stable name. The empty name selects
// Default.
func ByName(name string) (Codec, bool) {
	switch name {
	case "":
		return Default, true
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal encodes v or panics. Intended for fixtures.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
