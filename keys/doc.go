// Package keys normalizes join keys and numeric text coming from heterogeneous
// sales sources.
//
// Client and seller codes arrive with inconsistent zero padding ("00042" in one
// export, "42" in another). Every join in salescube goes through NormalizeKey so
// that both spellings meet on the same key.
package keys
