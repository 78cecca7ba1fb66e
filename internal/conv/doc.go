// Package conv provides checked integer conversions for row positions and
// blob sizes.
//
// Row positions are Go ints while bitmap members are uint32, so a table
// longer than math.MaxUint32+1 rows cannot be indexed. Blob sizes arrive as
// int64 from storage and must fit an int before a buffer is allocated.
//
// For conversions that are provably safe by domain constraints (e.g. loop
// indices below an already checked length), use direct casts instead.
package conv
