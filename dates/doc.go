// Package dates normalizes heterogeneous date representations into UTC
// time.Time values.
//
// Sales exports mix Excel day serials, millisecond timestamps, ISO strings and
// Brazilian "DD/MM/YYYY" text, often within the same column. Cache memoizes the
// parse of every distinct string it sees, including failures, so that a column
// with hundreds of thousands of repeated dates is parsed once per distinct
// value.
//
//	c := dates.NewCache(0)
//	t, ok := c.Parse("15/03/2024")   // 2024-03-15 00:00:00 UTC
//	t, ok = c.Parse(45000.0)         // Excel serial
//	_, ok = c.Parse("not-a-date")    // ok == false, cached
//
// A Cache is created once per dataset load and dropped on reload.
package dates
