package scheduler

import "github.com/hupe1980/salescube/dataset"

// Source is a positionally indexable sequence.
type Source[T any] interface {
	Len() int
	At(i int) T
}

type sliceSource[T any] []T

func (s sliceSource[T]) Len() int   { return len(s) }
func (s sliceSource[T]) At(i int) T { return s[i] }

// Slice adapts a slice to a Source.
func Slice[T any](s []T) Source[T] { return sliceSource[T](s) }

type rowSource struct{ seq dataset.Sequence }

func (s rowSource) Len() int { return s.seq.Len() }

func (s rowSource) At(i int) dataset.Row {
	r, _ := s.seq.Get(i)
	return r
}

// Rows adapts a table or row array to a Source. Rows are read positionally,
// one view at a time.
func Rows(seq dataset.Sequence) Source[dataset.Row] { return rowSource{seq: seq} }
