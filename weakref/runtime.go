package weakref

import (
	"runtime"
	"weak"
)

// Runtime is the production Maker, backed by the weak package and
// runtime.AddCleanup. Reclamation callbacks run asynchronously on a
// runtime-owned goroutine after the garbage collector frees the referent.
type Runtime[T any] struct{}

type runtimeRef[T any] struct {
	ptr weak.Pointer[T]
}

func (r runtimeRef[T]) Get() *T {
	return r.ptr.Value()
}

func (Runtime[T]) Make(v *T) Ref[T] {
	if v == nil {
		return runtimeRef[T]{}
	}
	return runtimeRef[T]{ptr: weak.Make(v)}
}

func (Runtime[T]) OnReclaim(v *T, fn func()) {
	if v == nil || fn == nil {
		return
	}
	runtime.AddCleanup(v, func(f func()) { f() }, fn)
}
