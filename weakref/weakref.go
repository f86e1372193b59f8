// Package weakref abstracts weak references and reclamation notification
// behind a small capability interface, so stores never depend on a concrete
// lifetime mechanism. Runtime is the production implementation backed by the
// garbage collector; Manual gives hosts (and tests) explicit control over
// when a referent is considered reclaimed.
package weakref

// Ref is a weak reference to a value of type T. Holding a Ref does not keep
// the referent alive. Refs are comparable: two Refs created from the same
// pointer compare equal, even after the referent is reclaimed, so a Ref can
// stand in for the referent's identity as a map key.
type Ref[T any] interface {
	// Get returns the referent, or nil once it has been reclaimed.
	// Safe to call any number of times; stays nil after reclamation.
	Get() *T
}

// Maker creates weak references and registers reclamation callbacks.
// Implementations must be safe for concurrent use.
type Maker[T any] interface {
	// Make wraps v in a Ref. It never fails and never extends v's
	// lifetime. Make(nil) returns a Ref that always resolves to nil.
	Make(v *T) Ref[T]

	// OnReclaim arranges for fn to run exactly once after v becomes
	// unreachable. fn must not capture v, or v can never be reclaimed.
	// No-op when v or fn is nil.
	OnReclaim(v *T, fn func())
}
