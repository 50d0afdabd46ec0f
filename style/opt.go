package style

// Opt is an attribute which is either set on a node or inherited.
type Opt[T any] struct {
	v   T
	set bool
}

// Some returns set attribute.
func Some[T any](v T) Opt[T] {
	return Opt[T]{v: v, set: true}
}

// Get returns value and whether it was set.
func (o Opt[T]) Get() (T, bool) {
	return o.v, o.set
}

// IsSet reports whether the attribute was set.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// Value returns value or zero value of T.
func (o Opt[T]) Value() T {
	return o.v
}

// Or returns value or def when the attribute is not set.
func (o Opt[T]) Or(def T) T {
	if o.set {
		return o.v
	}
	return def
}

// over returns o when set and parent otherwise.
func (o Opt[T]) over(parent Opt[T]) Opt[T] {
	if o.set {
		return o
	}
	return parent
}
