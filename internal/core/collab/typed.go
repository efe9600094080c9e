package collab

import "errors"

// TypedChangeEvent is ChangeEvent with values asserted to T. Absent
// values are the zero value of T with the matching Present flag false.
type TypedChangeEvent[T any] struct {
	Kind       MutationKind
	Key        string
	OldValue   T
	OldPresent bool
	NewValue   T
	NewPresent bool
}

// TypedAdapter is a generic facade over Adapter for callers whose map
// holds a single value type T.
type TypedAdapter[T any] struct {
	root *Adapter
}

// NewTypedAdapter binds a typed adapter to the given handle.
func NewTypedAdapter[T any](h Handle) *TypedAdapter[T] {
	return &TypedAdapter[T]{root: NewAdapter(h)}
}

// Root exposes the untyped adapter underneath.
func (t *TypedAdapter[T]) Root() *Adapter { return t.root }

func (t *TypedAdapter[T]) Get(key string) (T, bool, error) {
	res, ok, err := t.root.Get(key)
	if err != nil || !ok {
		var zero T
		return zero, ok, err
	}
	return assertValue[T](res)
}

func (t *TypedAdapter[T]) Has(key string) (bool, error) {
	return t.root.Has(key)
}

func (t *TypedAdapter[T]) Size() (int, error) {
	return t.root.Size()
}

func (t *TypedAdapter[T]) Keys() ([]string, error) {
	return t.root.Keys()
}

func (t *TypedAdapter[T]) Values() ([]T, error) {
	raw, err := t.root.Values()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		tv, _, aErr := assertValue[T](v)
		if aErr != nil {
			return nil, aErr
		}
		out = append(out, tv)
	}
	return out, nil
}

func (t *TypedAdapter[T]) Set(key string, value T) (T, bool, error) {
	prev, existed, err := t.root.Set(key, value)
	if err != nil || !existed {
		var zero T
		return zero, existed, err
	}
	return assertValue[T](prev)
}

func (t *TypedAdapter[T]) Delete(key string) (T, bool, error) {
	prev, existed, err := t.root.Delete(key)
	if err != nil || !existed {
		var zero T
		return zero, existed, err
	}
	return assertValue[T](prev)
}

func (t *TypedAdapter[T]) Clear() error {
	return t.root.Clear()
}

// Subscribe registers a typed observer on the underlying change
// signal. Values that do not assert to T are delivered as absent.
func (t *TypedAdapter[T]) Subscribe(fn func(event TypedChangeEvent[T])) SubscriptionID {
	return t.root.Subscribe(func(_ *Adapter, e ChangeEvent) {
		te := TypedChangeEvent[T]{Kind: e.Kind, Key: e.Key}
		if e.OldValue != nil {
			te.OldValue, te.OldPresent = e.OldValue.(T)
		}
		if e.NewValue != nil {
			te.NewValue, te.NewPresent = e.NewValue.(T)
		}
		fn(te)
	})
}

func (t *TypedAdapter[T]) Unsubscribe(id SubscriptionID) {
	t.root.Unsubscribe(id)
}

func (t *TypedAdapter[T]) Rebind(next Handle) error {
	return t.root.Rebind(next)
}

func (t *TypedAdapter[T]) Close() error {
	return t.root.Close()
}

func (t *TypedAdapter[T]) IsDisposed() bool {
	return t.root.IsDisposed()
}

func assertValue[T any](v any) (T, bool, error) {
	if tv, ok := v.(T); ok {
		return tv, true, nil
	}
	var zero T
	return zero, true, errors.New("type mismatch")
}
