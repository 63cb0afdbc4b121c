package swr

import (
	"context"
	"fmt"
)

// Value extracts a typed value from a state. ok is false when the state
// carries no value of type T.
func Value[T any](st State) (v T, ok bool) {
	v, ok = st.Data.(T)
	return v, ok
}

// Get is the typed form of Store.Read.
func Get[T any](ctx context.Context, s *Store, key string, fetch func(context.Context) (T, error), opts ...ReadOption) (T, State) {
	st := s.Read(ctx, key, wrap(fetch), opts...)
	v, _ := Value[T](st)
	return v, st
}

// Load is the typed form of Store.Fetch.
func Load[T any](ctx context.Context, s *Store, key string, fetch func(context.Context) (T, error), opts ...ReadOption) (T, error) {
	var zero T
	raw, err := s.Fetch(ctx, key, wrap(fetch), opts...)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("swr: key %q holds %T, not %T", key, raw, zero)
	}
	return v, nil
}

// SubscribeTo is the typed form of Store.Subscribe.
func SubscribeTo[T any](s *Store, key string, fetch func(context.Context) (T, error), opts ...ReadOption) *Subscription {
	return s.Subscribe(key, wrap(fetch), opts...)
}

func wrap[T any](fetch func(context.Context) (T, error)) Fetcher {
	if fetch == nil {
		return nil
	}
	return func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
