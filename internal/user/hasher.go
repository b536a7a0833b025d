package user

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords. Both calls are CPU-heavy and honour
// ctx cancellation.
type Hasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	return runCtx(ctx, func() (string, error) {
		b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
		return string(b), err
	})
}

// Verify reports a mismatch as (false, nil). A malformed hash is treated as
// a mismatch as well so callers cannot tell the cases apart.
func (h *BcryptHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	return runCtx(ctx, func() (bool, error) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
	})
}

func runCtx[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
