package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MinBcryptCost is the lowest work factor the hasher accepts.
const MinBcryptCost = bcrypt.DefaultCost

// MaxPasswordBytes is the longest input bcrypt will hash without truncation.
const MaxPasswordBytes = 72

var (
	// ErrInvalidCost is returned for a work factor outside [MinBcryptCost, bcrypt.MaxCost].
	ErrInvalidCost = errors.New("invalid bcrypt cost")
	// ErrHash wraps failures of the underlying hash primitive.
	ErrHash = errors.New("password hash failed")
)

// Hasher hashes and verifies passwords with bcrypt. Calls are bounded to
// GOMAXPROCS concurrent operations so hashing cannot starve request handling.
type Hasher struct {
	cost  int
	sem   *semaphore.Weighted
	dummy string
}

// NewHasher creates a Hasher with the given bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < MinBcryptCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidCost, cost, MinBcryptCost, bcrypt.MaxCost)
	}

	// Verified against when an account does not exist, so a miss costs the same as a wrong password.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHash, err)
	}

	return &Hasher{
		cost:  cost,
		sem:   semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		dummy: string(dummy),
	}, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of plaintext.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHash, err)
	}
	return string(digest), nil
}

// Verify reports whether digest was produced by Hash for plaintext.
// A malformed digest or a cancelled context yields false.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// VerifyAbsent spends the same work as Verify and always fails.
func (h *Hasher) VerifyAbsent(ctx context.Context, plaintext string) bool {
	h.Verify(ctx, plaintext, h.dummy)
	return false
}
