// Package identity generates unique identities for agent replicas.
package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

var (
	// ErrEntropy indicates the randomness source could not supply an identifier.
	ErrEntropy = errors.New("entropy source unavailable")

	// ErrOrdinalOutOfOrder indicates an ordinal was skipped, repeated, or not positive.
	ErrOrdinalOutOfOrder = errors.New("replica ordinal out of order")
)

// ReplicaIdentity identifies one agent replica within a generation run.
type ReplicaIdentity struct {
	// Ordinal is the 1-based replica index.
	Ordinal int

	// ID is a random (version 4) UUID unique to this replica.
	ID uuid.UUID
}

// String returns the identifier in canonical UUID form.
func (r ReplicaIdentity) String() string {
	return r.ID.String()
}

// Generator hands out replica identities in strictly increasing ordinal order.
// A Generator is scoped to a single run and is not safe for concurrent use.
type Generator struct {
	rand io.Reader
	last int
}

// NewGenerator creates a Generator reading randomness from r.
// A nil reader selects crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// Next returns the identity for ordinal, which must be exactly one greater
// than the previous call (starting at 1).
func (g *Generator) Next(ordinal int) (ReplicaIdentity, error) {
	if ordinal != g.last+1 {
		return ReplicaIdentity{}, fmt.Errorf("%w: got %d, expected %d", ErrOrdinalOutOfOrder, ordinal, g.last+1)
	}

	id, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return ReplicaIdentity{}, fmt.Errorf("%w: replica %d: %w", ErrEntropy, ordinal, err)
	}

	g.last = ordinal
	return ReplicaIdentity{Ordinal: ordinal, ID: id}, nil
}
