package interfaces

import (
	"context"

	"butterfly-story/shared/models"
)

// DataStore is the external key/value collaborator the choices live in.
// It mirrors the contract surface the wallet client talks to
// (isAvailable / getData / setData) so that a ledger adapter can be dropped in
// next to the Redis and Postgres backends.
//
//go:generate mockery --name DataStore --output ./mocks --outpkg mocks --case=underscore
type DataStore interface {
	// IsAvailable reports whether the store accepts reads and writes right now.
	IsAvailable(ctx context.Context) (bool, error)

	// GetData returns the raw bytes stored under key.
	// A missing key yields an empty slice and a nil error, like the contract does.
	GetData(ctx context.Context, key string) ([]byte, error)

	// SetData overwrites the bytes stored under key.
	SetData(ctx context.Context, key string, value []byte) error

	// Address identifies the store instance (contract address or DSN-less name).
	Address() string
}

// ChoiceStore is what the core reads choices from and appends new ones to.
//
//go:generate mockery --name ChoiceStore --output ./mocks --outpkg mocks --case=underscore
type ChoiceStore interface {
	// List returns every readable choice in key-index order.
	List(ctx context.Context) ([]models.Choice, error)

	// Append persists a new choice body and registers its id in the key index.
	// No atomicity across the two writes is assumed.
	Append(ctx context.Context, choice models.Choice) error

	// Available reports whether the underlying store is reachable.
	Available(ctx context.Context) (bool, error)

	// Address returns the identifier of the underlying store.
	Address() string
}
