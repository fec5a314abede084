package interfaces

// ValueCipher obscures a numeric value behind an opaque token.
// The shipped implementation is a reversible encoding; a real threshold or
// homomorphic scheme can replace it without touching the effect or narrative code.
//
//go:generate mockery --name ValueCipher --output ./mocks --outpkg mocks --case=underscore
type ValueCipher interface {
	Encode(value float64) string
	// Decode returns models.ErrDecodeFailed (wrapped) when the token carries no number.
	Decode(token string) (float64, error)
	// Apply runs a named transform on the hidden value and returns a new token.
	Apply(token, operation string) (string, error)
}
