package fhe

import "fmt"

// Имена поддерживаемых операций.
const (
	OpIncrease10 = "increase10%"
	OpDecrease10 = "decrease10%"
	OpDouble     = "double"
)

var factors = map[string]float64{
	OpIncrease10: 1.1,
	OpDecrease10: 0.9,
	OpDouble:     2,
}

// Operations lists the recognised operation names in a stable order.
func Operations() []string {
	return []string{OpIncrease10, OpDecrease10, OpDouble}
}

// IsKnownOperation reports whether Apply would change the value for op.
func IsKnownOperation(op string) bool {
	_, ok := factors[op]
	return ok
}

// Apply decodes the token, runs the named transform and re-encodes the result.
// The intermediate value never leaves this function.
// Unknown operation names are a no-op, not an error: the value comes back re-encoded as is.
func Apply(token, operation string) (string, error) {
	value, err := Decode(token)
	if err != nil {
		return "", fmt.Errorf("apply %q: %w", operation, err)
	}
	if factor, ok := factors[operation]; ok {
		value *= factor
	}
	return Encode(value), nil
}
