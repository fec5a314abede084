// Package fhe содержит обратимое "шифрование" весов развилок и операции над ними.
//
// Это кодирование, а не криптография: токен FHE-<base64> тривиально
// раскодируется любым, кто его видит. Интерфейс interfaces.ValueCipher позволяет
// заменить реализацию настоящей схемой без изменений в остальном коде.
package fhe

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"
)

// TokenPrefix отличает закодированные токены от сырых числовых строк.
const TokenPrefix = "FHE-"

// leadingNumber повторяет то, что parseFloat готов принять в начале строки.
var leadingNumber = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

var _ interfaces.ValueCipher = Codec{}

// Codec is the stateless prefix+base64 implementation of interfaces.ValueCipher.
type Codec struct{}

// NewCodec returns the default cipher.
func NewCodec() Codec { return Codec{} }

func (Codec) Encode(value float64) string { return Encode(value) }

func (Codec) Decode(token string) (float64, error) { return Decode(token) }

func (Codec) Apply(token, operation string) (string, error) { return Apply(token, operation) }

// Encode turns a number into an opaque token. The same number always yields the same token.
func Encode(value float64) string {
	return TokenPrefix + base64.StdEncoding.EncodeToString([]byte(FormatNumber(value)))
}

// Decode reverses Encode. Tokens without the prefix are parsed as plain numbers
// so that legacy values written by other clients stay readable.
func Decode(token string) (float64, error) {
	text := token
	if strings.HasPrefix(token, TokenPrefix) {
		raw, err := decodeBase64(token[len(TokenPrefix):])
		if err != nil {
			return math.NaN(), fmt.Errorf("%w: bad base64 payload: %v", models.ErrDecodeFailed, err)
		}
		text = string(raw)
	}

	value, ok := parseLeadingNumber(text)
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %q", models.ErrDecodeFailed, snippet(token))
	}
	return value, nil
}

// FormatNumber renders a float the way a JavaScript Number prints itself,
// so tokens stay byte-compatible with the ones the wallet client produced.
func FormatNumber(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		return "0"
	}

	abs := math.Abs(value)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(value, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return raw, nil
	}
	// Без паддинга тоже принимаем
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}

func parseLeadingNumber(text string) (float64, bool) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	match := leadingNumber.FindString(text)
	if match == "" {
		return math.NaN(), false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// ErrRange: ParseFloat already returned ±Inf or 0, which is what we want.
		if !errors.Is(err, strconv.ErrRange) {
			return math.NaN(), false
		}
	}
	return value, true
}

// snippet keeps error messages short for long foreign tokens.
func snippet(token string) string {
	const limit = 24
	if len(token) > limit {
		return token[:limit] + "..."
	}
	return token
}
