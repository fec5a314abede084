package reveal

import (
	"encoding/hex"
	"fmt"
	"strings"

	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"

	"golang.org/x/crypto/sha3"
)

// PublicKeyHexDigits - длина случайного публичного ключа без префикса 0x.
const PublicKeyHexDigits = 2000

const hexDigits = "0123456789abcdef"

// BuildChallenge renders the message the player signs before a value is revealed.
func BuildChallenge(rc models.RevealContext) string {
	return strings.Join([]string{
		"publickey:" + rc.PublicKey,
		"contractAddresses:" + rc.ContractAddress,
		fmt.Sprintf("contractsChainId:%d", rc.ChainID),
		fmt.Sprintf("startTimestamp:%d", rc.StartTimestamp),
		fmt.Sprintf("durationDays:%d", rc.DurationDays),
	}, "\n")
}

// NewContext creates a fresh reveal context for the given store address and chain.
func NewContext(contractAddress string, chainID int64, clock interfaces.Clock, rng interfaces.RandomSource) models.RevealContext {
	return models.RevealContext{
		PublicKey:       RandomPublicKey(rng),
		ContractAddress: contractAddress,
		ChainID:         chainID,
		StartTimestamp:  clock.Now().Unix(),
		DurationDays:    models.DefaultRevealDurationDays,
	}
}

// RandomPublicKey returns 0x followed by PublicKeyHexDigits random hex digits.
func RandomPublicKey(rng interfaces.RandomSource) string {
	var b strings.Builder
	b.Grow(2 + PublicKeyHexDigits)
	b.WriteString("0x")
	for i := 0; i < PublicKeyHexDigits; i++ {
		b.WriteByte(hexDigits[rng.Intn(len(hexDigits))])
	}
	return b.String()
}

// ChallengeDigest returns the keccak-256 digest a wallet computes for personal_sign
// over message (EIP-191 prefix). Handy for logs: the message itself is ~2 KB.
func ChallengeDigest(message string) string {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
