package reveal_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"butterfly-story/internal/fhe"
	"butterfly-story/internal/reveal"
	"butterfly-story/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedContext = models.RevealContext{
	PublicKey:       "0xabc",
	ContractAddress: "0xC0FFEE",
	ChainID:         11155111,
	StartTimestamp:  1700000000,
	DurationDays:    30,
}

const fixedChallenge = "publickey:0xabc\n" +
	"contractAddresses:0xC0FFEE\n" +
	"contractsChainId:11155111\n" +
	"startTimestamp:1700000000\n" +
	"durationDays:30"

type seqRand struct{ n int }

func (r *seqRand) Float64() float64 { return 0 }
func (r *seqRand) Intn(n int) int {
	r.n++
	return r.n % n
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func TestBuildChallenge(t *testing.T) {
	assert.Equal(t, fixedChallenge, reveal.BuildChallenge(fixedContext))
	assert.Equal(t, reveal.BuildChallenge(fixedContext), reveal.BuildChallenge(fixedContext))
}

func TestChallengeDigest(t *testing.T) {
	// Контрольное значение ethers.hashMessage("Hello World").
	assert.Equal(t,
		"0xa1de988600a42c4b4ab089b619297c17d53cffae5d5120d82d8a92d0bb3b78f2",
		reveal.ChallengeDigest("Hello World"))
}

func TestNewContext(t *testing.T) {
	now := time.Unix(1700000123, 0)
	rc := reveal.NewContext("0xC0FFEE", 1, fixedClock(now), &seqRand{})

	assert.Equal(t, "0xC0FFEE", rc.ContractAddress)
	assert.Equal(t, int64(1), rc.ChainID)
	assert.Equal(t, now.Unix(), rc.StartTimestamp)
	assert.Equal(t, models.DefaultRevealDurationDays, rc.DurationDays)
	require.True(t, strings.HasPrefix(rc.PublicKey, "0x"))
	assert.Len(t, rc.PublicKey, 2+reveal.PublicKeyHexDigits)
	assert.Equal(t, "0x123456789abcdef0", rc.PublicKey[:18])
}

func TestGate_Reveal(t *testing.T) {
	token := fhe.Encode(7.5)

	t.Run("Signer succeeds", func(t *testing.T) {
		var outcomes []reveal.Outcome
		gate := reveal.NewGate(fhe.NewCodec(), zap.NewNop(), reveal.WithObserver(func(o reveal.Outcome) {
			outcomes = append(outcomes, o)
		}))

		var signed string
		value, ok := gate.Reveal(context.Background(), fixedContext, token, func(_ context.Context, message string) (string, error) {
			signed = message
			return "0xsignature", nil
		})

		require.True(t, ok)
		assert.Equal(t, 7.5, value)
		assert.Equal(t, fixedChallenge, signed)
		assert.Equal(t, []reveal.Outcome{reveal.OutcomeRevealed}, outcomes)
	})

	t.Run("Signer rejects", func(t *testing.T) {
		var outcome reveal.Outcome
		gate := reveal.NewGate(fhe.NewCodec(), zap.NewNop(), reveal.WithObserver(func(o reveal.Outcome) { outcome = o }))

		value, ok := gate.Reveal(context.Background(), fixedContext, token, func(context.Context, string) (string, error) {
			return "", errors.New("user rejected signing")
		})

		assert.False(t, ok)
		assert.Zero(t, value)
		assert.Equal(t, reveal.OutcomeRejected, outcome)
	})

	t.Run("Empty signature counts as rejection", func(t *testing.T) {
		gate := reveal.NewGate(fhe.NewCodec(), nil)
		_, ok := gate.Reveal(context.Background(), fixedContext, token, func(context.Context, string) (string, error) {
			return "", nil
		})
		assert.False(t, ok)
	})

	t.Run("Nil signer counts as rejection", func(t *testing.T) {
		var outcome reveal.Outcome
		gate := reveal.NewGate(panicCipher{}, zap.NewNop(), reveal.WithObserver(func(o reveal.Outcome) { outcome = o }))

		value, ok := gate.Reveal(context.Background(), fixedContext, token, nil)
		assert.False(t, ok)
		assert.Zero(t, value)
		assert.Equal(t, reveal.OutcomeRejected, outcome)
	})

	t.Run("Panicking signer counts as rejection", func(t *testing.T) {
		var outcome reveal.Outcome
		gate := reveal.NewGate(panicCipher{}, zap.NewNop(), reveal.WithObserver(func(o reveal.Outcome) { outcome = o }))

		var ok bool
		require.NotPanics(t, func() {
			_, ok = gate.Reveal(context.Background(), fixedContext, token, func(context.Context, string) (string, error) {
				panic("wallet bridge crashed")
			})
		})
		assert.False(t, ok)
		assert.Equal(t, reveal.OutcomeRejected, outcome)
	})

	t.Run("No decoding happens on rejection", func(t *testing.T) {
		gate := reveal.NewGate(panicCipher{}, zap.NewNop())
		_, ok := gate.Reveal(context.Background(), fixedContext, token, func(context.Context, string) (string, error) {
			return "", models.ErrProofRejected
		})
		assert.False(t, ok)
	})

	t.Run("Caller abandons a pending prompt", func(t *testing.T) {
		var outcome reveal.Outcome
		gate := reveal.NewGate(fhe.NewCodec(), zap.NewNop(), reveal.WithObserver(func(o reveal.Outcome) { outcome = o }))

		ctx, cancel := context.WithCancel(context.Background())
		release := make(chan struct{})
		defer close(release)
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, ok := gate.Reveal(ctx, fixedContext, token, func(context.Context, string) (string, error) {
			<-release // подписант игнорирует отмену
			return "0xlate", nil
		})
		assert.False(t, ok)
		assert.Equal(t, reveal.OutcomeAbandoned, outcome)
	})

	t.Run("Signed but undecodable token", func(t *testing.T) {
		var outcome reveal.Outcome
		gate := reveal.NewGate(fhe.NewCodec(), zap.NewNop(), reveal.WithObserver(func(o reveal.Outcome) { outcome = o }))
		_, ok := gate.Reveal(context.Background(), fixedContext, "garbage", func(context.Context, string) (string, error) {
			return "0xsig", nil
		})
		assert.False(t, ok)
		assert.Equal(t, reveal.OutcomeDecodeFailed, outcome)
	})
}

// panicCipher fails the test if the gate tries to decode.
type panicCipher struct{}

func (panicCipher) Encode(float64) string { panic("unexpected Encode") }
func (panicCipher) Decode(string) (float64, error) {
	panic("unexpected Decode")
}
func (panicCipher) Apply(string, string) (string, error) { panic("unexpected Apply") }
