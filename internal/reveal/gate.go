// Package reveal gates local decoding of a stored weight behind a signing step.
//
// The gate is a display ritual, not access control: tokens are readable by anyone
// holding them, and nothing here changes what is persisted. It only decides whether a
// UI layer gets a decoded number to show.
package reveal

import (
	"context"
	"errors"
	"fmt"

	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"

	"go.uber.org/zap"
)

// Outcome describes how a reveal attempt ended.
type Outcome string

const (
	OutcomeRevealed     Outcome = "revealed"
	OutcomeRejected     Outcome = "rejected"
	OutcomeAbandoned    Outcome = "abandoned"
	OutcomeDecodeFailed Outcome = "decode_failed"
)

// Gate runs the proof-of-possession step and decodes on success.
type Gate struct {
	cipher  interfaces.ValueCipher
	logger  *zap.Logger
	observe func(Outcome)
}

// Option configures a Gate.
type Option func(*Gate)

// WithObserver registers a callback invoked once per attempt with its outcome.
func WithObserver(fn func(Outcome)) Option {
	return func(g *Gate) { g.observe = fn }
}

// NewGate создает гейт поверх переданного шифра.
func NewGate(cipher interfaces.ValueCipher, logger *zap.Logger, opts ...Option) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{
		cipher:  cipher,
		logger:  logger.Named("RevealGate"),
		observe: func(Outcome) {},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type signResult struct {
	signature string
	err       error
}

// Reveal asks sign to sign the challenge built from rc and decodes token only if it succeeds.
// It returns ok=false when sign is nil, fails or panics, yields an empty signature, the caller
// abandons ctx, or the token does not decode. No timeout is applied here.
func (g *Gate) Reveal(ctx context.Context, rc models.RevealContext, token string, sign interfaces.Signer) (float64, bool) {
	value, outcome := g.reveal(ctx, rc, token, sign)
	g.observe(outcome)
	return value, outcome == OutcomeRevealed
}

func (g *Gate) reveal(ctx context.Context, rc models.RevealContext, token string, sign interfaces.Signer) (float64, Outcome) {
	message := BuildChallenge(rc)
	log := g.logger.With(zap.String("challengeDigest", ChallengeDigest(message)))

	if sign == nil {
		log.Warn("Reveal requested without a signer")
		return 0, OutcomeRejected
	}

	// Буферизованный канал: подписант может вернуться уже после того, как мы ушли.
	done := make(chan signResult, 1)
	go func() {
		// Паника подписанта в этой горутине уронила бы весь процесс.
		defer func() {
			if r := recover(); r != nil {
				done <- signResult{err: fmt.Errorf("%w: signer panicked: %v", models.ErrProofRejected, r)}
			}
		}()
		signature, err := sign(ctx, message)
		done <- signResult{signature: signature, err: err}
	}()

	var res signResult
	select {
	case <-ctx.Done():
		log.Debug("Reveal abandoned by caller", zap.Error(ctx.Err()))
		return 0, OutcomeAbandoned
	case res = <-done:
	}

	if res.err != nil {
		if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
			log.Debug("Reveal abandoned while signing", zap.Error(res.err))
			return 0, OutcomeAbandoned
		}
		log.Info("Proof of possession rejected", zap.Error(res.err))
		return 0, OutcomeRejected
	}
	if res.signature == "" {
		log.Info("Proof of possession returned empty signature")
		return 0, OutcomeRejected
	}

	value, err := g.cipher.Decode(token)
	if err != nil {
		log.Warn("Signed reveal of undecodable token", zap.Error(err))
		return 0, OutcomeDecodeFailed
	}
	log.Debug("Token revealed")
	return value, OutcomeRevealed
}
