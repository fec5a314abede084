package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"butterfly-story/internal/butterfly"
	"butterfly-story/internal/metrics"
	"butterfly-story/internal/narrative"
	"butterfly-story/internal/reveal"
	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChoiceService - сценарии работы с развилками: отправка, чтение, история, раскрытие.
type ChoiceService interface {
	SubmitChoice(ctx context.Context, player string, input models.SubmitChoiceInput) (*models.Choice, error)
	ListChoices(ctx context.Context) ([]models.Choice, error)
	ListPlayerChoices(ctx context.Context, player string) ([]models.Choice, error)
	GetChoice(ctx context.Context, id string) (*models.Choice, error)
	Story(ctx context.Context) (*models.Narrative, error)
	PlayerStats(ctx context.Context, player string) (*models.PlayerStats, error)
	ComputeChoice(ctx context.Context, id, operation string) (string, error)
	NewRevealContext(ctx context.Context) models.RevealContext
	RevealChoice(ctx context.Context, id string, rc models.RevealContext, sign interfaces.Signer) (float64, bool, error)
	Available(ctx context.Context) (bool, error)
}

// Deps собирает зависимости сервиса. Clock и Rand внедряются ради детерминированных тестов.
type Deps struct {
	Store     interfaces.ChoiceStore
	Cipher    interfaces.ValueCipher
	Publisher interfaces.ChoiceEventPublisher // nil - события не публикуются
	Clock     interfaces.Clock
	Rand      interfaces.RandomSource
	ChainID   int64
	Logger    *zap.Logger
}

type choiceServiceImpl struct {
	store     interfaces.ChoiceStore
	cipher    interfaces.ValueCipher
	publisher interfaces.ChoiceEventPublisher
	clock     interfaces.Clock
	rng       interfaces.RandomSource
	chainID   int64
	gate      *reveal.Gate
	logger    *zap.Logger
}

var _ ChoiceService = (*choiceServiceImpl)(nil)

// NewChoiceService создает новый экземпляр ChoiceService.
func NewChoiceService(deps Deps) ChoiceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &choiceServiceImpl{
		store:     deps.Store,
		cipher:    deps.Cipher,
		publisher: publisher,
		clock:     deps.Clock,
		rng:       deps.Rand,
		chainID:   deps.ChainID,
		gate: reveal.NewGate(deps.Cipher, logger, reveal.WithObserver(func(o reveal.Outcome) {
			metrics.RevealOutcomes.WithLabelValues(string(o)).Inc()
		})),
		logger: logger.Named("ChoiceService"),
	}
}

// SubmitChoice validates, scores, encodes and stores a new choice.
// Validation runs before any encoding or effect work.
func (s *choiceServiceImpl) SubmitChoice(ctx context.Context, player string, input models.SubmitChoiceInput) (*models.Choice, error) {
	if strings.TrimSpace(player) == "" {
		metrics.SubmissionsFailed.WithLabelValues(metrics.ReasonAuth).Inc()
		return nil, models.ErrUnauthorized
	}
	chapter, weight, err := validateInput(input)
	if err != nil {
		metrics.SubmissionsFailed.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, err
	}
	log := s.logger.With(zap.String("player", player), zap.Int("chapter", chapter))

	// Недоступное хранилище отдаёт пустой список: эффект по нему был бы неверным навсегда.
	available, err := s.store.Available(ctx)
	if err != nil || !available {
		metrics.SubmissionsFailed.WithLabelValues(metrics.ReasonStore).Inc()
		log.Warn("Store is not available, submission rejected", zap.Error(err))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		return nil, models.ErrStoreUnavailable
	}

	// Снимок истории, на котором считается эффект. Параллельные отправки не сериализуются.
	history, err := s.store.List(ctx)
	if err != nil {
		metrics.SubmissionsFailed.WithLabelValues(metrics.ReasonStore).Inc()
		log.Error("Failed to load choice history", zap.Error(err))
		return nil, fmt.Errorf("load history: %w", err)
	}

	now := s.clock.Now()
	choice := models.Choice{
		ID:              NewChoiceID(now.UnixMilli(), s.rng),
		EncryptedWeight: s.cipher.Encode(weight),
		Timestamp:       now.Unix(),
		Player:          player,
		Chapter:         chapter,
		Description:     strings.TrimSpace(input.Description),
		ButterflyEffect: butterfly.Compute(history, player, s.rng),
	}

	if err := s.store.Append(ctx, choice); err != nil {
		metrics.SubmissionsFailed.WithLabelValues(metrics.ReasonStore).Inc()
		log.Error("Failed to append choice", zap.String("choiceID", choice.ID), zap.Error(err))
		return nil, fmt.Errorf("append choice: %w", err)
	}
	metrics.ChoicesSubmitted.Inc()
	metrics.EffectScores.Observe(choice.ButterflyEffect)
	log.Info("Choice submitted",
		zap.String("choiceID", choice.ID),
		zap.Float64("butterflyEffect", choice.ButterflyEffect),
		zap.Int("historySize", len(history)),
	)

	event := models.ChoiceEvent{
		EventID:         uuid.NewString(),
		Type:            models.EventTypeChoiceSubmitted,
		ChoiceID:        choice.ID,
		Player:          choice.Player,
		Chapter:         choice.Chapter,
		ButterflyEffect: choice.ButterflyEffect,
		Timestamp:       choice.Timestamp,
	}
	if err := s.publisher.PublishChoiceEvent(ctx, event); err != nil {
		// Развилка уже сохранена, событие - не критично.
		log.Warn("Failed to publish choice event", zap.String("choiceID", choice.ID), zap.Error(err))
	}

	return &choice, nil
}

// ListChoices returns all choices newest first.
func (s *choiceServiceImpl) ListChoices(ctx context.Context) ([]models.Choice, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}
	return NewestFirst(list), nil
}

func (s *choiceServiceImpl) ListPlayerChoices(ctx context.Context, player string) ([]models.Choice, error) {
	list, err := s.ListChoices(ctx)
	if err != nil {
		return nil, err
	}
	return OwnedBy(list, player), nil
}

func (s *choiceServiceImpl) GetChoice(ctx context.Context, id string) (*models.Choice, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get choice: %w", err)
	}
	for i := range list {
		if list[i].ID == id {
			c := list[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrChoiceNotFound, id)
}

// Story derives the narrative from submission order, recomputed on every call.
func (s *choiceServiceImpl) Story(ctx context.Context) (*models.Narrative, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load choices for story: %w", err)
	}
	n := narrative.Derive(SubmissionOrder(list))
	return &n, nil
}

func (s *choiceServiceImpl) PlayerStats(ctx context.Context, player string) (*models.PlayerStats, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load choices for stats: %w", err)
	}
	ordered := SubmissionOrder(list)
	story := narrative.Derive(ordered)
	return BuildStats(player, OwnedBy(ordered, player), len(story.Path)), nil
}

// ComputeChoice applies an operation to a stored weight and returns only the new token.
// Nothing is persisted.
func (s *choiceServiceImpl) ComputeChoice(ctx context.Context, id, operation string) (string, error) {
	choice, err := s.GetChoice(ctx, id)
	if err != nil {
		return "", err
	}
	token, err := s.cipher.Apply(choice.EncryptedWeight, operation)
	if err != nil {
		s.logger.Warn("Compute on undecodable weight", zap.String("choiceID", id), zap.String("operation", operation))
		return "", err
	}
	return token, nil
}

func (s *choiceServiceImpl) NewRevealContext(_ context.Context) models.RevealContext {
	return reveal.NewContext(s.store.Address(), s.chainID, s.clock, s.rng)
}

// RevealChoice decodes the choice's weight if sign produces a signature over the challenge.
// ok=false means "not revealed"; the error is reserved for lookup failures.
func (s *choiceServiceImpl) RevealChoice(ctx context.Context, id string, rc models.RevealContext, sign interfaces.Signer) (float64, bool, error) {
	choice, err := s.GetChoice(ctx, id)
	if err != nil {
		return 0, false, err
	}
	value, ok := s.gate.Reveal(ctx, rc, choice.EncryptedWeight, sign)
	return value, ok, nil
}

func (s *choiceServiceImpl) Available(ctx context.Context) (bool, error) {
	return s.store.Available(ctx)
}

func validateInput(input models.SubmitChoiceInput) (int, float64, error) {
	if strings.TrimSpace(input.Description) == "" || input.Weight == nil {
		return 0, 0, models.ErrEmptyDescriptionOrWeight
	}
	weight := *input.Weight
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return 0, 0, fmt.Errorf("%w: weight must be a finite number", models.ErrEmptyDescriptionOrWeight)
	}
	chapter := input.Chapter
	if chapter == 0 {
		chapter = models.DefaultChapter
	}
	if chapter < models.MinChapter || chapter > models.MaxChapter {
		return 0, 0, fmt.Errorf("%w: %d not in [%d,%d]", models.ErrInvalidChapter, chapter, models.MinChapter, models.MaxChapter)
	}
	return chapter, weight, nil
}

// IsValidationError сообщает, что ошибка вызвана вводом пользователя.
func IsValidationError(err error) bool {
	return errors.Is(err, models.ErrEmptyDescriptionOrWeight) || errors.Is(err, models.ErrInvalidChapter)
}

type noopPublisher struct{}

func (noopPublisher) PublishChoiceEvent(context.Context, models.ChoiceEvent) error { return nil }

// SubmissionOrder returns a copy sorted by timestamp ascending; ties keep index order.
func SubmissionOrder(list []models.Choice) []models.Choice {
	out := append([]models.Choice(nil), list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// NewestFirst returns a copy sorted by timestamp descending.
func NewestFirst(list []models.Choice) []models.Choice {
	out := append([]models.Choice(nil), list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

// OwnedBy returns the choices submitted by player, preserving order.
func OwnedBy(list []models.Choice, player string) []models.Choice {
	out := make([]models.Choice, 0, len(list))
	for _, c := range list {
		if strings.EqualFold(c.Player, player) {
			out = append(out, c)
		}
	}
	return out
}
