package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"

	"go.uber.org/zap"
)

// Ключи в хранилище, совместимые с тем, что писал браузерный клиент.
const (
	KeyIndex        = "choice_keys"
	ChoiceKeyPrefix = "choice_"
)

// ChoiceKey returns the storage key of a choice body.
func ChoiceKey(id string) string { return ChoiceKeyPrefix + id }

// Compile-time check to ensure choiceRepository implements ChoiceStore
var _ interfaces.ChoiceStore = (*choiceRepository)(nil)

type choiceRepository struct {
	store  interfaces.DataStore
	logger *zap.Logger
}

// NewChoiceRepository layers the choice index and bodies over a raw key/value store.
func NewChoiceRepository(store interfaces.DataStore, logger *zap.Logger) interfaces.ChoiceStore {
	return &choiceRepository{
		store:  store,
		logger: logger.Named("ChoiceRepo"),
	}
}

// storedChoice is the body wire format under choice_<id>.
type storedChoice struct {
	Weight          string        `json:"weight"`
	Timestamp       int64         `json:"timestamp"`
	Player          string        `json:"player"`
	Chapter         chapterNumber `json:"chapter"`
	Description     string        `json:"description"`
	ButterflyEffect float64       `json:"butterflyEffect"`
}

// chapterNumber пишется строкой ("1"), как делал клиент, а читается и из строки, и из числа.
type chapterNumber int

func (c chapterNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(c)))
}

func (c *chapterNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, ok := parseLeadingInt(s)
		if !ok {
			return fmt.Errorf("chapter %q is not an integer", s)
		}
		*c = chapterNumber(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("chapter must be a string or integer: %w", err)
	}
	*c = chapterNumber(n)
	return nil
}

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// parseLeadingInt читает целое в начале строки, как parseInt: "2abc" -> 2.
func parseLeadingInt(s string) (int, bool) {
	m := leadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// List loads the key index and then each body. Unreadable entries are skipped.
func (r *choiceRepository) List(ctx context.Context) ([]models.Choice, error) {
	available, err := r.store.IsAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("check store availability: %w", err)
	}
	if !available {
		r.logger.Warn("Store is not available, returning empty choice list")
		return []models.Choice{}, nil
	}

	keys, err := r.loadKeys(ctx)
	if err != nil {
		if errors.Is(err, models.ErrCorruptKeyIndex) {
			r.logger.Error("Error parsing choice keys", zap.Error(err))
			return []models.Choice{}, nil
		}
		return nil, err
	}

	list := make([]models.Choice, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.GetData(ctx, ChoiceKey(key))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Error("Error loading choice", zap.String("choiceID", key), zap.Error(err))
			continue
		}
		if len(raw) == 0 {
			// Индекс записан, тело потерялось (или ещё не доехало).
			r.logger.Warn("Choice body missing", zap.String("choiceID", key))
			continue
		}
		var body storedChoice
		if err := json.Unmarshal(raw, &body); err != nil {
			r.logger.Error("Error parsing choice data", zap.String("choiceID", key), zap.Error(err))
			continue
		}
		list = append(list, models.Choice{
			ID:              key,
			EncryptedWeight: body.Weight,
			Timestamp:       body.Timestamp,
			Player:          body.Player,
			Chapter:         int(body.Chapter),
			Description:     body.Description,
			ButterflyEffect: body.ButterflyEffect,
		})
	}

	r.logger.Debug("Loaded choices", zap.Int("keys", len(keys)), zap.Int("choices", len(list)))
	return list, nil
}

// Append writes the body first and the index second.
// If the index write fails the body stays orphaned; retrying the append repairs it.
func (r *choiceRepository) Append(ctx context.Context, choice models.Choice) error {
	if choice.ID == "" {
		return fmt.Errorf("%w: choice id is empty", models.ErrInvalidInput)
	}
	log := r.logger.With(zap.String("choiceID", choice.ID), zap.String("player", choice.Player))

	available, err := r.store.IsAvailable(ctx)
	if err != nil {
		return fmt.Errorf("check store availability: %w", err)
	}
	if !available {
		log.Warn("Store is not available, refusing to append")
		return models.ErrStoreUnavailable
	}

	body, err := json.Marshal(storedChoice{
		Weight:          choice.EncryptedWeight,
		Timestamp:       choice.Timestamp,
		Player:          choice.Player,
		Chapter:         chapterNumber(choice.Chapter),
		Description:     choice.Description,
		ButterflyEffect: choice.ButterflyEffect,
	})
	if err != nil {
		return fmt.Errorf("marshal choice: %w", err)
	}
	if err := r.store.SetData(ctx, ChoiceKey(choice.ID), body); err != nil {
		log.Error("Failed to store choice body", zap.Error(err))
		return fmt.Errorf("store choice body: %w", err)
	}

	keys, err := r.loadKeys(ctx)
	if err != nil {
		// Битый индекс не перезаписываем: это потеряло бы все остальные развилки.
		log.Error("Refusing to update choice index", zap.Error(err))
		return err
	}
	for _, k := range keys {
		if k == choice.ID {
			log.Debug("Choice already indexed")
			return nil
		}
	}
	keys = append(keys, choice.ID)

	rawKeys, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal choice keys: %w", err)
	}
	if err := r.store.SetData(ctx, KeyIndex, rawKeys); err != nil {
		log.Error("Failed to update choice index, body is orphaned until retry", zap.Error(err))
		return fmt.Errorf("store choice keys: %w", err)
	}

	log.Info("Choice appended", zap.Int("indexSize", len(keys)))
	return nil
}

func (r *choiceRepository) Available(ctx context.Context) (bool, error) {
	return r.store.IsAvailable(ctx)
}

func (r *choiceRepository) Address() string {
	return r.store.Address()
}

func (r *choiceRepository) loadKeys(ctx context.Context) ([]string, error) {
	raw, err := r.store.GetData(ctx, KeyIndex)
	if err != nil {
		return nil, fmt.Errorf("load choice keys: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return []string{}, nil
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptKeyIndex, err)
	}
	return keys, nil
}
