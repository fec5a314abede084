package interfaces

import (
	"context"

	"butterfly-story/shared/models"
)

// ChoiceEventPublisher defines the interface for announcing stored choices.
//
//go:generate mockery --name ChoiceEventPublisher --output ./mocks --outpkg mocks --case=underscore
type ChoiceEventPublisher interface {
	PublishChoiceEvent(ctx context.Context, event models.ChoiceEvent) error
}
