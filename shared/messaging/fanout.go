package messaging

import (
	"context"
	"errors"

	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"
)

// FanoutPublisher рассылает событие всем приёмникам и собирает их ошибки.
type FanoutPublisher []interfaces.ChoiceEventPublisher

var _ interfaces.ChoiceEventPublisher = FanoutPublisher(nil)

// NewFanoutPublisher пропускает nil приёмники.
func NewFanoutPublisher(sinks ...interfaces.ChoiceEventPublisher) FanoutPublisher {
	out := make(FanoutPublisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f FanoutPublisher) PublishChoiceEvent(ctx context.Context, event models.ChoiceEvent) error {
	var errs []error
	for _, sink := range f {
		if err := sink.PublishChoiceEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
