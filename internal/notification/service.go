package notification

import (
	"context"

	"labrent/kit/observability"
)

// Service surfaces user-facing notices (the toast analog). Dedup of the
// payment success notice is the ledger's job, not this service's.
type Service struct {
	logger *observability.Logger
}

func NewService(logger *observability.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) Notify(ctx context.Context, userID string, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Info("notify", "user_id", userID, "msg", msg)
}

func (s *Service) Warn(ctx context.Context, userID string, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Warn("notify", "user_id", userID, "msg", msg)
}
