package service

import (
	"context"

	"llm-taskbench/internal/dto"
	"llm-taskbench/internal/pkg/logger"
	"llm-taskbench/pkg/analytics"
	"llm-taskbench/pkg/apperror"
	"llm-taskbench/pkg/identity"
)

type IAccountService interface {
	BillingPortal(ctx context.Context) (*dto.BillingPortalResponse, error)
	Identify(ctx context.Context, userID string, req *dto.IdentifyRequest) error
}

type accountService struct {
	identity  *identity.Client
	analytics *analytics.Client
	logger    logger.ILogger
}

func NewAccountService(id *identity.Client, an *analytics.Client, log logger.ILogger) IAccountService {
	return &accountService{identity: id, analytics: an, logger: log}
}

func (s *accountService) BillingPortal(ctx context.Context) (*dto.BillingPortalResponse, error) {
	if s.identity == nil || !s.identity.Configured() {
		return nil, apperror.WithStatus(503, "Billing is not available on this deployment")
	}
	url, err := s.identity.BillingPortalURL(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.BillingPortalResponse{URL: url}, nil
}

// Identify forwards contact info to analytics. Failures are logged,
// never surfaced: identification is not worth breaking a request over.
func (s *accountService) Identify(ctx context.Context, userID string, req *dto.IdentifyRequest) error {
	if s.analytics == nil || !s.analytics.Enabled() {
		return nil
	}
	if err := s.analytics.Identify(ctx, userID, req.Email, req.Name); err != nil {
		s.logger.Warn("Account", "Failed to identify user", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	return nil
}
