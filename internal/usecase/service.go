package usecase

import (
	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/openfoodfacts-mcp/backend/internal/metrics"
	"github.com/rs/zerolog"
)

// Service implements the capability handlers on top of the upstream client.
type Service struct {
	client   domain.UpstreamClient
	resolver *Resolver
	logger   *zerolog.Logger
	metrics  *metrics.Registry
}

// NewService creates a new capability service with dependencies. A nil
// logger discards output and a nil metrics registry records nothing.
func NewService(client domain.UpstreamClient, logger *zerolog.Logger, m *metrics.Registry) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		client:   client,
		resolver: NewResolver(client, logger),
		logger:   logger,
		metrics:  m,
	}
}

// Resolver returns the identifier resolver used by the product capabilities.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}
