package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/openfoodfacts-mcp/backend/internal/metrics"
	"github.com/rs/zerolog"
)

// Invocation outcomes recorded in logs and metrics
const (
	outcomeOK        = "ok"
	outcomeDegraded  = "degraded"
	outcomeNoResults = "no_results"
)

// Dispatcher routes capability invocations to the registry. Every failure
// leaves it as a *domain.CapabilityError.
type Dispatcher struct {
	registry *Registry
	logger   *zerolog.Logger
	metrics  *metrics.Registry
}

// NewDispatcher creates a dispatcher over a built registry.
func NewDispatcher(registry *Registry, logger *zerolog.Logger, m *metrics.Registry) *Dispatcher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Dispatcher{registry: registry, logger: logger, metrics: m}
}

// Registry returns the capability table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Invoke decodes rawArgs, runs the named capability and returns its result.
// sampler may be nil when the caller cannot sample.
func (d *Dispatcher) Invoke(ctx context.Context, name string, rawArgs json.RawMessage, sampler domain.Sampler) (res *Result, err error) {
	invocationID := uuid.NewString()
	start := time.Now()
	log := d.logger.With().Str("capability", name).Str("invocation_id", invocationID).Logger()

	capability, ok := d.registry.Lookup(name)
	metricName := name
	if !ok {
		metricName = "unknown"
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Msg("capability panicked")
			res = nil
			err = newCapabilityError(name, rawArgs, invocationID, fmt.Errorf("internal error: %v", rec))
		}

		elapsed := time.Since(start)
		outcome := outcomeOf(res, err)
		d.metrics.RecordCapability(metricName, outcome, elapsed)

		event := log.Info()
		if err != nil {
			event = log.Warn().Err(err)
			if domain.CategoryOf(err) == domain.CategoryInternal {
				event = log.Error().Err(err)
			}
		}
		event.Str("outcome", outcome).Dur("latency", elapsed).Msg("capability invoked")
	}()

	if !ok {
		return nil, newCapabilityError(name, rawArgs, invocationID, fmt.Errorf("%w: unknown capability %q", domain.ErrNotFound, name))
	}

	log.Debug().RawJSON("arguments", argsForLog(rawArgs)).Msg("invoking capability")

	res, err = capability.invoke(ctx, rawArgs, sampler)
	if err != nil {
		return nil, newCapabilityError(name, rawArgs, invocationID, err)
	}
	return res, nil
}

func newCapabilityError(name string, rawArgs json.RawMessage, invocationID string, err error) *domain.CapabilityError {
	ce := &domain.CapabilityError{
		Capability:   name,
		Arguments:    rawArgs,
		Category:     domain.CategoryOf(err),
		Message:      err.Error(),
		StatusCode:   domain.StatusCodeOf(err),
		InvocationID: invocationID,
		Err:          err,
	}

	var ue *userError
	switch {
	case errors.As(err, &ue):
		ce.Message = ue.message
		ce.Hint = ue.hint
	case domain.IsUpstreamFailure(err):
		ce.Message = "Open Food Facts request failed: " + err.Error()
		ce.Hint = "The upstream service may be temporarily unavailable. Please try again later."
	case ce.Category == domain.CategoryInvalidArgument:
		ce.Message = "Invalid arguments: " + strings.TrimPrefix(err.Error(), domain.ErrInvalidArgument.Error()+": ")
	}
	return ce
}

func outcomeOf(res *Result, err error) string {
	switch {
	case err != nil:
		return strings.ToLower(string(domain.CategoryOf(err)))
	case res != nil && res.Degraded:
		return outcomeDegraded
	case res != nil && res.NoResults:
		return outcomeNoResults
	default:
		return outcomeOK
	}
}

// argsForLog returns raw arguments when they are valid JSON.
func argsForLog(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("null")
	}
	return raw
}
