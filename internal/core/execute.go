package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edvin/flowgate/internal/model"
	"github.com/edvin/flowgate/internal/n8n"
)

// ExecutionService is the gateway for trigger payloads. It executes the
// webhook at the key's canonical path and, when the backend reports no
// workflow there, provisions one and retries exactly once. The two-state
// result (direct vs recovered) keeps the retry bound out of loop
// counters: a second not-found is final.
type ExecutionService struct {
	backend     Backend
	provisioner *ProvisionService
	envPrefix   string
	logger      zerolog.Logger
}

func NewExecutionService(backend Backend, provisioner *ProvisionService, envPrefix string, logger zerolog.Logger) *ExecutionService {
	return &ExecutionService{
		backend:     backend,
		provisioner: provisioner,
		envPrefix:   envPrefix,
		logger:      logger.With().Str("component", "execution-gateway").Logger(),
	}
}

// Execute routes a trigger payload to the workflow instance for the key.
// The optional bearer token is forwarded verbatim to the backend. Holds
// no state; the backend catalog is the source of truth for what exists.
func (s *ExecutionService) Execute(ctx context.Context, key model.TriggerKey, payload json.RawMessage, bearerToken string) (*model.ExecutionResult, error) {
	executionID := uuid.New().String()
	start := time.Now()
	path := key.WebhookPath(s.envPrefix)

	logger := s.logger.With().
		Str("execution_id", executionID).
		Str("key", key.String()).
		Str("path", path).
		Logger()

	data, err := s.backend.ExecuteByPath(ctx, path, payload, bearerToken)
	if err == nil {
		executionsTotal.WithLabelValues(string(model.AttemptDirect), "success").Inc()
		logger.Info().Dur("duration", time.Since(start)).Msg("workflow executed")
		return s.result(executionID, model.AttemptDirect, data, start), nil
	}
	if !errors.Is(err, n8n.ErrNotFound) {
		// Transient or unexpected backend failure: surface immediately,
		// provisioning cannot help.
		executionsTotal.WithLabelValues(string(model.AttemptDirect), "failure").Inc()
		return nil, fmt.Errorf("execute %s: %w", key, err)
	}

	logger.Info().Msg("no workflow at canonical path, provisioning from template")
	if err := s.provisioner.EnsureProvisioned(ctx, key); err != nil {
		executionsTotal.WithLabelValues(string(model.AttemptRecovered), "failure").Inc()
		return nil, err
	}

	data, err = s.backend.ExecuteByPath(ctx, path, payload, bearerToken)
	if err != nil {
		executionsTotal.WithLabelValues(string(model.AttemptRecovered), "failure").Inc()
		return nil, fmt.Errorf("execute %s after provisioning: %w", key, err)
	}

	executionsTotal.WithLabelValues(string(model.AttemptRecovered), "success").Inc()
	logger.Info().Dur("duration", time.Since(start)).Msg("workflow executed after provisioning")
	return s.result(executionID, model.AttemptRecovered, data, start), nil
}

func (s *ExecutionService) result(executionID string, attempt model.ExecutionAttempt, data json.RawMessage, start time.Time) *model.ExecutionResult {
	now := time.Now()
	return &model.ExecutionResult{
		ExecutionID: executionID,
		Attempt:     attempt,
		Data:        data,
		StartedAt:   start,
		FinishedAt:  now,
		Duration:    now.Sub(start),
	}
}
