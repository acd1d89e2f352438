package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/edvin/flowgate/internal/model"
)

// ProvisionService clones, patches and activates workflow instances from
// templates. For any key, at most one clone/patch/activate sequence runs
// at a time process-wide; concurrent callers join the in-flight run.
type ProvisionService struct {
	backend   Backend
	templates *TemplateService
	envPrefix string
	timeout   time.Duration
	logger    zerolog.Logger

	// flight is the only mutable shared state in the core. singleflight
	// drops the key once a run completes, so a later attempt after a
	// failure starts a fresh sequence.
	flight singleflight.Group
}

func NewProvisionService(backend Backend, templates *TemplateService, envPrefix string, timeout time.Duration, logger zerolog.Logger) *ProvisionService {
	return &ProvisionService{
		backend:   backend,
		templates: templates,
		envPrefix: envPrefix,
		timeout:   timeout,
		logger:    logger.With().Str("component", "provisioner").Logger(),
	}
}

// EnsureProvisioned makes sure a workflow instance exists for the key,
// cloning from a template when needed. Idempotent: callers re-query the
// backend by canonical path, so an instance that already exists is
// simply found and never re-cloned here thanks to the single-flight
// join. Caller cancellation stops the wait but not the in-flight run;
// other joiners and future triggers depend on it finishing.
func (s *ProvisionService) EnsureProvisioned(ctx context.Context, key model.TriggerKey) error {
	ch := s.flight.DoChan(key.String(), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return nil, s.provision(runCtx, key)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug().Str("key", key.String()).Msg("joined in-flight provisioning")
		}
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("waiting for provisioning of %s: %w", key, ctx.Err())
	}
}

// provision drives the per-key sequence:
// resolve -> clone -> patch trigger -> activate.
func (s *ProvisionService) provision(ctx context.Context, key model.TriggerKey) error {
	start := time.Now()

	tpl, err := s.templates.FindTemplate(ctx, key)
	if err != nil {
		return s.fail("resolve", key, err)
	}

	// The list endpoint returns workflows without their node graphs;
	// cloning needs the full definition.
	full, err := s.backend.GetWorkflow(ctx, tpl.ID)
	if err != nil {
		return s.fail("clone", key, err)
	}

	clone := &model.Workflow{
		Name:        fmt.Sprintf("%s_%s_%s", tpl.Name, key.Workspace, key.Segment),
		Nodes:       full.Nodes,
		Connections: full.Connections,
		Settings:    full.Settings,
	}
	created, err := s.backend.CreateWorkflow(ctx, clone)
	if err != nil {
		return s.fail("clone", key, err)
	}

	path := key.WebhookPath(s.envPrefix)
	patchedNodes, err := model.RewriteTriggerPath(full.Nodes, path)
	if err != nil {
		return s.fail("patch-trigger", key, err)
	}
	patched := &model.Workflow{
		Name:        created.Name,
		Nodes:       patchedNodes,
		Connections: full.Connections,
		Settings:    full.Settings,
	}
	if _, err := s.backend.UpdateWorkflow(ctx, created.ID, patched); err != nil {
		return s.fail("patch-trigger", key, err)
	}

	// An instance that never activated is not provisioned; the next
	// trigger gets a fresh attempt rather than a dead webhook.
	if err := s.backend.Activate(ctx, created.ID); err != nil {
		return s.fail("activate", key, err)
	}

	provisionsTotal.WithLabelValues("success").Inc()
	s.logger.Info().
		Str("key", key.String()).
		Str("workflow_id", created.ID).
		Str("template_id", tpl.ID).
		Str("trigger_path", path).
		Dur("duration", time.Since(start)).
		Msg("workflow instance provisioned")
	return nil
}

func (s *ProvisionService) fail(step string, key model.TriggerKey, err error) error {
	provisionsTotal.WithLabelValues("failure").Inc()
	s.logger.Error().
		Str("key", key.String()).
		Str("step", step).
		Err(err).
		Msg("provisioning failed")
	return &ProvisionError{Step: step, Key: key, Err: err}
}
