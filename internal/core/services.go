// Package core implements the provisioning and execution control flow:
// resolve-or-create of workflow instances keyed by (workspace, segment),
// with single-flight coordination of concurrent first-use triggers.
package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/flowgate/internal/model"
)

// Backend abstracts the automation backend operations the core needs.
// internal/n8n.Client satisfies it.
type Backend interface {
	ExecuteByPath(ctx context.Context, path string, payload json.RawMessage, bearerToken string) (json.RawMessage, error)
	ListByTags(ctx context.Context, tags ...string) ([]model.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*model.Workflow, error)
	CreateWorkflow(ctx context.Context, wf *model.Workflow) (*model.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, wf *model.Workflow) (*model.Workflow, error)
	Activate(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type Services struct {
	Template  *TemplateService
	Provision *ProvisionService
	Execution *ExecutionService
}

func NewServices(backend Backend, envPrefix string, provisionTimeout time.Duration, logger zerolog.Logger) *Services {
	template := NewTemplateService(backend, logger)
	provision := NewProvisionService(backend, template, envPrefix, provisionTimeout, logger)
	execution := NewExecutionService(backend, provision, envPrefix, logger)

	return &Services{
		Template:  template,
		Provision: provision,
		Execution: execution,
	}
}
