package core

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/flowgate/internal/model"
)

// ---------- Mock backend ----------

// mockBackend implements the Backend interface for testing.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ExecuteByPath(ctx context.Context, path string, payload json.RawMessage, bearerToken string) (json.RawMessage, error) {
	args := m.Called(ctx, path, payload, bearerToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *mockBackend) ListByTags(ctx context.Context, tags ...string) ([]model.Workflow, error) {
	args := m.Called(ctx, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Workflow), args.Error(1)
}

func (m *mockBackend) GetWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *mockBackend) CreateWorkflow(ctx context.Context, wf *model.Workflow) (*model.Workflow, error) {
	args := m.Called(ctx, wf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *mockBackend) UpdateWorkflow(ctx context.Context, id string, wf *model.Workflow) (*model.Workflow, error) {
	args := m.Called(ctx, id, wf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *mockBackend) Activate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBackend) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ---------- Counting backend ----------

// countingBackend is a programmable backend for concurrency tests where
// call counts matter more than expectations. Function fields override
// the defaults; counters are atomic so goroutines can hammer it.
type countingBackend struct {
	executeFn func(path string) (json.RawMessage, error)
	listFn    func() ([]model.Workflow, error)
	createFn  func(wf *model.Workflow) (*model.Workflow, error)

	executeCalls  atomic.Int64
	listCalls     atomic.Int64
	getCalls      atomic.Int64
	createCalls   atomic.Int64
	updateCalls   atomic.Int64
	activateCalls atomic.Int64
}

func (b *countingBackend) ExecuteByPath(ctx context.Context, path string, payload json.RawMessage, bearerToken string) (json.RawMessage, error) {
	b.executeCalls.Add(1)
	if b.executeFn != nil {
		return b.executeFn(path)
	}
	return json.RawMessage(`{}`), nil
}

func (b *countingBackend) ListByTags(ctx context.Context, tags ...string) ([]model.Workflow, error) {
	b.listCalls.Add(1)
	if b.listFn != nil {
		return b.listFn()
	}
	return nil, nil
}

func (b *countingBackend) GetWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	b.getCalls.Add(1)
	return &model.Workflow{
		ID:   id,
		Name: "tpl",
		Nodes: []model.Node{{
			Name:       "llm trigger",
			Type:       model.WebhookNodeType,
			Parameters: map[string]any{"path": "/tpl"},
		}},
	}, nil
}

func (b *countingBackend) CreateWorkflow(ctx context.Context, wf *model.Workflow) (*model.Workflow, error) {
	b.createCalls.Add(1)
	if b.createFn != nil {
		return b.createFn(wf)
	}
	created := *wf
	created.ID = "created-1"
	return &created, nil
}

func (b *countingBackend) UpdateWorkflow(ctx context.Context, id string, wf *model.Workflow) (*model.Workflow, error) {
	b.updateCalls.Add(1)
	updated := *wf
	updated.ID = id
	return &updated, nil
}

func (b *countingBackend) Activate(ctx context.Context, id string) error {
	b.activateCalls.Add(1)
	return nil
}

func (b *countingBackend) Ping(ctx context.Context) error {
	return nil
}

func templateFor(workspace, segment string) []model.Workflow {
	return []model.Workflow{{
		ID:   "tpl-1",
		Name: "bot",
		Tags: []model.Tag{{Name: TemplateTag}, {Name: workspace}, {Name: segment}},
	}}
}
