package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// WebhookNodeType is the node type that carries a workflow's inbound
// webhook trigger in the automation backend's node graph.
const WebhookNodeType = "n8n-nodes-base.webhook"

// TriggerKey identifies the automation flow for a tenant: a two-level
// (workspace, segment) routing key.
type TriggerKey struct {
	Workspace string
	Segment   string
}

func (k TriggerKey) String() string {
	return k.Workspace + "/" + k.Segment
}

// WebhookPath returns the canonical webhook path for the key under the
// given environment prefix, e.g. /v1/acme/support.
func (k TriggerKey) WebhookPath(envPrefix string) string {
	return "/" + envPrefix + "/" + k.Workspace + "/" + k.Segment
}

// Tag is a catalog tag attached to a workflow.
type Tag struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Node is a single node in a workflow's definition graph. Only the
// fields this service touches are typed; the rest round-trip untouched.
type Node struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	TypeVersion float64         `json:"typeVersion,omitempty"`
	Position    json.RawMessage `json:"position,omitempty"`
	Parameters  map[string]any  `json:"parameters,omitempty"`
	Credentials json.RawMessage `json:"credentials,omitempty"`
}

// Workflow is a workflow as the automation backend reports it: either a
// tagged template or a provisioned per-key instance.
type Workflow struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Active      bool            `json:"active,omitempty"`
	Tags        []Tag           `json:"tags,omitempty"`
	Nodes       []Node          `json:"nodes,omitempty"`
	Connections json.RawMessage `json:"connections,omitempty"`
	Settings    json.RawMessage `json:"settings,omitempty"`
}

// TagNames returns the workflow's tag names in catalog order.
func (w *Workflow) TagNames() []string {
	names := make([]string, 0, len(w.Tags))
	for _, t := range w.Tags {
		names = append(names, t.Name)
	}
	return names
}

// HasTags reports whether the workflow carries every named tag. Extra
// tags are allowed.
func (w *Workflow) HasTags(names ...string) bool {
	for _, want := range names {
		found := false
		for _, t := range w.Tags {
			if t.Name == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TemplateInfo is a catalog template as exposed on the templates listing
// endpoint, with workspace/segment derived from its tags.
type TemplateInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Workspace string   `json:"workspace,omitempty"`
	Segment   string   `json:"segment,omitempty"`
	Tags      []string `json:"tags"`
}

// RewriteTriggerPath returns a copy of the node graph with every webhook
// trigger node's path parameter set to newPath. A clone fresh off a
// template still carries the template's trigger path, so provisioning
// must run this before activation. Errors if the graph has no webhook
// trigger node.
func RewriteTriggerPath(nodes []Node, newPath string) ([]Node, error) {
	patched := make([]Node, len(nodes))
	copy(patched, nodes)

	found := false
	for i := range patched {
		if patched[i].Type != WebhookNodeType {
			continue
		}
		params := make(map[string]any, len(patched[i].Parameters)+1)
		for k, v := range patched[i].Parameters {
			params[k] = v
		}
		params["path"] = newPath
		patched[i].Parameters = params
		found = true
	}
	if !found {
		return nil, fmt.Errorf("node graph has no %s node", WebhookNodeType)
	}
	return patched, nil
}

// ExecutionAttempt records which path an execution took through the
// gateway: straight through, or recovered after lazy provisioning.
type ExecutionAttempt string

const (
	AttemptDirect    ExecutionAttempt = "direct"
	AttemptRecovered ExecutionAttempt = "recovered_after_provisioning"
)

// ExecutionResult is a successful webhook execution plus timing metadata.
type ExecutionResult struct {
	ExecutionID string
	Attempt     ExecutionAttempt
	Data        json.RawMessage
	StartedAt   time.Time
	FinishedAt  time.Time
	Duration    time.Duration
}
