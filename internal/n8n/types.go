package n8n

import (
	"encoding/json"

	"github.com/edvin/flowgate/internal/model"
)

type listWorkflowsResponse struct {
	Data []model.Workflow `json:"data"`
}

// createWorkflowRequest is the payload accepted by the backend's create
// endpoint. The backend rejects unknown fields such as id or tags, so
// the clone payload carries only the definition.
type createWorkflowRequest struct {
	Name        string          `json:"name"`
	Nodes       []model.Node    `json:"nodes"`
	Connections json.RawMessage `json:"connections"`
	Settings    json.RawMessage `json:"settings"`
}

func newCreateWorkflowRequest(wf *model.Workflow) createWorkflowRequest {
	req := createWorkflowRequest{
		Name:        wf.Name,
		Nodes:       wf.Nodes,
		Connections: wf.Connections,
		Settings:    wf.Settings,
	}
	if req.Nodes == nil {
		req.Nodes = []model.Node{}
	}
	if req.Connections == nil {
		req.Connections = json.RawMessage(`{}`)
	}
	if req.Settings == nil {
		req.Settings = json.RawMessage(`{}`)
	}
	return req
}
