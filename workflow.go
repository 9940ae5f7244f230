package tdworkflow

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Workflow is a named task-graph definition belonging to a project.
type Workflow struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Project   Project        `json:"project"`
	Revision  string         `json:"revision,omitempty"`
	Timezone  string         `json:"timezone,omitempty"`
	Config    map[string]any `json:"config,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
	DeletedAt *string        `json:"deletedAt,omitempty"`
}

type workflowJSON Workflow

// UnmarshalJSON implements json.Unmarshaler. It requires id, name and the
// embedded project.
func (w *Workflow) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID      *flexID  `json:"id"`
		Name    *string  `json:"name"`
		Project *Project `json:"project"`
		workflowJSON
	}
	if err := decodeRecord("Workflow", data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ID == nil:
		return invalid("Workflow", "id", "is required")
	case raw.Name == nil:
		return invalid("Workflow", "name", "is required")
	case raw.Project == nil:
		return invalid("Workflow", "project", "is required")
	}
	*w = Workflow(raw.workflowJSON)
	w.ID = raw.ID.int64()
	w.Name = *raw.Name
	w.Project = *raw.Project
	return nil
}

// ConfigYAML renders the workflow definition as YAML, the form it is
// written in a .dig file.
func (w Workflow) ConfigYAML() (string, error) {
	if len(w.Config) == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(w.Config)
	if err != nil {
		return "", fmt.Errorf("tdworkflow: render workflow %d config: %w", w.ID, err)
	}
	return string(out), nil
}

// WorkflowsOptions filters Workflows. Zero values are not sent.
type WorkflowsOptions struct {
	// Count caps the number of workflows returned.
	Count int

	// LastID returns only workflows with an id greater than LastID.
	LastID int64

	// Order is "asc" or "desc".
	Order string
}

// Workflows returns workflows across all projects.
func (c *Client) Workflows(ctx context.Context, opts WorkflowsOptions) ([]Workflow, error) {
	if opts.Order != "" && opts.Order != "asc" && opts.Order != "desc" {
		return nil, invalid("Workflows", "Order", `must be "asc" or "desc", got %q`, opts.Order)
	}
	q := url.Values{}
	if opts.Count > 0 {
		q.Set("count", strconv.Itoa(opts.Count))
	}
	if opts.LastID > 0 {
		q.Set("last_id", strconv.FormatInt(opts.LastID, 10))
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}
	var resp struct {
		Workflows []Workflow `json:"workflows"`
	}
	if err := c.transport.get(ctx, "workflows", q, &resp); err != nil {
		return nil, err
	}
	return resp.Workflows, nil
}

// Workflow retrieves a workflow by id.
func (c *Client) Workflow(ctx context.Context, id int64) (*Workflow, error) {
	if err := validateID("Workflow", "id", id); err != nil {
		return nil, err
	}
	var resp Workflow
	if err := c.transport.get(ctx, fmt.Sprintf("workflows/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WorkflowSessions returns the sessions of a workflow. opts.Workflow is
// ignored.
func (c *Client) WorkflowSessions(ctx context.Context, id int64, opts ListOptions) ([]Session, error) {
	if err := validateID("WorkflowSessions", "id", id); err != nil {
		return nil, err
	}
	opts.Workflow = ""
	var resp struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.transport.get(ctx, fmt.Sprintf("workflows/%d/sessions", id), opts.values(), &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}
