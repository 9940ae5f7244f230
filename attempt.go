package tdworkflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// AttemptStatus summarizes the done/success/cancelRequested flags of an
// attempt.
type AttemptStatus string

const (
	AttemptStatusRunning   AttemptStatus = "running"
	AttemptStatusCanceling AttemptStatus = "canceling"
	AttemptStatusSuccess   AttemptStatus = "success"
	AttemptStatusError     AttemptStatus = "error"
	AttemptStatusKilled    AttemptStatus = "killed"
)

// Attempt is one concrete execution of a session. A session that is
// retried gets a new attempt with a higher Index.
type Attempt struct {
	ID               int64          `json:"id"`
	Index            int            `json:"index,omitempty"`
	Project          *ProjectRef    `json:"project,omitempty"`
	Workflow         *WorkflowRef   `json:"workflow,omitempty"`
	SessionID        int64          `json:"sessionId,omitempty"`
	SessionUUID      string         `json:"sessionUuid,omitempty"`
	SessionTime      string         `json:"sessionTime,omitempty"`
	RetryAttemptName *string        `json:"retryAttemptName"`
	Done             bool           `json:"done"`
	Success          bool           `json:"success"`
	CancelRequested  bool           `json:"cancelRequested"`
	Params           map[string]any `json:"params,omitempty"`
	CreatedAt        string         `json:"createdAt,omitempty"`
	FinishedAt       *string        `json:"finishedAt,omitempty"`
}

type attemptJSON Attempt

// UnmarshalJSON implements json.Unmarshaler.
func (a *Attempt) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID        *flexID `json:"id"`
		SessionID *flexID `json:"sessionId"`
		attemptJSON
	}
	if err := decodeRecord("Attempt", data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return invalid("Attempt", "id", "is required")
	}
	*a = Attempt(raw.attemptJSON)
	a.ID = raw.ID.int64()
	a.SessionID = raw.SessionID.int64()
	return nil
}

// Finished reports whether the attempt has stopped running.
func (a Attempt) Finished() bool {
	return a.Done
}

// Status derives the attempt's display status.
func (a Attempt) Status() AttemptStatus {
	switch {
	case a.Done && a.Success:
		return AttemptStatusSuccess
	case a.Done && a.CancelRequested:
		return AttemptStatusKilled
	case a.Done:
		return AttemptStatusError
	case a.CancelRequested:
		return AttemptStatusCanceling
	default:
		return AttemptStatusRunning
	}
}

// Task is one node of an attempt's task graph.
type Task struct {
	ID              int64          `json:"id"`
	FullName        string         `json:"fullName"`
	ParentID        *int64         `json:"parentId"`
	Config          map[string]any `json:"config,omitempty"`
	Upstreams       []int64        `json:"upstreams"`
	State           string         `json:"state"`
	CancelRequested bool           `json:"cancelRequested"`
	ExportParams    map[string]any `json:"exportParams,omitempty"`
	StoreParams     map[string]any `json:"storeParams,omitempty"`
	StateParams     map[string]any `json:"stateParams,omitempty"`
	UpdatedAt       string         `json:"updatedAt,omitempty"`
	RetryAt         *string        `json:"retryAt"`
	StartedAt       *string        `json:"startedAt"`
	Error           map[string]any `json:"error,omitempty"`
	IsGroup         bool           `json:"isGroup"`
}

type taskJSON Task

// UnmarshalJSON implements json.Unmarshaler.
func (t *Task) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID        *flexID  `json:"id"`
		ParentID  *flexID  `json:"parentId"`
		Upstreams []flexID `json:"upstreams"`
		taskJSON
	}
	if err := decodeRecord("Task", data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return invalid("Task", "id", "is required")
	}
	*t = Task(raw.taskJSON)
	t.ID = raw.ID.int64()
	t.ParentID = raw.ParentID.ptr()
	t.Upstreams = make([]int64, len(raw.Upstreams))
	for i, u := range raw.Upstreams {
		t.Upstreams[i] = int64(u)
	}
	return nil
}

// AttemptsOptions filters Attempts. Zero values are not sent.
type AttemptsOptions struct {
	Project        string
	Workflow       string
	IncludeRetried bool
	LastID         int64
	PageSize       int
}

// StartAttemptRequest describes a new attempt of a workflow.
type StartAttemptRequest struct {
	WorkflowID int64 `json:"workflowId,string"`

	// SessionTime is the ISO-8601 session time. Default: now, in UTC.
	SessionTime string `json:"sessionTime"`

	// RetryAttemptName must be set to start another attempt of an existing
	// session.
	RetryAttemptName string `json:"retryAttemptName,omitempty"`

	Params map[string]any `json:"params"`
}

// Attempts returns attempts across all projects. Only the latest attempt
// of each session is included unless IncludeRetried is set.
func (c *Client) Attempts(ctx context.Context, opts AttemptsOptions) ([]Attempt, error) {
	q := url.Values{}
	if opts.Project != "" {
		q.Set("project", opts.Project)
	}
	if opts.Workflow != "" {
		q.Set("workflow", opts.Workflow)
	}
	if opts.IncludeRetried {
		q.Set("include_retried", "true")
	}
	if opts.LastID > 0 {
		q.Set("last_id", strconv.FormatInt(opts.LastID, 10))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	var resp struct {
		Attempts []Attempt `json:"attempts"`
	}
	if err := c.transport.get(ctx, "attempts", q, &resp); err != nil {
		return nil, err
	}
	return resp.Attempts, nil
}

// Attempt retrieves an attempt by id.
func (c *Client) Attempt(ctx context.Context, id int64) (*Attempt, error) {
	if err := validateID("Attempt", "id", id); err != nil {
		return nil, err
	}
	var resp Attempt
	if err := c.transport.get(ctx, attemptPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AttemptTasks returns the tasks of an attempt.
func (c *Client) AttemptTasks(ctx context.Context, id int64) ([]Task, error) {
	if err := validateID("AttemptTasks", "id", id); err != nil {
		return nil, err
	}
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.transport.get(ctx, attemptPath(id)+"/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// RetriedAttempts returns the earlier attempts of the session the given
// attempt belongs to.
func (c *Client) RetriedAttempts(ctx context.Context, id int64) ([]Attempt, error) {
	if err := validateID("RetriedAttempts", "id", id); err != nil {
		return nil, err
	}
	var resp struct {
		Attempts []Attempt `json:"attempts"`
	}
	if err := c.transport.get(ctx, attemptPath(id)+"/retries", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Attempts, nil
}

// StartAttempt starts a new attempt of a workflow.
//
// Example:
//
//	attempt, err := client.StartAttempt(ctx, tdworkflow.StartAttemptRequest{
//	    WorkflowID: 1624118,
//	    Params:     map[string]any{"target_date": "2019-11-01"},
//	})
func (c *Client) StartAttempt(ctx context.Context, req StartAttemptRequest) (*Attempt, error) {
	if err := validateID("StartAttempt", "WorkflowID", req.WorkflowID); err != nil {
		return nil, err
	}
	if req.SessionTime == "" {
		req.SessionTime = time.Now().UTC().Format(time.RFC3339)
	}
	if req.Params == nil {
		req.Params = map[string]any{}
	}
	var resp Attempt
	if err := c.transport.put(ctx, "attempts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// KillAttempt requests cancellation of a running attempt. It returns true
// when the server accepts the request.
func (c *Client) KillAttempt(ctx context.Context, id int64) (bool, error) {
	if err := validateID("KillAttempt", "id", id); err != nil {
		return false, err
	}
	if _, err := c.transport.do(ctx, http.MethodPost, attemptPath(id)+"/kill", nil, struct{}{}, nil); err != nil {
		return false, err
	}
	return true, nil
}

func attemptPath(id int64) string {
	return fmt.Sprintf("attempts/%d", id)
}
