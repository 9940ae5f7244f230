package tdworkflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Session is one logical run of a workflow at a given session time. Its
// attempts are the concrete executions.
type Session struct {
	ID          int64       `json:"id"`
	Project     ProjectRef  `json:"project"`
	Workflow    WorkflowRef `json:"workflow"`
	SessionUUID string      `json:"sessionUuid,omitempty"`
	SessionTime string      `json:"sessionTime,omitempty"`
	LastAttempt *Attempt    `json:"lastAttempt,omitempty"`
}

type sessionJSON Session

// UnmarshalJSON implements json.Unmarshaler.
func (s *Session) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID       *flexID      `json:"id"`
		Project  *ProjectRef  `json:"project"`
		Workflow *WorkflowRef `json:"workflow"`
		sessionJSON
	}
	if err := decodeRecord("Session", data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ID == nil:
		return invalid("Session", "id", "is required")
	case raw.Project == nil:
		return invalid("Session", "project", "is required")
	case raw.Workflow == nil:
		return invalid("Session", "workflow", "is required")
	}
	*s = Session(raw.sessionJSON)
	s.ID = raw.ID.int64()
	s.Project = *raw.Project
	s.Workflow = *raw.Workflow
	return nil
}

// UUID parses SessionUUID.
func (s Session) UUID() (uuid.UUID, error) {
	id, err := uuid.Parse(s.SessionUUID)
	if err != nil {
		return uuid.Nil, invalid("Session", "sessionUuid", "%v", err)
	}
	return id, nil
}

// Sessions returns sessions across all projects, newest first.
// opts.Workflow is ignored.
func (c *Client) Sessions(ctx context.Context, opts ListOptions) ([]Session, error) {
	opts.Workflow = ""
	var resp struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.transport.get(ctx, "sessions", opts.values(), &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// Session retrieves a session by id.
func (c *Client) Session(ctx context.Context, id int64) (*Session, error) {
	if err := validateID("Session", "id", id); err != nil {
		return nil, err
	}
	var resp Session
	if err := c.transport.get(ctx, fmt.Sprintf("sessions/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionAttempts returns the attempts of a session, including retried
// ones. opts.Workflow is ignored.
func (c *Client) SessionAttempts(ctx context.Context, id int64, opts ListOptions) ([]Attempt, error) {
	if err := validateID("SessionAttempts", "id", id); err != nil {
		return nil, err
	}
	opts.Workflow = ""
	var resp struct {
		Attempts []Attempt `json:"attempts"`
	}
	if err := c.transport.get(ctx, fmt.Sprintf("sessions/%d/attempts", id), opts.values(), &resp); err != nil {
		return nil, err
	}
	return resp.Attempts, nil
}
