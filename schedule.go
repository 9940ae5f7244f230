package tdworkflow

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Schedule is a recurring trigger for a workflow. A non-nil DisabledAt
// means the schedule is disabled.
type Schedule struct {
	ID               int64       `json:"id"`
	Project          ProjectRef  `json:"project"`
	Workflow         WorkflowRef `json:"workflow"`
	NextRunTime      string      `json:"nextRunTime,omitempty"`
	NextScheduleTime string      `json:"nextScheduleTime,omitempty"`
	CreatedAt        string      `json:"createdAt,omitempty"`
	UpdatedAt        string      `json:"updatedAt,omitempty"`
	DisabledAt       *string     `json:"disabledAt"`
}

type scheduleJSON Schedule

// UnmarshalJSON implements json.Unmarshaler.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID       *flexID      `json:"id"`
		Project  *ProjectRef  `json:"project"`
		Workflow *WorkflowRef `json:"workflow"`
		scheduleJSON
	}
	if err := decodeRecord("Schedule", data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ID == nil:
		return invalid("Schedule", "id", "is required")
	case raw.Project == nil:
		return invalid("Schedule", "project", "is required")
	case raw.Workflow == nil:
		return invalid("Schedule", "workflow", "is required")
	}
	*s = Schedule(raw.scheduleJSON)
	s.ID = raw.ID.int64()
	s.Project = *raw.Project
	s.Workflow = *raw.Workflow
	return nil
}

// Disabled reports whether the schedule is disabled.
func (s Schedule) Disabled() bool {
	return s.DisabledAt != nil
}

// ScheduleAttempt is the result of a backfill: the attempts started for a
// schedule.
type ScheduleAttempt struct {
	ID       int64       `json:"id"`
	Project  ProjectRef  `json:"project"`
	Workflow WorkflowRef `json:"workflow"`
	Attempts []Attempt   `json:"attempts"`
}

type scheduleAttemptJSON ScheduleAttempt

// UnmarshalJSON implements json.Unmarshaler.
func (s *ScheduleAttempt) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID       *flexID      `json:"id"`
		Project  *ProjectRef  `json:"project"`
		Workflow *WorkflowRef `json:"workflow"`
		scheduleAttemptJSON
	}
	if err := decodeRecord("ScheduleAttempt", data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ID == nil:
		return invalid("ScheduleAttempt", "id", "is required")
	case raw.Project == nil:
		return invalid("ScheduleAttempt", "project", "is required")
	case raw.Workflow == nil:
		return invalid("ScheduleAttempt", "workflow", "is required")
	}
	*s = ScheduleAttempt(raw.scheduleAttemptJSON)
	s.ID = raw.ID.int64()
	s.Project = *raw.Project
	s.Workflow = *raw.Workflow
	if s.Attempts == nil {
		s.Attempts = []Attempt{}
	}
	return nil
}

// BackfillRequest describes the sessions a backfill re-runs.
type BackfillRequest struct {
	// AttemptName names the backfill attempts; it must be unique per
	// schedule. Required.
	AttemptName string `json:"attemptName"`

	// FromTime is the first session time (ISO-8601) to run. Required.
	FromTime string `json:"fromTime"`

	// DryRun reports the sessions without starting them.
	DryRun bool `json:"dryRun"`

	// Count limits the number of sessions. Zero means up to now.
	Count int `json:"count,omitempty"`
}

// SkipRequest describes how far a schedule skips forward. Exactly one of
// Count, NextTime or NextRunTime should be set.
type SkipRequest struct {
	Count       int    `json:"count,omitempty"`
	FromTime    string `json:"fromTime,omitempty"`
	NextTime    string `json:"nextTime,omitempty"`
	NextRunTime string `json:"nextRunTime,omitempty"`
	DryRun      bool   `json:"dryRun"`
}

// Schedules returns schedules across all projects.
func (c *Client) Schedules(ctx context.Context, lastID int64) ([]Schedule, error) {
	q := url.Values{}
	if lastID > 0 {
		q.Set("last_id", strconv.FormatInt(lastID, 10))
	}
	var resp struct {
		Schedules []Schedule `json:"schedules"`
	}
	if err := c.transport.get(ctx, "schedules", q, &resp); err != nil {
		return nil, err
	}
	return resp.Schedules, nil
}

// Schedule retrieves a schedule by id.
func (c *Client) Schedule(ctx context.Context, id int64) (*Schedule, error) {
	if err := validateID("Schedule", "id", id); err != nil {
		return nil, err
	}
	var resp Schedule
	if err := c.transport.get(ctx, schedulePath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BackfillSchedule starts attempts for past sessions of a schedule.
//
// Example:
//
//	sa, err := client.BackfillSchedule(ctx, 23494, tdworkflow.BackfillRequest{
//	    AttemptName: "backfill-2019-11",
//	    FromTime:    "2019-11-01T00:00:00+00:00",
//	})
func (c *Client) BackfillSchedule(ctx context.Context, id int64, req BackfillRequest) (*ScheduleAttempt, error) {
	if err := validateID("BackfillSchedule", "id", id); err != nil {
		return nil, err
	}
	if req.AttemptName == "" {
		return nil, invalid("BackfillSchedule", "AttemptName", "is required")
	}
	if req.FromTime == "" {
		return nil, invalid("BackfillSchedule", "FromTime", "is required")
	}
	var resp ScheduleAttempt
	if err := c.transport.post(ctx, schedulePath(id)+"/backfill", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DisableSchedule disables a schedule and returns its updated state.
func (c *Client) DisableSchedule(ctx context.Context, id int64) (*Schedule, error) {
	return c.scheduleAction(ctx, "DisableSchedule", id, "disable", nil)
}

// EnableSchedule re-enables a disabled schedule and returns its updated
// state.
func (c *Client) EnableSchedule(ctx context.Context, id int64) (*Schedule, error) {
	return c.scheduleAction(ctx, "EnableSchedule", id, "enable", nil)
}

// SkipSchedule moves a schedule's next run forward without running the
// skipped sessions.
func (c *Client) SkipSchedule(ctx context.Context, id int64, req SkipRequest) (*Schedule, error) {
	return c.scheduleAction(ctx, "SkipSchedule", id, "skip", req)
}

func (c *Client) scheduleAction(ctx context.Context, op string, id int64, action string, body any) (*Schedule, error) {
	if err := validateID(op, "id", id); err != nil {
		return nil, err
	}
	if body == nil {
		body = struct{}{}
	}
	var resp Schedule
	if err := c.transport.post(ctx, schedulePath(id)+"/"+action, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func schedulePath(id int64) string {
	return fmt.Sprintf("schedules/%d", id)
}
