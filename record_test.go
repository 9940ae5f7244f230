package tdworkflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{`"115819"`, 115819, false},
		{`115819`, 115819, false},
		{`"abc"`, 0, true},
		{`1.5`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id flexID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, int64(id))
		})
	}
}

func TestProjectIDRoundTrip(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"id":"115819","name":"pandas-df","deletedAt":null}`), &p))
	assert.Equal(t, int64(115819), p.ID)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var again Project
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, p, again)
}

func TestProjectDeleted(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"p","deletedAt":"2019-11-01T00:00:00Z"}`), &p))
	assert.True(t, p.Deleted())
}

func TestRecordRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		target any
		input  string
		record string
		field  string
	}{
		{"project id", &Project{}, `{"name":"p"}`, "Project", "id"},
		{"project name", &Project{}, `{"id":"1"}`, "Project", "name"},
		{"revision", &Revision{}, `{"createdAt":"x"}`, "Revision", "revision"},
		{"workflow project", &Workflow{}, `{"id":"1","name":"w"}`, "Workflow", "project"},
		{"schedule workflow", &Schedule{}, `{"id":"1","project":{"id":"2"}}`, "Schedule", "workflow"},
		{"schedule attempt id", &ScheduleAttempt{}, `{"project":{"id":"2"},"workflow":{"id":"3"}}`, "ScheduleAttempt", "id"},
		{"session project", &Session{}, `{"id":"1","workflow":{"id":"3"}}`, "Session", "project"},
		{"attempt id", &Attempt{}, `{"index":1}`, "Attempt", "id"},
		{"task id", &Task{}, `{"fullName":"+a"}`, "Task", "id"},
		{"log file name", &LogFile{}, `{"fileName":"","fileSize":1}`, "LogFile", "fileName"},
		{"project ref id", &ProjectRef{}, `{"name":"p"}`, "ProjectRef", "id"},
		{"workflow ref id", &WorkflowRef{}, `{"name":"w"}`, "WorkflowRef", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := json.Unmarshal([]byte(tt.input), tt.target)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.record, verr.Record)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRecordWrongType(t *testing.T) {
	var p Project
	err := json.Unmarshal([]byte(`{"id":"1","name":42}`), &p)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Project", verr.Record)
}

func TestRecordBadID(t *testing.T) {
	var s Schedule
	err := json.Unmarshal([]byte(`{"id":"x","project":{"id":"1"},"workflow":{"id":"2"}}`), &s)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "identifier must be an integer")
}

func TestRecordNullIsNoop(t *testing.T) {
	s := Session{ID: 7}
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Equal(t, int64(7), s.ID)

	var wrapper struct {
		LastAttempt *Attempt `json:"lastAttempt"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"lastAttempt":null}`), &wrapper))
	assert.Nil(t, wrapper.LastAttempt)
}

func TestAttemptStatus(t *testing.T) {
	tests := []struct {
		attempt Attempt
		want    AttemptStatus
	}{
		{Attempt{}, AttemptStatusRunning},
		{Attempt{CancelRequested: true}, AttemptStatusCanceling},
		{Attempt{Done: true, Success: true}, AttemptStatusSuccess},
		{Attempt{Done: true}, AttemptStatusError},
		{Attempt{Done: true, CancelRequested: true}, AttemptStatusKilled},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.attempt.Status())
		assert.Equal(t, tt.attempt.Done, tt.attempt.Finished())
	}
}

func TestWorkflowConfigYAML(t *testing.T) {
	wf := Workflow{ID: 1, Config: map[string]any{
		"timezone": "UTC",
		"+echo":    map[string]any{"echo>": "hello"},
	}}
	out, err := wf.ConfigYAML()
	require.NoError(t, err)
	assert.Equal(t, "+echo:\n    echo>: hello\ntimezone: UTC\n", out)

	empty, err := Workflow{}.ConfigYAML()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSessionUUIDInvalid(t *testing.T) {
	_, err := Session{SessionUUID: "not-a-uuid"}.UUID()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sessionUuid", verr.Field)
}
