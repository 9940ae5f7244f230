// Package tdtesting provides test utilities for code that uses the
// workflow client.
//
// [NewServer] starts an in-memory fake of the workflow REST API. Seed it
// with records, point a real [tdworkflow.Client] at it with [Server.Client],
// and verify the calls your code made with [AssertRequested] and
// [RefuteRequested]:
//
//	func TestPauseNightly(t *testing.T) {
//	    srv := tdtesting.NewServer(t)
//	    sched := srv.AddSchedule(tdworkflow.Schedule{
//	        Project:  tdworkflow.ProjectRef{ID: 1, Name: "etl"},
//	        Workflow: tdworkflow.WorkflowRef{ID: 2, Name: "nightly"},
//	    })
//	    client := srv.Client(t)
//	    pauseNightly(client)
//	    tdtesting.AssertRequested(t, srv, "POST", fmt.Sprintf("/api/schedules/%d/disable", sched.ID))
//	}
package tdtesting

import (
	"fmt"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	tdworkflow "github.com/tdworkflow/tdworkflow-go"
)

// APIKey is the key every client created by [Server.Client] uses. The fake
// server rejects requests that do not carry it.
const APIKey = "1/tdtesting"

// Request is one request received by the fake server.
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

// Server is an in-memory fake of the workflow REST API.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int64
	requests  []Request
	projects  map[int64]*tdworkflow.Project
	revisions map[int64][]tdworkflow.Revision
	archives  map[int64][]string
	workflows map[int64]*tdworkflow.Workflow
	schedules map[int64]*tdworkflow.Schedule
	sessions  map[int64]*tdworkflow.Session
	attempts  map[int64]*tdworkflow.Attempt
	tasks     map[int64][]tdworkflow.Task
	logs      map[int64][]fakeLogFile
	secrets   map[int64]map[string]string
}

type fakeLogFile struct {
	file    tdworkflow.LogFile
	content []byte
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		nextID:    1000,
		projects:  make(map[int64]*tdworkflow.Project),
		revisions: make(map[int64][]tdworkflow.Revision),
		archives:  make(map[int64][]string),
		workflows: make(map[int64]*tdworkflow.Workflow),
		schedules: make(map[int64]*tdworkflow.Schedule),
		sessions:  make(map[int64]*tdworkflow.Session),
		attempts:  make(map[int64]*tdworkflow.Attempt),
		tasks:     make(map[int64][]tdworkflow.Task),
		logs:      make(map[int64][]fakeLogFile),
		secrets:   make(map[int64]map[string]string),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Server.Close)
	return s
}

// Client returns a client configured against the fake server.
func (s *Server) Client(t testing.TB, opts ...tdworkflow.ClientOption) *tdworkflow.Client {
	t.Helper()
	opts = append([]tdworkflow.ClientOption{tdworkflow.WithEndpoint(s.URL)}, opts...)
	client, err := tdworkflow.NewClient(APIKey, opts...)
	if err != nil {
		t.Fatalf("tdtesting: Client: %v", err)
	}
	return client
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// AddProject stores a project. A zero ID is assigned.
func (s *Server) AddProject(p tdworkflow.Project) tdworkflow.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.newID()
	}
	s.projects[p.ID] = &p
	return p
}

// AddWorkflow stores a workflow, and its project if unknown. A zero ID is
// assigned.
func (s *Server) AddWorkflow(w tdworkflow.Workflow) tdworkflow.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == 0 {
		w.ID = s.newID()
	}
	if _, ok := s.projects[w.Project.ID]; !ok && w.Project.ID != 0 {
		p := w.Project
		s.projects[p.ID] = &p
	}
	s.workflows[w.ID] = &w
	return w
}

// AddSchedule stores a schedule. A zero ID is assigned.
func (s *Server) AddSchedule(sc tdworkflow.Schedule) tdworkflow.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ID == 0 {
		sc.ID = s.newID()
	}
	s.schedules[sc.ID] = &sc
	return sc
}

// AddSession stores a session and its last attempt, if any. Zero IDs and
// an empty session UUID are assigned.
func (s *Server) AddSession(se tdworkflow.Session) tdworkflow.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if se.ID == 0 {
		se.ID = s.newID()
	}
	if se.SessionUUID == "" {
		se.SessionUUID = uuid.NewString()
	}
	if se.LastAttempt != nil {
		a := *se.LastAttempt
		if a.ID == 0 {
			a.ID = s.newID()
		}
		a.SessionID = se.ID
		a.SessionUUID = se.SessionUUID
		s.attempts[a.ID] = &a
		se.LastAttempt = &a
	}
	s.sessions[se.ID] = &se
	return se
}

// AddAttempt stores an attempt. A zero ID is assigned.
func (s *Server) AddAttempt(a tdworkflow.Attempt) tdworkflow.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.newID()
	}
	s.attempts[a.ID] = &a
	return a
}

// AddTask attaches a task to an attempt.
func (s *Server) AddTask(attemptID int64, task tdworkflow.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[attemptID] = append(s.tasks[attemptID], task)
}

// AddLogFile attaches a log file to an attempt. content is stored
// gzip-compressed, the way the service serves it.
func (s *Server) AddLogFile(attemptID int64, file tdworkflow.LogFile, content string) error {
	compressed, err := gzipBytes([]byte(content))
	if err != nil {
		return fmt.Errorf("tdtesting: compress log file: %w", err)
	}
	if file.FileSize == 0 {
		file.FileSize = int64(len(compressed))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[attemptID] = append(s.logs[attemptID], fakeLogFile{file: file, content: compressed})
	return nil
}

// Secret returns a stored secret value, which the API itself never
// exposes.
func (s *Server) Secret(projectID int64, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.secrets[projectID][key]
	return v, ok
}

// ArchiveFiles returns the file names of the last archive uploaded for a
// project, sorted.
func (s *Server) ArchiveFiles(projectID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.archives[projectID]...)
	sort.Strings(out)
	return out
}

// AssertRequested fails the test unless the server received at least one
// request with the given method and path.
func AssertRequested(t testing.TB, s *Server, method, path string) {
	t.Helper()
	if countRequests(s, method, path) == 0 {
		t.Errorf("tdtesting: expected %s %s to be requested; got:\n%s", method, path, describe(s.Requests()))
	}
}

// RefuteRequested fails the test if the server received a request with the
// given method and path.
func RefuteRequested(t testing.TB, s *Server, method, path string) {
	t.Helper()
	if n := countRequests(s, method, path); n > 0 {
		t.Errorf("tdtesting: expected %s %s not to be requested, got %d", method, path, n)
	}
}

func countRequests(s *Server, method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func describe(reqs []Request) string {
	if len(reqs) == 0 {
		return "  (no requests)"
	}
	var b strings.Builder
	for _, r := range reqs {
		fmt.Fprintf(&b, "  %s %s\n", r.Method, r.Path)
	}
	return b.String()
}
