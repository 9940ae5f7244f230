package tdtesting

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	tdworkflow "github.com/tdworkflow/tdworkflow-go"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("PUT /api/projects", s.handlePutProject)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)
	mux.HandleFunc("GET /api/projects/{id}/workflows", s.handleProjectWorkflows)
	mux.HandleFunc("GET /api/projects/{id}/revisions", s.handleProjectRevisions)
	mux.HandleFunc("GET /api/projects/{id}/schedules", s.handleProjectSchedules)
	mux.HandleFunc("GET /api/projects/{id}/sessions", s.handleProjectSessions)
	mux.HandleFunc("GET /api/projects/{id}/secrets", s.handleListSecrets)
	mux.HandleFunc("PUT /api/projects/{id}/secrets/{key}", s.handlePutSecret)
	mux.HandleFunc("DELETE /api/projects/{id}/secrets/{key}", s.handleDeleteSecret)

	mux.HandleFunc("GET /api/workflows", s.handleListWorkflows)
	mux.HandleFunc("GET /api/workflows/{id}", s.handleGetWorkflow)
	mux.HandleFunc("GET /api/workflows/{id}/sessions", s.handleWorkflowSessions)

	mux.HandleFunc("GET /api/schedules", s.handleListSchedules)
	mux.HandleFunc("GET /api/schedules/{id}", s.handleGetSchedule)
	mux.HandleFunc("POST /api/schedules/{id}/{action}", s.handleScheduleAction)

	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /api/sessions/{id}/attempts", s.handleSessionAttempts)

	mux.HandleFunc("GET /api/attempts", s.handleListAttempts)
	mux.HandleFunc("PUT /api/attempts", s.handleStartAttempt)
	mux.HandleFunc("GET /api/attempts/{id}", s.handleGetAttempt)
	mux.HandleFunc("GET /api/attempts/{id}/tasks", s.handleAttemptTasks)
	mux.HandleFunc("GET /api/attempts/{id}/retries", s.handleRetriedAttempts)
	mux.HandleFunc("POST /api/attempts/{id}/kill", s.handleKillAttempt)
	mux.HandleFunc("GET /api/attempts/{id}/log/files", s.handleListLogFiles)
	mux.HandleFunc("GET /api/attempts/{id}/log/files/{name}", s.handleGetLogFile)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()})
		s.mu.Unlock()

		if r.Header.Get("Authorization") != "TD1 "+APIKey {
			writeError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message, "status": status})
}

func pathID(w http.ResponseWriter, r *http.Request, resource string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s id: %s", resource, r.PathValue("id")))
		return 0, false
	}
	return id, true
}

func notFound(w http.ResponseWriter, resource string, id int64) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("Resource does not exist: %s id=%d", resource, id))
}

func queryInt64(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return n
}

// sortedIDs returns the keys of m in ascending order, restricted to ids
// greater than lastID.
func sortedIDs[V any](m map[int64]V, lastID int64) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		if id > lastID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func limit[T any](items []T, r *http.Request, key string) []T {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err == nil && n > 0 && n < len(items) {
		return items[:n]
	}
	return items
}

// --- projects ---

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := []tdworkflow.Project{}
	for _, id := range sortedIDs(s.projects, 0) {
		p := s.projects[id]
		if p.Deleted() || (name != "" && p.Name != name) {
			continue
		}
		projects = append(projects, *p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.projects[id]
	if !found || p.Deleted() {
		notFound(w, "project", id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("project")
	revision := r.URL.Query().Get("revision")
	if name == "" || revision == "" {
		writeError(w, http.StatusBadRequest, "project and revision are required")
		return
	}
	files, err := readArchive(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid archive: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var project *tdworkflow.Project
	for _, p := range s.projects {
		if p.Name == name && !p.Deleted() {
			project = p
			break
		}
	}
	ts := now()
	if project == nil {
		project = &tdworkflow.Project{ID: s.newID(), Name: name, CreatedAt: ts}
		s.projects[project.ID] = project
	}
	project.Revision = revision
	project.UpdatedAt = ts
	project.ArchiveType = "db"
	s.archives[project.ID] = files
	s.revisions[project.ID] = append([]tdworkflow.Revision{{
		Revision:    revision,
		CreatedAt:   ts,
		ArchiveType: "db",
	}}, s.revisions[project.ID]...)
	writeJSON(w, http.StatusOK, project)
}

func readArchive(body io.Reader) ([]string, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	tr := tar.NewReader(zr)
	var files []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg {
			files = append(files, hdr.Name)
		}
	}
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.projects[id]
	if !found || p.Deleted() {
		notFound(w, "project", id)
		return
	}
	ts := now()
	p.DeletedAt = &ts
	w.WriteHeader(http.StatusNoContent)
}

// project looks up a live project; the caller must hold s.mu.
func (s *Server) project(w http.ResponseWriter, id int64) (*tdworkflow.Project, bool) {
	p, found := s.projects[id]
	if !found || p.Deleted() {
		notFound(w, "project", id)
		return nil, false
	}
	return p, true
}

func (s *Server) handleProjectWorkflows(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	name := r.URL.Query().Get("workflow")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.project(w, id); !ok {
		return
	}
	workflows := []tdworkflow.Workflow{}
	for _, wid := range sortedIDs(s.workflows, 0) {
		wf := s.workflows[wid]
		if wf.Project.ID == id && (name == "" || wf.Name == name) {
			workflows = append(workflows, *wf)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workflows": workflows})
}

func (s *Server) handleProjectRevisions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.project(w, id); !ok {
		return
	}
	revisions := append([]tdworkflow.Revision{}, s.revisions[id]...)
	writeJSON(w, http.StatusOK, map[string]any{"revisions": revisions})
}

func (s *Server) handleProjectSchedules(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	name := r.URL.Query().Get("workflow")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.project(w, id); !ok {
		return
	}
	schedules := []tdworkflow.Schedule{}
	for _, sid := range sortedIDs(s.schedules, queryInt64(r, "last_id")) {
		sc := s.schedules[sid]
		if sc.Project.ID == id && (name == "" || sc.Workflow.Name == name) {
			schedules = append(schedules, *sc)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": schedules})
}

func (s *Server) handleProjectSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	name := r.URL.Query().Get("workflow")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.project(w, id); !ok {
		return
	}
	s.writeSessions(w, r, func(se *tdworkflow.Session) bool {
		return se.Project.ID == id && (name == "" || se.Workflow.Name == name)
	})
}

// --- secrets ---

func (s *Server) handleListSecrets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.project(w, id); !ok {
		return
	}
	keys := make([]string, 0, len(s.secrets[id]))
	for k := range s.secrets[id] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	secrets := make([]map[string]string, len(keys))
	for i, k := range keys {
		secrets[i] = map[string]string{"key": k}
	}
	writeJSON(w, http.StatusOK, map[string]any{"secrets": secrets})
}

func (s *Server) handlePutSecret(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	var body struct {
		Value *string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.project(w, id); !ok {
		return
	}
	if s.secrets[id] == nil {
		s.secrets[id] = make(map[string]string)
	}
	s.secrets[id][r.PathValue("key")] = *body.Value
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSecret(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	key := r.PathValue("key")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.project(w, id); !ok {
		return
	}
	if _, found := s.secrets[id][key]; !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Resource does not exist: secret key=%s", key))
		return
	}
	delete(s.secrets[id], key)
	w.WriteHeader(http.StatusNoContent)
}

// --- workflows ---

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	workflows := []tdworkflow.Workflow{}
	for _, id := range sortedIDs(s.workflows, queryInt64(r, "last_id")) {
		workflows = append(workflows, *s.workflows[id])
	}
	if r.URL.Query().Get("order") == "desc" {
		for i, j := 0, len(workflows)-1; i < j; i, j = i+1, j-1 {
			workflows[i], workflows[j] = workflows[j], workflows[i]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workflows": limit(workflows, r, "count")})
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workflow")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, found := s.workflows[id]
	if !found {
		notFound(w, "workflow", id)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) handleWorkflowSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workflow")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.workflows[id]; !found {
		notFound(w, "workflow", id)
		return
	}
	s.writeSessions(w, r, func(se *tdworkflow.Session) bool { return se.Workflow.ID == id })
}

// --- schedules ---

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedules := []tdworkflow.Schedule{}
	for _, id := range sortedIDs(s.schedules, queryInt64(r, "last_id")) {
		schedules = append(schedules, *s.schedules[id])
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": schedules})
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "schedule")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, found := s.schedules[id]
	if !found {
		notFound(w, "schedule", id)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleScheduleAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "schedule")
	if !ok {
		return
	}
	var body struct {
		AttemptName string `json:"attemptName"`
		FromTime    string `json:"fromTime"`
		NextRunTime string `json:"nextRunTime"`
		NextTime    string `json:"nextTime"`
		DryRun      bool   `json:"dryRun"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sc, found := s.schedules[id]
	if !found {
		notFound(w, "schedule", id)
		return
	}

	switch r.PathValue("action") {
	case "disable":
		ts := now()
		sc.DisabledAt = &ts
		sc.UpdatedAt = ts
	case "enable":
		sc.DisabledAt = nil
		sc.UpdatedAt = now()
	case "skip":
		if !body.DryRun {
			if body.NextRunTime != "" {
				sc.NextRunTime = body.NextRunTime
			}
			if body.NextTime != "" {
				sc.NextScheduleTime = body.NextTime
			}
		}
	case "backfill":
		if body.AttemptName == "" || body.FromTime == "" {
			writeError(w, http.StatusBadRequest, "attemptName and fromTime are required")
			return
		}
		attempts := []tdworkflow.Attempt{}
		if !body.DryRun {
			name := body.AttemptName
			a := tdworkflow.Attempt{
				ID:               s.newID(),
				Index:            1,
				Project:          &sc.Project,
				Workflow:         &sc.Workflow,
				SessionTime:      body.FromTime,
				RetryAttemptName: &name,
				Params:           map[string]any{},
				CreatedAt:        now(),
			}
			s.attempts[a.ID] = &a
			attempts = append(attempts, a)
		}
		writeJSON(w, http.StatusOK, tdworkflow.ScheduleAttempt{
			ID:       sc.ID,
			Project:  sc.Project,
			Workflow: sc.Workflow,
			Attempts: attempts,
		})
		return
	default:
		writeError(w, http.StatusNotFound, "Unknown schedule action: "+r.PathValue("action"))
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// --- sessions ---

// writeSessions writes the matching sessions, newest first; the caller
// must hold s.mu.
func (s *Server) writeSessions(w http.ResponseWriter, r *http.Request, match func(*tdworkflow.Session) bool) {
	lastID := queryInt64(r, "last_id")
	ids := sortedIDs(s.sessions, 0)
	sessions := []tdworkflow.Session{}
	for i := len(ids) - 1; i >= 0; i-- {
		se := s.sessions[ids[i]]
		if lastID > 0 && se.ID >= lastID {
			continue
		}
		if match(se) {
			sessions = append(sessions, *se)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": limit(sessions, r, "page_size")})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeSessions(w, r, func(*tdworkflow.Session) bool { return true })
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	se, found := s.sessions[id]
	if !found {
		notFound(w, "session", id)
		return
	}
	writeJSON(w, http.StatusOK, se)
}

func (s *Server) handleSessionAttempts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.sessions[id]; !found {
		notFound(w, "session", id)
		return
	}
	attempts := []tdworkflow.Attempt{}
	for _, aid := range sortedIDs(s.attempts, queryInt64(r, "last_id")) {
		if a := s.attempts[aid]; a.SessionID == id {
			attempts = append(attempts, *a)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": limit(attempts, r, "page_size")})
}

// --- attempts ---

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	project, workflow := q.Get("project"), q.Get("workflow")
	includeRetried := q.Get("include_retried") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()
	latest := make(map[int64]int64)
	for id, a := range s.attempts {
		if a.SessionID != 0 && id > latest[a.SessionID] {
			latest[a.SessionID] = id
		}
	}
	attempts := []tdworkflow.Attempt{}
	for _, id := range sortedIDs(s.attempts, queryInt64(r, "last_id")) {
		a := s.attempts[id]
		if project != "" && (a.Project == nil || a.Project.Name != project) {
			continue
		}
		if workflow != "" && (a.Workflow == nil || a.Workflow.Name != workflow) {
			continue
		}
		if !includeRetried && a.SessionID != 0 && latest[a.SessionID] != id {
			continue
		}
		attempts = append(attempts, *a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": limit(attempts, r, "page_size")})
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkflowID       string         `json:"workflowId"`
		SessionTime      string         `json:"sessionTime"`
		RetryAttemptName *string        `json:"retryAttemptName"`
		Params           map[string]any `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	workflowID, err := strconv.ParseInt(body.WorkflowID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid workflowId: "+body.WorkflowID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wf, found := s.workflows[workflowID]
	if !found {
		notFound(w, "workflow", workflowID)
		return
	}

	var session *tdworkflow.Session
	for _, se := range s.sessions {
		if se.Workflow.ID == wf.ID && se.SessionTime == body.SessionTime {
			session = se
			break
		}
	}
	index := 1
	if session != nil {
		if body.RetryAttemptName == nil {
			writeError(w, http.StatusConflict, "A session for the requested session_time already exists")
			return
		}
		if session.LastAttempt != nil {
			index = session.LastAttempt.Index + 1
		}
	} else {
		session = &tdworkflow.Session{
			ID:          s.newID(),
			Project:     tdworkflow.ProjectRef{ID: wf.Project.ID, Name: wf.Project.Name},
			Workflow:    tdworkflow.WorkflowRef{ID: wf.ID, Name: wf.Name},
			SessionUUID: uuid.NewString(),
			SessionTime: body.SessionTime,
		}
		s.sessions[session.ID] = session
	}

	a := &tdworkflow.Attempt{
		ID:               s.newID(),
		Index:            index,
		Project:          &session.Project,
		Workflow:         &session.Workflow,
		SessionID:        session.ID,
		SessionUUID:      session.SessionUUID,
		SessionTime:      session.SessionTime,
		RetryAttemptName: body.RetryAttemptName,
		Params:           body.Params,
		CreatedAt:        now(),
	}
	s.attempts[a.ID] = a
	session.LastAttempt = a
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.attempts[id]
	if !found {
		notFound(w, "attempt", id)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAttemptTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.attempts[id]; !found {
		notFound(w, "attempt", id)
		return
	}
	tasks := append([]tdworkflow.Task{}, s.tasks[id]...)
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleRetriedAttempts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.attempts[id]
	if !found {
		notFound(w, "attempt", id)
		return
	}
	attempts := []tdworkflow.Attempt{}
	for _, aid := range sortedIDs(s.attempts, 0) {
		if other := s.attempts[aid]; aid != id && a.SessionID != 0 && other.SessionID == a.SessionID {
			attempts = append(attempts, *other)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

func (s *Server) handleKillAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.attempts[id]
	if !found {
		notFound(w, "attempt", id)
		return
	}
	if a.Done {
		writeError(w, http.StatusConflict, fmt.Sprintf("Attempt %d is already finished", id))
		return
	}
	a.CancelRequested = true
	w.WriteHeader(http.StatusNoContent)
}

// --- logs ---

func (s *Server) handleListLogFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}
	task := r.URL.Query().Get("task")
	direct := r.URL.Query().Get("direct_download") != "false"
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.attempts[id]; !found {
		notFound(w, "attempt", id)
		return
	}
	files := []tdworkflow.LogFile{}
	for _, lf := range s.logs[id] {
		if task != "" && lf.file.TaskName != task {
			continue
		}
		f := lf.file
		if !direct {
			f.Direct = ""
		}
		files = append(files, f)
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleGetLogFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}
	name := r.PathValue("name")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lf := range s.logs[id] {
		if lf.file.FileName == name {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(lf.content)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Resource does not exist: log file %s", name))
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
