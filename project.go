package tdworkflow

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// Project is a named container of workflow definitions.
type Project struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Revision    string  `json:"revision,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
	DeletedAt   *string `json:"deletedAt"`
	ArchiveType string  `json:"archiveType,omitempty"`
	ArchiveMD5  string  `json:"archiveMd5,omitempty"`
}

// projectJSON is an alias used for custom JSON unmarshaling.
type projectJSON Project

// UnmarshalJSON implements json.Unmarshaler. It requires id and name and
// accepts the id as a string or a number.
func (p *Project) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID   *flexID `json:"id"`
		Name *string `json:"name"`
		projectJSON
	}
	if err := decodeRecord("Project", data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return invalid("Project", "id", "is required")
	}
	if raw.Name == nil {
		return invalid("Project", "name", "is required")
	}
	*p = Project(raw.projectJSON)
	p.ID = raw.ID.int64()
	p.Name = *raw.Name
	return nil
}

// Deleted reports whether the project has been deleted.
func (p Project) Deleted() bool {
	return p.DeletedAt != nil
}

// Revision is an immutable snapshot of a project's workflow definitions.
type Revision struct {
	Revision    string         `json:"revision"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	ArchiveType string         `json:"archiveType,omitempty"`
	ArchiveMD5  string         `json:"archiveMd5,omitempty"`
	UserInfo    map[string]any `json:"userInfo,omitempty"`
}

type revisionJSON Revision

// UnmarshalJSON implements json.Unmarshaler.
func (r *Revision) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		Revision *string `json:"revision"`
		revisionJSON
	}
	if err := decodeRecord("Revision", data, &raw); err != nil {
		return err
	}
	if raw.Revision == nil {
		return invalid("Revision", "revision", "is required")
	}
	*r = Revision(raw.revisionJSON)
	r.Revision = *raw.Revision
	return nil
}

// ListOptions filters list endpoints that page by id. Zero values are not
// sent.
type ListOptions struct {
	// Workflow restricts results to the named workflow.
	Workflow string

	// LastID returns only records with an id greater than LastID.
	LastID int64

	// PageSize caps the number of records returned.
	PageSize int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Workflow != "" {
		q.Set("workflow", o.Workflow)
	}
	if o.LastID > 0 {
		q.Set("last_id", strconv.FormatInt(o.LastID, 10))
	}
	if o.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(o.PageSize))
	}
	return q
}

// ProjectWorkflowsOptions filters ProjectWorkflows.
type ProjectWorkflowsOptions struct {
	Workflow string
	Revision string
}

// CreateProjectOptions configures CreateProject.
type CreateProjectOptions struct {
	// Revision names the uploaded revision. Default: a random UUID.
	Revision string

	// ExcludePatterns are glob patterns (matched against the slash-separated
	// path relative to the project directory, and against the base name) of
	// files left out of the archive.
	ExcludePatterns []string
}

// Projects returns all projects, optionally filtered by name on the server.
func (c *Client) Projects(ctx context.Context, name string) ([]Project, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	var resp struct {
		Projects []Project `json:"projects"`
	}
	if err := c.transport.get(ctx, "projects", q, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// Project retrieves a project by id. A non-positive id is rejected with a
// *ValidationError before any request is sent, so it never surfaces as the
// server's 404 *HTTPError.
func (c *Client) Project(ctx context.Context, id int64) (*Project, error) {
	if err := validateID("Project", "id", id); err != nil {
		return nil, err
	}
	var resp Project
	if err := c.transport.get(ctx, projectPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProjectWorkflows returns the workflows defined in a project.
func (c *Client) ProjectWorkflows(ctx context.Context, id int64, opts ProjectWorkflowsOptions) ([]Workflow, error) {
	if err := validateID("ProjectWorkflows", "id", id); err != nil {
		return nil, err
	}
	q := url.Values{}
	if opts.Workflow != "" {
		q.Set("workflow", opts.Workflow)
	}
	if opts.Revision != "" {
		q.Set("revision", opts.Revision)
	}
	var resp struct {
		Workflows []Workflow `json:"workflows"`
	}
	if err := c.transport.get(ctx, projectPath(id)+"/workflows", q, &resp); err != nil {
		return nil, err
	}
	return resp.Workflows, nil
}

// CreateProject packs targetDir into a gzip-compressed tar archive and
// uploads it as a new revision of the named project, creating the project
// if it does not exist.
//
// Example:
//
//	project, err := client.CreateProject(ctx, "nasdaq-analysis", "./nasdaq",
//	    tdworkflow.CreateProjectOptions{ExcludePatterns: []string{"*.pyc"}},
//	)
func (c *Client) CreateProject(ctx context.Context, name, targetDir string, opts CreateProjectOptions) (*Project, error) {
	if err := validateName("CreateProject", "name", name); err != nil {
		return nil, err
	}
	if err := validateDir("CreateProject", "targetDir", targetDir); err != nil {
		return nil, err
	}
	revision := opts.Revision
	if revision == "" {
		revision = uuid.NewString()
	}

	var archive bytes.Buffer
	if err := writeProjectArchive(&archive, targetDir, opts.ExcludePatterns); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("project", name)
	q.Set("revision", revision)
	var resp Project
	if err := c.transport.putArchive(ctx, "projects", q, &archive, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteProject deletes a project. It returns true when the server
// acknowledges the deletion.
func (c *Client) DeleteProject(ctx context.Context, id int64) (bool, error) {
	if err := validateID("DeleteProject", "id", id); err != nil {
		return false, err
	}
	return c.transport.delete(ctx, projectPath(id))
}

// ProjectRevisions returns the uploaded revisions of a project.
func (c *Client) ProjectRevisions(ctx context.Context, id int64) ([]Revision, error) {
	if err := validateID("ProjectRevisions", "id", id); err != nil {
		return nil, err
	}
	var resp struct {
		Revisions []Revision `json:"revisions"`
	}
	if err := c.transport.get(ctx, projectPath(id)+"/revisions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Revisions, nil
}

// ProjectSchedules returns the schedules of a project. PageSize is ignored.
func (c *Client) ProjectSchedules(ctx context.Context, id int64, opts ListOptions) ([]Schedule, error) {
	if err := validateID("ProjectSchedules", "id", id); err != nil {
		return nil, err
	}
	opts.PageSize = 0
	var resp struct {
		Schedules []Schedule `json:"schedules"`
	}
	if err := c.transport.get(ctx, projectPath(id)+"/schedules", opts.values(), &resp); err != nil {
		return nil, err
	}
	return resp.Schedules, nil
}

// ProjectSessions returns the sessions of a project.
func (c *Client) ProjectSessions(ctx context.Context, id int64, opts ListOptions) ([]Session, error) {
	if err := validateID("ProjectSessions", "id", id); err != nil {
		return nil, err
	}
	var resp struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.transport.get(ctx, projectPath(id)+"/sessions", opts.values(), &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func projectPath(id int64) string {
	return fmt.Sprintf("projects/%d", id)
}
