package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a project's conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user, assistant, system
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a stored project with its full ordered message list.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProjectType  string    `json:"project_type"`
	ActiveAgents []string  `json:"active_agents"`
	CurrentCode  string    `json:"current_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Messages     []Message `json:"messages"`
}

// Summary is the listing projection: no messages, no code blob.
type Summary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProjectType  string    `json:"project_type"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SaveProjectRequest is the input to SaveProject. An empty ID means "create";
// a non-empty ID must reference an existing project.
type SaveProjectRequest struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	ProjectType  string    `json:"project_type"`
	ActiveAgents []string  `json:"active_agents"`
	CurrentCode  string    `json:"current_code,omitempty"`
	Messages     []Message `json:"messages"`
}

// Projects is the transactional project store. All mutations go through
// SaveProject/DeleteProject; after every successful mutation the registered
// observer fires, which is how the tray menu stays in sync without call-site
// discipline.
type Projects struct {
	db          *sql.DB
	afterMutate func()
}

// NewProjects creates a project store on the shared pool.
func NewProjects(db *sql.DB) *Projects {
	return &Projects{db: db}
}

// OnMutate registers a hook called after every successful save or delete.
// Call before the store is shared across goroutines.
func (p *Projects) OnMutate(fn func()) {
	p.afterMutate = fn
}

func (p *Projects) notifyMutate() {
	if p.afterMutate != nil {
		p.afterMutate()
	}
}

// SaveProject inserts or overwrites a project and atomically replaces its
// message list with the submitted one. Returns the project id. Saving with an
// unknown non-empty id fails with ErrNotFound, mirroring LoadProject and
// DeleteProject.
func (p *Projects) SaveProject(ctx context.Context, req SaveProjectRequest) (string, error) {
	if req.Name == "" {
		return "", validationErr("name", "must not be empty")
	}
	if req.ProjectType == "" {
		return "", validationErr("project_type", "must not be empty")
	}
	for i, m := range req.Messages {
		if m.Role == "" {
			return "", validationErr("messages", fmt.Sprintf("message %d has no role", i))
		}
	}

	agents, err := json.Marshal(emptyIfNil(req.ActiveAgents))
	if err != nil {
		return "", fmt.Errorf("encode active_agents: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	projectID := req.ID

	if projectID == "" {
		projectID = uuid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO projects (id, name, project_type, active_agents, current_code, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			projectID, req.Name, req.ProjectType, string(agents), nullable(req.CurrentCode), now.UnixNano(), now.UnixNano(),
		)
		if err != nil {
			return "", fmt.Errorf("insert project: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE projects
			 SET name = ?, project_type = ?, active_agents = ?, current_code = ?, updated_at = ?
			 WHERE id = ?`,
			req.Name, req.ProjectType, string(agents), nullable(req.CurrentCode), now.UnixNano(), projectID,
		)
		if err != nil {
			return "", fmt.Errorf("update project: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("update project: %w", err)
		}
		if n == 0 {
			return "", fmt.Errorf("project not found: %s: %w", projectID, ErrNotFound)
		}
	}

	// Whole-list replacement: callers always submit the full conversation,
	// so the stored messages exactly match the last submission.
	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE project_id = ?", projectID); err != nil {
		return "", fmt.Errorf("delete old messages: %w", err)
	}
	for i, m := range req.Messages {
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		createdAt := m.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, project_id, seq, role, content, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, projectID, i, m.Role, m.Content, createdAt.UnixNano(),
		)
		if err != nil {
			return "", fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	p.notifyMutate()
	return projectID, nil
}

// LoadProject returns the project and its messages in creation order.
func (p *Projects) LoadProject(ctx context.Context, id string) (*Project, error) {
	var (
		proj                 Project
		agents               string
		code                 sql.NullString
		createdAt, updatedAt int64
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, project_type, active_agents, current_code, created_at, updated_at
		 FROM projects WHERE id = ?`, id,
	).Scan(&proj.ID, &proj.Name, &proj.ProjectType, &agents, &code, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch project: %w", err)
	}

	if err := json.Unmarshal([]byte(agents), &proj.ActiveAgents); err != nil {
		proj.ActiveAgents = []string{}
	}
	proj.CurrentCode = code.String
	proj.CreatedAt = time.Unix(0, createdAt).UTC()
	proj.UpdatedAt = time.Unix(0, updatedAt).UTC()

	rows, err := p.db.QueryContext(ctx,
		`SELECT id, role, content, created_at
		 FROM messages WHERE project_id = ? ORDER BY seq ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	defer rows.Close()

	proj.Messages = []Message{}
	for rows.Next() {
		var (
			m  Message
			ts int64
		)
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = time.Unix(0, ts).UTC()
		proj.Messages = append(proj.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return &proj, nil
}

// ListProjects returns summaries of all projects, most recently updated first.
// An empty database yields an empty (non-nil) slice.
func (p *Projects) ListProjects(ctx context.Context) ([]Summary, error) {
	return p.listProjects(ctx, 0)
}

// RecentProjects returns up to limit summaries, most recently updated first.
// The tray menu uses this with limit 5.
func (p *Projects) RecentProjects(ctx context.Context, limit int) ([]Summary, error) {
	return p.listProjects(ctx, limit)
}

func (p *Projects) listProjects(ctx context.Context, limit int) ([]Summary, error) {
	query := `SELECT p.id, p.name, p.project_type, p.updated_at,
	                 (SELECT COUNT(*) FROM messages m WHERE m.project_id = p.id)
	          FROM projects p
	          ORDER BY p.updated_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			s  Summary
			ts int64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.ProjectType, &ts, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		s.UpdatedAt = time.Unix(0, ts).UTC()
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteProject removes the project row; the messages foreign key cascades in
// the same transaction.
func (p *Projects) DeleteProject(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project not found: %s: %w", id, ErrNotFound)
	}
	p.notifyMutate()
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
