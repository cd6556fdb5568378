package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectNotFound = errors.New("project not found")
	ErrSkillNotFound   = errors.New("skill not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority INTEGER NOT NULL DEFAULT 5,
	status TEXT NOT NULL DEFAULT 'planned',
	completion_percentage REAL NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS skills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL,
	proficiency INTEGER NOT NULL,
	mendix_relevant INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	practice_hours REAL NOT NULL DEFAULT 0,
	last_practiced INTEGER,
	created_at INTEGER NOT NULL
);
`

// Store persists portfolio state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the SQLite portfolio store and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// CreateProject inserts a project; duplicate names fail with ErrProjectExists.
func (s *Store) CreateProject(ctx context.Context, p *Project) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("project name is required")
	}
	if p.Priority == 0 {
		p.Priority = 5
	}
	if p.Status == "" {
		p.Status = ProjectPlanned
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO projects (name, type, description, priority, status, completion_percentage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING`,
		name, p.Type, p.Description, p.Priority, string(p.Status), p.CompletionPercentage,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert project result: %w", err)
	}
	if affected == 0 {
		return ErrProjectExists
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert project id: %w", err)
	}
	p.ID = id
	p.Name = name

	return nil
}

func (s *Store) GetProjectByName(ctx context.Context, name string) (*Project, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT id, name, type, description, priority, status, completion_percentage, created_at, updated_at
		FROM projects WHERE name = ?`, strings.TrimSpace(name))

	var (
		p         Project
		status    string
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Description, &p.Priority, &status,
		&p.CompletionPercentage, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("select project %q: %w", name, err)
	}
	p.Status = ProjectStatus(status)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)

	return &p, nil
}

// UpdateProjectProgress sets the completion percentage and optionally the status.
func (s *Store) UpdateProjectProgress(ctx context.Context, name string, completion float64, status ProjectStatus) (*Project, error) {
	p, err := s.GetProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}

	p.CompletionPercentage = completion
	if status != "" {
		p.Status = status
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = s.sqlDB.ExecContext(ctx, `
		UPDATE projects SET completion_percentage = ?, status = ?, updated_at = ? WHERE id = ?`,
		p.CompletionPercentage, string(p.Status), toMillis(p.UpdatedAt), p.ID)
	if err != nil {
		return nil, fmt.Errorf("update project %q: %w", name, err)
	}

	return p, nil
}

// ListProjects returns all projects ordered by priority, highest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, name, type, description, priority, status, completion_percentage, created_at, updated_at
		FROM projects ORDER BY priority DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var (
			p         Project
			status    string
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Description, &p.Priority, &status,
			&p.CompletionPercentage, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		p.Status = ProjectStatus(status)
		p.CreatedAt = fromMillis(createdAt)
		p.UpdatedAt = fromMillis(updatedAt)
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// UpsertSkill creates the skill or updates its proficiency and practice time.
// It returns the updated record plus the previous proficiency (0 for new skills).
func (s *Store) UpsertSkill(ctx context.Context, skill *Skill) (previous int, err error) {
	name := strings.TrimSpace(skill.Name)
	if name == "" {
		return 0, fmt.Errorf("skill name is required")
	}

	now := time.Now().UTC()

	existing, err := s.getSkillByName(ctx, name)
	if err != nil && !errors.Is(err, ErrSkillNotFound) {
		return 0, err
	}

	if existing != nil {
		previous = existing.Proficiency
		_, err = s.sqlDB.ExecContext(ctx, `
			UPDATE skills SET proficiency = ?, notes = ?, practice_hours = practice_hours + ?, last_practiced = ?
			WHERE id = ?`,
			skill.Proficiency, skill.Notes, skill.PracticeHours, toMillis(now), existing.ID)
		if err != nil {
			return 0, fmt.Errorf("update skill %q: %w", name, err)
		}
		skill.ID = existing.ID
		skill.PracticeHours += existing.PracticeHours
	} else {
		mendix := 0
		if skill.MendixRelevant {
			mendix = 1
		}
		result, err := s.sqlDB.ExecContext(ctx, `
			INSERT INTO skills (name, category, proficiency, mendix_relevant, notes, practice_hours, last_practiced, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			name, skill.Category, skill.Proficiency, mendix, skill.Notes, skill.PracticeHours,
			toMillis(now), toMillis(now))
		if err != nil {
			return 0, fmt.Errorf("insert skill %q: %w", name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert skill id: %w", err)
		}
		skill.ID = id
	}

	skill.Name = name
	skill.LastPracticed = &now

	return previous, nil
}

func (s *Store) getSkillByName(ctx context.Context, name string) (*Skill, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT id, name, category, proficiency, mendix_relevant, notes, practice_hours, last_practiced, created_at
		FROM skills WHERE name = ?`, name)

	return scanSkill(row)
}

// ListSkills returns all skills ordered by proficiency, highest first.
func (s *Store) ListSkills(ctx context.Context) ([]Skill, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, name, category, proficiency, mendix_relevant, notes, practice_hours, last_practiced, created_at
		FROM skills ORDER BY proficiency DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("select skills: %w", err)
	}
	defer rows.Close()

	var skills []Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, *skill)
	}

	return skills, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSkill(row rowScanner) (*Skill, error) {
	var (
		skill         Skill
		mendix        int
		lastPracticed sql.NullInt64
		createdAt     int64
	)
	err := row.Scan(&skill.ID, &skill.Name, &skill.Category, &skill.Proficiency, &mendix,
		&skill.Notes, &skill.PracticeHours, &lastPracticed, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("scan skill row: %w", err)
	}
	skill.MendixRelevant = mendix != 0
	if lastPracticed.Valid {
		t := fromMillis(lastPracticed.Int64)
		skill.LastPracticed = &t
	}
	skill.CreatedAt = fromMillis(createdAt)

	return &skill, nil
}
