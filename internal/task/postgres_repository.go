package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new task record and its assigned-user rows.
func (r *PostgresRepository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (project_id, name, description, due_date, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		t.ProjectID, t.Name, t.Description, t.DueDate, t.Status, t.Priority).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTaskName
		}
		return fmt.Errorf("inserting task: %w", err)
	}

	for _, userID := range t.AssignedUsers {
		if err := r.AssignUser(ctx, t.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a single task by its UUID, assigned users included.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	query := `
		SELECT id, project_id, name, description, due_date, status, priority, created_at
		FROM tasks
		WHERE id = $1`

	t, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if t.AssignedUsers, err = r.assignedUsers(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByProjectAndName retrieves a task by name within a project,
// case-insensitively.
func (r *PostgresRepository) GetByProjectAndName(ctx context.Context, projectID uuid.UUID, name string) (*Task, error) {
	query := `
		SELECT id, project_id, name, description, due_date, status, priority, created_at
		FROM tasks
		WHERE project_id = $1 AND LOWER(name) = LOWER($2)`

	return r.scanOne(r.pool.QueryRow(ctx, query, projectID, name))
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description,
		&t.DueDate, &t.Status, &t.Priority, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return &t, nil
}

// Update persists the mutable task fields.
func (r *PostgresRepository) Update(ctx context.Context, t *Task) error {
	query := `
		UPDATE tasks
		SET name = $2, description = $3, due_date = $4, status = $5, priority = $6
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		t.ID, t.Name, t.Description, t.DueDate, t.Status, t.Priority)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes the task row. Assigned-user rows go with it via the
// foreign key's ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Search returns tasks matching the filter, newest first.
func (r *PostgresRepository) Search(ctx context.Context, filter SearchFilter) ([]Task, error) {
	query := `
		SELECT DISTINCT t.id, t.project_id, t.name, t.description, t.due_date, t.status, t.priority, t.created_at
		FROM tasks t
		LEFT JOIN task_assignees ta ON ta.task_id = t.id
		WHERE ($1::uuid IS NULL OR t.project_id = $1)
		  AND ($2::uuid IS NULL OR ta.user_id = $2)
		  AND ($3::text IS NULL OR t.status = $3)
		  AND ($4::text IS NULL OR t.priority = $4)
		ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query,
		nilIfZero(filter.ProjectID), nilIfZero(filter.AssigneeID),
		nilIfEmpty(filter.Status), nilIfEmpty(filter.Priority))
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description,
			&t.DueDate, &t.Status, &t.Priority, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return tasks, nil
}

// AssignUser links a user to the task. Repeated assignment is a no-op.
func (r *PostgresRepository) AssignUser(ctx context.Context, taskID, userID uuid.UUID) error {
	query := `
		INSERT INTO task_assignees (task_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, taskID, userID); err != nil {
		return fmt.Errorf("assigning user to task: %w", err)
	}
	return nil
}

// UnassignUser removes the link between a user and the task.
func (r *PostgresRepository) UnassignUser(ctx context.Context, taskID, userID uuid.UUID) error {
	query := `DELETE FROM task_assignees WHERE task_id = $1 AND user_id = $2`
	if _, err := r.pool.Exec(ctx, query, taskID, userID); err != nil {
		return fmt.Errorf("unassigning user from task: %w", err)
	}
	return nil
}

func (r *PostgresRepository) assignedUsers(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM task_assignees WHERE task_id = $1 ORDER BY user_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying task assignees: %w", err)
	}
	defer rows.Close()

	users := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning assignee row: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignee rows: %w", err)
	}
	return users, nil
}

func nilIfZero(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
