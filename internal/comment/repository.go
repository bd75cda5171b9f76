package comment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCommentNotFound is returned when a comment record is not found.
var ErrCommentNotFound = errors.New("comment not found")

// Repository provides operations on the comments table.
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
