package comment

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a row in the comments table. task_id references a task
// owned by the task service; author_id references an identity.
type Comment struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	CreatedAt time.Time
}
