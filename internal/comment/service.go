package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/glhive/hive/internal/hive"
)

// TaskClient is the slice of the task service the comment service depends on.
type TaskClient interface {
	GetTaskByID(ctx context.Context, bearer string, taskID uuid.UUID) (*hive.TaskDTO, error)
}

// ProjectClient is the slice of the project service the comment service
// depends on.
type ProjectClient interface {
	IsMemberOfProject(ctx context.Context, bearer string, projectID, userID uuid.UUID) (bool, error)
}

// IdentityClient resolves author ids to identity snapshots for listings.
type IdentityClient interface {
	GetUserByID(ctx context.Context, bearer string, userID uuid.UUID) (*hive.UserDTO, error)
}

// CommentDTO is the comment representation served over HTTP.
type CommentDTO struct {
	CommentID      uuid.UUID `json:"commentId"`
	TaskID         uuid.UUID `json:"taskId"`
	AuthorID       uuid.UUID `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	Content        string    `json:"content"`
	CreatedAt      string    `json:"createdAt"`
}

// Service implements task comments. Commenting requires membership in the
// task's project, resolved through the task and project services.
type Service struct {
	comments Repository
	tasks    TaskClient
	projects ProjectClient
	identity IdentityClient
}

// NewService creates a comment Service.
func NewService(comments Repository, tasks TaskClient, projects ProjectClient, identity IdentityClient) *Service {
	return &Service{comments: comments, tasks: tasks, projects: projects, identity: identity}
}

// AddComment creates a comment on the task, authored by the requester. The
// task lookup resolves the owning project; membership in that project is
// required.
func (s *Service) AddComment(ctx context.Context, bearer string, requester *hive.UserDTO, taskID uuid.UUID, content string) (*CommentDTO, error) {
	if content == "" {
		return nil, hive.InvalidRequest("content is required")
	}

	task, err := s.tasks.GetTaskByID(ctx, bearer, taskID)
	if err != nil {
		return nil, err
	}

	member, err := s.projects.IsMemberOfProject(ctx, bearer, task.ProjectID, requester.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, hive.NotMemberOfProject("User is not a member of this project")
	}

	c := &Comment{TaskID: taskID, AuthorID: requester.UserID, Content: content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	slog.Info("comment added", "commentId", c.ID, "taskId", taskID)
	return s.toDTO(c, requester.Username), nil
}

// ListComments returns the task's comments with author usernames resolved.
// The requester must be a member of the task's project.
func (s *Service) ListComments(ctx context.Context, bearer string, requester *hive.UserDTO, taskID uuid.UUID) ([]CommentDTO, error) {
	task, err := s.tasks.GetTaskByID(ctx, bearer, taskID)
	if err != nil {
		return nil, err
	}

	member, err := s.projects.IsMemberOfProject(ctx, bearer, task.ProjectID, requester.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, hive.NotMemberOfProject("User is not a member of this project")
	}

	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	usernames := map[uuid.UUID]string{}
	dtos := make([]CommentDTO, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		username, ok := usernames[c.AuthorID]
		if !ok {
			author, err := s.identity.GetUserByID(ctx, bearer, c.AuthorID)
			if err != nil {
				return nil, err
			}
			username = author.Username
			usernames[c.AuthorID] = username
		}
		dtos = append(dtos, *s.toDTO(c, username))
	}
	return dtos, nil
}

// DeleteComment removes a comment. Only the author or a global ADMIN may
// delete.
func (s *Service) DeleteComment(ctx context.Context, requester *hive.UserDTO, commentID uuid.UUID) error {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return hive.NotFound("Comment with the given commentId was not found")
		}
		return fmt.Errorf("finding comment: %w", err)
	}

	if c.AuthorID != requester.UserID && !requester.HasRole(hive.RoleAdmin) {
		return hive.NotAuthorized("Not authorized to delete this comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}

func (s *Service) toDTO(c *Comment, username string) *CommentDTO {
	return &CommentDTO{
		CommentID:      c.ID,
		TaskID:         c.TaskID,
		AuthorID:       c.AuthorID,
		AuthorUsername: username,
		Content:        c.Content,
		CreatedAt:      c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
