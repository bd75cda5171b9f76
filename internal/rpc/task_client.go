package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glhive/hive/internal/hive"
)

// TaskClient calls the task service's inter-communication endpoints.
type TaskClient struct {
	*client
}

// NewTaskClient creates a TaskClient against the given base URL.
func NewTaskClient(baseURL string, timeout time.Duration) *TaskClient {
	return &TaskClient{client: newClient("task service", baseURL, timeout)}
}

// GetTaskByID fetches the task snapshot.
func (c *TaskClient) GetTaskByID(ctx context.Context, bearer string, taskID uuid.UUID) (*hive.TaskDTO, error) {
	var dto hive.TaskDTO
	path := fmt.Sprintf("/api/v1/task/intercommunication/task-dto/%s", taskID)
	if err := c.get(ctx, path, bearer, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}
