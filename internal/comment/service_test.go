package comment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhive/hive/internal/comment"
	"github.com/glhive/hive/internal/hive"
)

type fakeCommentRepo struct {
	comments map[uuid.UUID]*comment.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[uuid.UUID]*comment.Comment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *comment.Comment) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id uuid.UUID) (*comment.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, comment.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) ListByTask(_ context.Context, taskID uuid.UUID) ([]comment.Comment, error) {
	out := []comment.Comment{}
	for _, c := range r.comments {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.comments[id]; !ok {
		return comment.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

type fakeTaskClient struct {
	task *hive.TaskDTO
}

func (c *fakeTaskClient) GetTaskByID(_ context.Context, _ string, taskID uuid.UUID) (*hive.TaskDTO, error) {
	if c.task == nil || c.task.TaskID != taskID {
		return nil, hive.NotFound("Task with the given taskId was not found")
	}
	return c.task, nil
}

type fakeMembershipClient struct {
	members map[uuid.UUID]bool
}

func (c *fakeMembershipClient) IsMemberOfProject(_ context.Context, _ string, _, userID uuid.UUID) (bool, error) {
	return c.members[userID], nil
}

type fakeUserClient struct {
	users map[uuid.UUID]*hive.UserDTO
}

func (c *fakeUserClient) GetUserByID(_ context.Context, _ string, userID uuid.UUID) (*hive.UserDTO, error) {
	u, ok := c.users[userID]
	if !ok {
		return nil, hive.NotFound("User with the given userId was not found")
	}
	return u, nil
}

type commentEnv struct {
	service *comment.Service
	repo    *fakeCommentRepo
	tasks   *fakeTaskClient
	members *fakeMembershipClient
	author  *hive.UserDTO
}

func newCommentEnv(t *testing.T) *commentEnv {
	t.Helper()

	author := &hive.UserDTO{UserID: uuid.New(), Username: "alice", Active: true,
		Roles: []string{hive.RoleTeamMember}}
	repo := newFakeCommentRepo()
	tasks := &fakeTaskClient{task: &hive.TaskDTO{
		TaskID: uuid.New(), ProjectID: uuid.New(), TaskName: "implement login",
	}}
	members := &fakeMembershipClient{members: map[uuid.UUID]bool{author.UserID: true}}
	users := &fakeUserClient{users: map[uuid.UUID]*hive.UserDTO{author.UserID: author}}

	return &commentEnv{
		service: comment.NewService(repo, tasks, members, users),
		repo:    repo,
		tasks:   tasks,
		members: members,
		author:  author,
	}
}

func TestAddComment(t *testing.T) {
	env := newCommentEnv(t)

	dto, err := env.service.AddComment(context.Background(), "Bearer t", env.author,
		env.tasks.task.TaskID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, "looks good", dto.Content)
	assert.Equal(t, env.author.UserID, dto.AuthorID)
	assert.Equal(t, "alice", dto.AuthorUsername)
}

func TestAddCommentRequiresMembership(t *testing.T) {
	env := newCommentEnv(t)
	outsider := &hive.UserDTO{UserID: uuid.New(), Username: "bob", Active: true,
		Roles: []string{hive.RoleTeamMember}}

	_, err := env.service.AddComment(context.Background(), "Bearer t", outsider,
		env.tasks.task.TaskID, "hi")
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindNotMemberOfProject))
}

func TestAddCommentUnknownTask(t *testing.T) {
	env := newCommentEnv(t)

	_, err := env.service.AddComment(context.Background(), "Bearer t", env.author,
		uuid.New(), "hi")
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindResourceNotFound))
}

func TestListComments(t *testing.T) {
	env := newCommentEnv(t)
	for _, content := range []string{"one", "two"} {
		_, err := env.service.AddComment(context.Background(), "Bearer t", env.author,
			env.tasks.task.TaskID, content)
		require.NoError(t, err)
	}

	comments, err := env.service.ListComments(context.Background(), "Bearer t", env.author,
		env.tasks.task.TaskID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
	for _, c := range comments {
		assert.Equal(t, "alice", c.AuthorUsername)
	}
}

func TestDeleteCommentAuthz(t *testing.T) {
	env := newCommentEnv(t)
	dto, err := env.service.AddComment(context.Background(), "Bearer t", env.author,
		env.tasks.task.TaskID, "mine")
	require.NoError(t, err)

	other := &hive.UserDTO{UserID: uuid.New(), Username: "bob", Active: true,
		Roles: []string{hive.RoleTeamMember}}
	err = env.service.DeleteComment(context.Background(), other, dto.CommentID)
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindNotAuthorized))

	admin := &hive.UserDTO{UserID: uuid.New(), Username: "root", Active: true,
		Roles: []string{hive.RoleAdmin}}
	require.NoError(t, env.service.DeleteComment(context.Background(), admin, dto.CommentID))
}
