package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/identity"
	"github.com/glhive/hive/internal/token"
)

// --- in-memory fakes ---

type fakeUserRepo struct {
	users       map[uuid.UUID]*identity.User
	roles       map[uuid.UUID][]identity.Role
	departments map[uuid.UUID][]identity.Department
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       map[uuid.UUID]*identity.User{},
		roles:       map[uuid.UUID][]identity.Role{},
		departments: map[uuid.UUID][]identity.Department{},
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *identity.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return identity.ErrDuplicateEmail
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]identity.User, error) {
	out := []identity.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) ListByDepartment(_ context.Context, department string) ([]identity.User, error) {
	out := []identity.User{}
	for id, u := range r.users {
		for _, d := range r.departments[id] {
			if d.Name == department {
				out = append(out, *u)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.Active = active
	return nil
}

func (r *fakeUserRepo) RolesOf(_ context.Context, userID uuid.UUID) ([]identity.Role, error) {
	return r.roles[userID], nil
}

func (r *fakeUserRepo) DepartmentsOf(_ context.Context, userID uuid.UUID) ([]identity.Department, error) {
	return r.departments[userID], nil
}

func (r *fakeUserRepo) AddRole(_ context.Context, userID, roleID uuid.UUID) error {
	for _, existing := range r.roles[userID] {
		if existing.ID == roleID {
			return nil
		}
	}
	r.roles[userID] = append(r.roles[userID], identity.Role{ID: roleID, Name: roleNamesByID[roleID]})
	return nil
}

func (r *fakeUserRepo) AddDepartment(_ context.Context, userID, departmentID uuid.UUID) error {
	r.departments[userID] = append(r.departments[userID], identity.Department{ID: departmentID})
	return nil
}

var roleNamesByID = map[uuid.UUID]string{}

type fakeRefRepo struct {
	byName map[string]uuid.UUID
}

func newFakeRefRepo(names ...string) *fakeRefRepo {
	r := &fakeRefRepo{byName: map[string]uuid.UUID{}}
	for _, n := range names {
		id := uuid.New()
		r.byName[n] = id
		roleNamesByID[id] = n
	}
	return r
}

func (r *fakeRefRepo) GetByName(_ context.Context, name string) (*identity.Role, error) {
	id, ok := r.byName[name]
	if !ok {
		return nil, identity.ErrRoleNotFound
	}
	return &identity.Role{ID: id, Name: name}, nil
}

func (r *fakeRefRepo) Ensure(_ context.Context, names ...string) error {
	for _, n := range names {
		if _, ok := r.byName[n]; !ok {
			id := uuid.New()
			r.byName[n] = id
			roleNamesByID[id] = n
		}
	}
	return nil
}

type fakeDeptRepo struct {
	byName map[string]uuid.UUID
}

func newFakeDeptRepo(names ...string) *fakeDeptRepo {
	r := &fakeDeptRepo{byName: map[string]uuid.UUID{}}
	for _, n := range names {
		r.byName[n] = uuid.New()
	}
	return r
}

func (r *fakeDeptRepo) GetByName(_ context.Context, name string) (*identity.Department, error) {
	id, ok := r.byName[name]
	if !ok {
		return nil, identity.ErrDepartmentNotFound
	}
	return &identity.Department{ID: id, Name: name}, nil
}

func (r *fakeDeptRepo) Ensure(_ context.Context, names ...string) error {
	for _, n := range names {
		if _, ok := r.byName[n]; !ok {
			r.byName[n] = uuid.New()
		}
	}
	return nil
}

type fakeVerificationRepo struct {
	tokens map[uuid.UUID]*identity.VerificationToken
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{tokens: map[uuid.UUID]*identity.VerificationToken{}}
}

func (r *fakeVerificationRepo) Create(_ context.Context, userID uuid.UUID) (*identity.VerificationToken, error) {
	vt := &identity.VerificationToken{Token: uuid.New(), UserID: userID, CreatedAt: time.Now()}
	r.tokens[vt.Token] = vt
	return vt, nil
}

func (r *fakeVerificationRepo) GetByToken(_ context.Context, tok uuid.UUID) (*identity.VerificationToken, error) {
	vt, ok := r.tokens[tok]
	if !ok {
		return nil, identity.ErrVerificationTokenNotFound
	}
	return vt, nil
}

type fakeLedger struct {
	issued map[uuid.UUID][]token.IssuedToken
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{issued: map[uuid.UUID][]token.IssuedToken{}}
}

func (l *fakeLedger) RecordIssuance(_ context.Context, userID uuid.UUID, raw string) error {
	l.issued[userID] = append(l.issued[userID], token.IssuedToken{
		ID:       uuid.New(),
		UserID:   userID,
		Token:    raw,
		Type:     token.TypeBearer,
		IssuedAt: time.Now(),
	})
	return nil
}

func (l *fakeLedger) RevokeAll(_ context.Context, userID uuid.UUID) error {
	rows := l.issued[userID]
	for i := range rows {
		rows[i].Expired = true
		rows[i].Revoked = true
	}
	return nil
}

func (l *fakeLedger) FindValidByUser(_ context.Context, userID uuid.UUID) ([]token.IssuedToken, error) {
	valid := []token.IssuedToken{}
	for _, row := range l.issued[userID] {
		if !row.Expired && !row.Revoked {
			valid = append(valid, row)
		}
	}
	return valid, nil
}

// --- test env ---

type identityEnv struct {
	service *identity.Service
	users   *fakeUserRepo
	verify  *fakeVerificationRepo
	ledger  *fakeLedger
}

func newIdentityEnv(t *testing.T) *identityEnv {
	t.Helper()

	users := newFakeUserRepo()
	roles := newFakeRefRepo(hive.RoleAdmin, hive.RoleProjectLeader, hive.RoleTeamMember)
	departments := newFakeDeptRepo(hive.DepartmentEngineering, hive.DepartmentDesign)
	verify := newFakeVerificationRepo()
	ledger := newFakeLedger()
	codec := token.NewCodec("v1", []byte("0123456789abcdef0123456789abcdef"))

	service := identity.NewService(users, roles, departments, verify, ledger, codec, time.Hour, 4)
	return &identityEnv{service: service, users: users, verify: verify, ledger: ledger}
}

func register(t *testing.T, env *identityEnv, email string) *identity.AuthenticationResponse {
	t.Helper()
	resp, err := env.service.Register(context.Background(), identity.RegisterRequest{
		Username: "alice",
		Email:    email,
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	return resp
}

func activate(t *testing.T, env *identityEnv, email string) {
	t.Helper()
	u, err := env.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NoError(t, env.users.SetActive(context.Background(), u.ID, true))
}

// --- tests ---

func TestRegisterAssignsDefaultRoleAndToken(t *testing.T) {
	env := newIdentityEnv(t)

	resp := register(t, env, "alice@example.com")
	assert.Equal(t, "alice", resp.Username)
	assert.False(t, resp.Active)
	assert.Equal(t, []string{hive.RoleTeamMember}, resp.Roles)
	assert.NotEmpty(t, resp.Token)

	u, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, u.Active)
	assert.NotEqual(t, "s3cret-password", u.PasswordHash)

	valid, err := env.ledger.FindValidByUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, valid, 1)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newIdentityEnv(t)
	register(t, env, "alice@example.com")

	_, err := env.service.Register(context.Background(), identity.RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "another-password",
	})
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindResourceAlreadyExists))
	assert.Equal(t, 400, hive.FromError(err).StatusCode)
}

func TestVerifyAccountActivatesUser(t *testing.T) {
	env := newIdentityEnv(t)
	register(t, env, "alice@example.com")

	u, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	var raw string
	for tok, vt := range env.verify.tokens {
		if vt.UserID == u.ID {
			raw = tok.String()
		}
	}
	require.NotEmpty(t, raw)

	require.NoError(t, env.service.VerifyAccount(context.Background(), raw))

	u, err = env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, u.Active)
}

func TestVerifyAccountUnknownToken(t *testing.T) {
	env := newIdentityEnv(t)

	err := env.service.VerifyAccount(context.Background(), uuid.New().String())
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindResourceNotFound))
}

func TestLoginBeforeActivationFails(t *testing.T) {
	env := newIdentityEnv(t)
	register(t, env, "alice@example.com")

	_, err := env.service.Login(context.Background(), "alice@example.com", "s3cret-password")
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindAuthenticationFailed))
}

func TestLoginWrongPassword(t *testing.T) {
	env := newIdentityEnv(t)
	register(t, env, "alice@example.com")
	activate(t, env, "alice@example.com")

	_, err := env.service.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindAuthenticationFailed))

	_, err = env.service.Login(context.Background(), "nobody@example.com", "s3cret-password")
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindAuthenticationFailed))
}

func TestLoginKeepsSingleValidToken(t *testing.T) {
	env := newIdentityEnv(t)
	register(t, env, "alice@example.com")
	activate(t, env, "alice@example.com")

	u, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	var last string
	for i := 0; i < 3; i++ {
		resp, err := env.service.Login(context.Background(), "alice@example.com", "s3cret-password")
		require.NoError(t, err)
		last = resp.Token
	}

	valid, err := env.ledger.FindValidByUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, valid, 1)
	assert.Equal(t, last, valid[0].Token)
}

func TestUserDTOByID(t *testing.T) {
	env := newIdentityEnv(t)
	register(t, env, "alice@example.com")

	u, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	dto, err := env.service.UserDTOByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, dto.UserID)
	assert.Equal(t, "alice", dto.Username)
	assert.Contains(t, dto.Roles, hive.RoleTeamMember)

	_, err = env.service.UserDTOByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindResourceNotFound))
}

func TestAddProjectLeaderRole(t *testing.T) {
	env := newIdentityEnv(t)
	register(t, env, "alice@example.com")

	u, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, env.service.AddProjectLeaderRole(context.Background(), u.ID))
	// Granting twice is idempotent.
	require.NoError(t, env.service.AddProjectLeaderRole(context.Background(), u.ID))

	dto, err := env.service.UserDTOByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{hive.RoleTeamMember, hive.RoleProjectLeader}, dto.Roles)
}
