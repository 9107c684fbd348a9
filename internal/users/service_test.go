package users

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civreg/civreg/internal/lifecycle"
	"github.com/civreg/civreg/internal/rbac"
)

type memoryRepo struct {
	nextID int64
	users  map[int64]*User
	hashes map[int64]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]*User{}, hashes: map[int64]string{}}
}

func (r *memoryRepo) Create(_ context.Context, input CreateInput, passwordHash string) (User, error) {
	for _, u := range r.users {
		if u.Email == input.Email {
			return User{}, ErrDuplicateEmail
		}
	}
	r.nextID++
	now := time.Now()
	u := User{
		ID:        r.nextID,
		Email:     input.Email,
		FullName:  input.FullName,
		RoleID:    input.RoleID,
		Status:    rbac.AccountActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[u.ID] = &u
	r.hashes[u.ID] = passwordHash
	return u, nil
}

func (r *memoryRepo) GetActive(_ context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return User{}, ErrNotFound
	}
	return *u, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, input UpdateInput) (User, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return User{}, ErrNotFound
	}
	u.FullName = input.FullName
	u.RoleID = input.RoleID
	return *u, nil
}

func (r *memoryRepo) SetStatus(_ context.Context, id int64, status rbac.AccountStatus) (User, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return User{}, ErrNotFound
	}
	u.Status = status
	return *u, nil
}

func (r *memoryRepo) MarkDeleted(_ context.Context, id int64, at time.Time) (bool, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return false, nil
	}
	u.DeletedAt = &at
	return true, nil
}

func (r *memoryRepo) ClearDeleted(_ context.Context, id int64) (bool, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt == nil {
		return false, nil
	}
	u.DeletedAt = nil
	return true, nil
}

func (r *memoryRepo) DeletePermanently(_ context.Context, id int64) (bool, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt == nil {
		return false, nil
	}
	delete(r.users, id)
	delete(r.hashes, id)
	return true, nil
}

func (r *memoryRepo) ListActive(_ context.Context, limit, offset int) ([]User, int, error) {
	return r.list(limit, offset, false)
}

func (r *memoryRepo) ListTrashed(_ context.Context, limit, offset int) ([]User, int, error) {
	return r.list(limit, offset, true)
}

func (r *memoryRepo) list(limit, offset int, trashed bool) ([]User, int, error) {
	var all []User
	for id := int64(1); id <= r.nextID; id++ {
		u, ok := r.users[id]
		if !ok {
			continue
		}
		if (u.DeletedAt != nil) == trashed {
			all = append(all, *u)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

type staticHasher struct{}

func (staticHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, staticHasher{}, nil, nil, slog.Default())
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	u, err := svc.Create(context.Background(), 1, CreateInput{
		Email:    "clerk@registry.test",
		FullName: "Registry Clerk",
		Password: "s3cret-pass",
		RoleID:   2,
	})
	require.NoError(t, err)
	require.Equal(t, rbac.AccountActive, u.Status)
	require.Equal(t, "hashed:s3cret-pass", repo.hashes[u.ID])
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	input := CreateInput{Email: "dup@registry.test", FullName: "First", Password: "password1", RoleID: 2}
	_, err := svc.Create(context.Background(), 1, input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, input)
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	u, err := svc.Create(context.Background(), 1, CreateInput{Email: "a@b.test", FullName: "A", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), 1, u.ID, rbac.AccountStatus("SUSPENDED"))
	require.Error(t, err)

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, rbac.AccountActive, got.Status)
}

func TestSetStatusDisables(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	u, err := svc.Create(context.Background(), 1, CreateInput{Email: "a@b.test", FullName: "A", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	got, err := svc.SetStatus(context.Background(), 1, u.ID, rbac.AccountDisabled)
	require.NoError(t, err)
	require.Equal(t, rbac.AccountDisabled, got.Status)
}

func TestSoftDeleteHidesUser(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	u, err := svc.Create(context.Background(), 1, CreateInput{Email: "a@b.test", FullName: "A", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), 1, u.ID))

	_, err = svc.Get(context.Background(), u.ID)
	require.ErrorIs(t, err, ErrNotFound)

	trash, err := svc.ListTrash(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, trash.Meta.Total)

	// repeated delete finds nothing to flip
	err = svc.SoftDelete(context.Background(), 1, u.ID)
	require.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestRestoreOnlyFromTrash(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	u, err := svc.Create(context.Background(), 1, CreateInput{Email: "a@b.test", FullName: "A", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	err = svc.Restore(context.Background(), 1, u.ID)
	require.ErrorIs(t, err, lifecycle.ErrNotFound)

	require.NoError(t, svc.SoftDelete(context.Background(), 1, u.ID))
	require.NoError(t, svc.Restore(context.Background(), 1, u.ID))

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.Nil(t, got.DeletedAt)
}

func TestPurgeOnlyFromTrash(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	u, err := svc.Create(context.Background(), 1, CreateInput{Email: "a@b.test", FullName: "A", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	err = svc.Purge(context.Background(), 1, u.ID)
	require.ErrorIs(t, err, lifecycle.ErrNotFound)

	require.NoError(t, svc.SoftDelete(context.Background(), 1, u.ID))
	require.NoError(t, svc.Purge(context.Background(), 1, u.ID))

	trash, err := svc.ListTrash(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Zero(t, trash.Meta.Total)
}
