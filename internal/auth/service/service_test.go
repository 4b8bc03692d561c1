package service

import (
	"context"
	"errors"
	"testing"

	"travel_crm_backend/internal/auth/repository"
	"travel_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeUsers struct {
	users      map[uuid.UUID]repository.User
	lastFilter repository.ListFilter
	tokens     map[uuid.UUID]*string
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListUsers(_ context.Context, filter repository.ListFilter) ([]repository.User, error) {
	f.lastFilter = filter
	out := make([]repository.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) SetPushToken(_ context.Context, id uuid.UUID, token *string) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	f.tokens[id] = token
	return nil
}

func newFake() (*fakeUsers, uuid.UUID) {
	id := uuid.New()
	return &fakeUsers{
		users:  map[uuid.UUID]repository.User{id: {ID: id, Name: "Asha", Email: "asha@example.com", Role: "sales", Status: "active"}},
		tokens: map[uuid.UUID]*string{},
	}, id
}

func TestGetMeMapsMissingUserToNotFound(t *testing.T) {
	repo, _ := newFake()
	svc := New(repo)

	_, err := svc.GetMe(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListUsersRejectsUnknownRole(t *testing.T) {
	repo, _ := newFake()
	svc := New(repo)

	if _, err := svc.ListUsers(context.Background(), "pilot", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	users, err := svc.ListUsers(context.Background(), "sales", "active")
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Asha" || repo.lastFilter.Role == nil || *repo.lastFilter.Role != "sales" {
		t.Fatalf("unexpected result %v / filter %+v", users, repo.lastFilter)
	}
}

func TestUpdatePushTokenClearsOnBlank(t *testing.T) {
	repo, id := newFake()
	svc := New(repo)

	if err := svc.UpdatePushToken(context.Background(), id, "ExponentPushToken[abc]"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if got := repo.tokens[id]; got == nil || *got != "ExponentPushToken[abc]" {
		t.Fatalf("unexpected token %v", got)
	}

	if err := svc.UpdatePushToken(context.Background(), id, "   "); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if repo.tokens[id] != nil {
		t.Fatal("expected blank token to clear the registration")
	}

	err := svc.UpdatePushToken(context.Background(), uuid.New(), "x")
	if !errors.Is(err, repository.ErrNotFound) && !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
