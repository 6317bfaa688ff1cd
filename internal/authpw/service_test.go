package authpw

import (
	"context"
	"errors"
	"testing"

	"cvstudio/api/internal/store"
)

type fakeUserStore struct {
	byUsername map[string]store.Profile
	byEmail    map[string]store.Profile
	created    []store.Profile
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byUsername: map[string]store.Profile{},
		byEmail:    map[string]store.Profile{},
	}
}

func (f *fakeUserStore) CreateProfile(_ context.Context, p store.Profile) error {
	f.byUsername[p.Username] = p
	f.byEmail[p.Email] = p
	f.created = append(f.created, p)
	return nil
}

func (f *fakeUserStore) GetProfileByUsername(_ context.Context, username string) (store.Profile, error) {
	if p, ok := f.byUsername[username]; ok {
		return p, nil
	}
	return store.Profile{}, store.ErrNotFound
}

func (f *fakeUserStore) GetProfileByEmail(_ context.Context, email string) (store.Profile, error) {
	if p, ok := f.byEmail[email]; ok {
		return p, nil
	}
	return store.Profile{}, store.ErrNotFound
}

func TestSignUpThenSignIn(t *testing.T) {
	svc := NewService(newFakeUserStore())

	p, err := svc.SignUp(context.Background(), SignUpInput{
		Username: "ada",
		FullName: "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if p.ID == "" {
		t.Fatal("profile must get an id")
	}
	if p.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", p.Email)
	}
	if p.PasswordHash == "correct horse" {
		t.Fatal("password stored in clear")
	}
	if p.Role != "USER" {
		t.Fatalf("role = %q", p.Role)
	}

	got, err := svc.SignIn(context.Background(), "ada", "correct horse")
	if err != nil {
		t.Fatalf("sign in by username: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("sign in returned %q, want %q", got.ID, p.ID)
	}

	if _, err := svc.SignIn(context.Background(), "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("sign in by email: %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	svc := NewService(newFakeUserStore())
	if _, err := svc.SignUp(context.Background(), SignUpInput{
		Username: "ada", Email: "ada@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := svc.SignIn(context.Background(), "ada", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("want ErrBadCredentials, got %v", err)
	}
	if _, err := svc.SignIn(context.Background(), "nobody", "correct horse"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown handle: want ErrBadCredentials, got %v", err)
	}
}

func TestSignUpRejectsDuplicates(t *testing.T) {
	svc := NewService(newFakeUserStore())
	base := SignUpInput{Username: "ada", Email: "ada@example.com", Password: "correct horse"}
	if _, err := svc.SignUp(context.Background(), base); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	dup := base
	dup.Email = "other@example.com"
	if _, err := svc.SignUp(context.Background(), dup); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("want ErrUsernameTaken, got %v", err)
	}

	dup = base
	dup.Username = "other"
	if _, err := svc.SignUp(context.Background(), dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	svc := NewService(newFakeUserStore())
	_, err := svc.SignUp(context.Background(), SignUpInput{
		Username: "ada", Email: "ada@example.com", Password: "short",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}
}
