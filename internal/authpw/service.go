// Package authpw handles password credentials: registration and sign-in.
package authpw

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cvstudio/api/internal/store"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrUsernameTaken  = errors.New("username taken")
	ErrEmailTaken     = errors.New("email taken")
	ErrWeakPassword   = errors.New("weak password")
)

// UserStore is the slice of the data layer sign-up and sign-in need.
type UserStore interface {
	CreateProfile(ctx context.Context, p store.Profile) error
	GetProfileByUsername(ctx context.Context, username string) (store.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (store.Profile, error)
}

type Service struct {
	store UserStore
}

func NewService(st UserStore) *Service {
	return &Service{store: st}
}

type SignUpInput struct {
	Username string
	FullName string
	Email    string
	Password string
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (store.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if in.Username == "" || in.Email == "" {
		return store.Profile{}, ErrBadCredentials
	}
	if len(in.Password) < 8 {
		return store.Profile{}, ErrWeakPassword
	}

	if _, err := s.store.GetProfileByUsername(ctx, in.Username); err == nil {
		return store.Profile{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Profile{}, err
	}
	if _, err := s.store.GetProfileByEmail(ctx, in.Email); err == nil {
		return store.Profile{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Profile{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	p := store.Profile{
		ID:           uuid.NewString(),
		Username:     in.Username,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         "USER",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return store.Profile{}, err
	}
	return p, nil
}

// SignIn accepts either the username or the email as the login handle.
func (s *Service) SignIn(ctx context.Context, handle, password string) (store.Profile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || password == "" {
		return store.Profile{}, ErrBadCredentials
	}

	p, err := s.store.GetProfileByUsername(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		p, err = s.store.GetProfileByEmail(ctx, strings.ToLower(handle))
	}
	if errors.Is(err, store.ErrNotFound) {
		return store.Profile{}, ErrBadCredentials
	}
	if err != nil {
		return store.Profile{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return store.Profile{}, ErrBadCredentials
	}
	return p, nil
}
