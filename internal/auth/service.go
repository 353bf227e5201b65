package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"jarvis/internal/domain"
	"jarvis/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUsernameTaken      = errors.New("auth: username already exists")
	ErrNotGuest           = errors.New("auth: not a guest account")
)

// Service wires the token issuer to a Store, implementing register,
// login, guest creation, guest upgrade, and Google login.
type Service struct {
	store  store.Store
	tokens *TokenIssuer
}

func NewService(s store.Store, tokens *TokenIssuer) *Service {
	return &Service{store: s, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, username, password, email string) (domain.User, string, error) {
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return domain.User{}, "", ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, "", err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsGuest:      false,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return domain.User{}, "", err
	}
	token, err := s.tokens.Mint(user.ID, false)
	return user, token, err
}

func (s *Service) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, "", err
	}
	if user.PasswordHash == "" || !VerifyPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Mint(user.ID, false)
	return user, token, err
}

func (s *Service) CreateGuest(ctx context.Context) (domain.User, string, error) {
	id := uuid.NewString()
	user := domain.User{
		ID:      id,
		IsGuest: true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return domain.User{}, "", err
	}
	token, err := s.tokens.Mint(user.ID, true)
	return user, token, err
}

func (s *Service) UpgradeGuest(ctx context.Context, guestUserID, username, password, email string) (domain.User, string, error) {
	user, err := s.store.GetUserByID(ctx, guestUserID)
	if err != nil {
		return domain.User{}, "", err
	}
	if !user.IsGuest {
		return domain.User{}, "", ErrNotGuest
	}
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return domain.User{}, "", ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, "", err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}
	user.Username = username
	user.Email = email
	user.PasswordHash = hash
	user.IsGuest = false
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return domain.User{}, "", err
	}
	token, err := s.tokens.Mint(user.ID, false)
	return user, token, err
}

// GoogleLogin links or creates a local user for the given verified Google
// subject/email pair.
func (s *Service) GoogleLogin(ctx context.Context, googleSub, email string) (domain.User, string, error) {
	user, err := s.store.GetUserByGoogleSub(ctx, googleSub)
	if err == nil {
		token, terr := s.tokens.Mint(user.ID, false)
		return user, token, terr
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, "", err
	}

	username := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		username = email[:at]
	}
	user = domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		GoogleSub: googleSub,
		IsGuest:   false,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return domain.User{}, "", err
	}
	token, err := s.tokens.Mint(user.ID, false)
	return user, token, err
}

func (s *Service) GetCurrentUser(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth: %w", err)
	}
	return s.store.GetUserByID(ctx, claims.Sub)
}
