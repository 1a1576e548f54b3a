package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/Pankajjr12/snapnest-api/internal/auth"
	"github.com/Pankajjr12/snapnest-api/internal/database"
	"github.com/Pankajjr12/snapnest-api/internal/models"
)

// RegisterInput is the account to create. Image is optional.
type RegisterInput struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
	Image       *ImageUpload
}

// ImageUpload is an uploaded profile image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// AuthResult is the created or authenticated user and its session token.
type AuthResult struct {
	Token string
	User  models.PublicUser
}

// AuthService handles registration, login, and session verification.
type AuthService struct {
	users  database.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenService
	images *ImageStore
	log    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users database.UserRepository,
	hasher *auth.Hasher,
	tokens *auth.TokenService,
	images *ImageStore,
	log *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		images: images,
		log:    log,
	}
}

// Register creates an account and issues a session for it.
//
// The email and username pre-checks give friendly errors in the common
// case; the unique constraints in the store are what actually decide a
// race between two concurrent registrations.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = normalizeEmail(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, errMissingFields
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.internal("looking up email", err)
	}
	if existing != nil {
		return nil, errEmailTaken
	}

	existing, err = s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, s.internal("looking up username", err)
	}
	if existing != nil {
		return nil, errUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal("hashing password", err)
	}

	user := &models.User{
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		PasswordHash: hash,
	}

	if in.Image != nil {
		key, err := s.images.Save(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		user.ProfileImageRef = &key
	}

	if err := s.users.Create(ctx, user); err != nil {
		if user.ProfileImageRef != nil {
			s.images.Discard(ctx, *user.ProfileImageRef)
		}
		switch {
		case errors.Is(err, database.ErrDuplicateEmail):
			return nil, errEmailTaken
		case errors.Is(err, database.ErrDuplicateUsername):
			return nil, errUsernameTaken
		}
		return nil, s.internal("creating user", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return s.issue(user)
}

// Login authenticates by email and password. An unknown email and a wrong
// password produce the same error, and both spend one hash verification.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.internal("looking up email", err)
	}
	if user == nil {
		s.hasher.VerifyDummy(password)
		return nil, errInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, s.internal("verifying password", err)
	}
	if !ok {
		return nil, errInvalidCredentials
	}

	return s.issue(user)
}

// VerifySession resolves the user bound to token. It never fails: any
// problem with the token means an anonymous caller.
func (s *AuthService) VerifySession(token string) (int64, bool) {
	return s.tokens.Verify(token)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.internal("issuing session token", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) internal(op string, err error) *ServiceError {
	s.log.Error("auth: "+op, "error", err)
	return Internal()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
