package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dhkim-dev/markethub-backend/internal/dto"
	"github.com/dhkim-dev/markethub-backend/internal/models"
	"github.com/dhkim-dev/markethub-backend/internal/oauth"
	"github.com/dhkim-dev/markethub-backend/internal/repository"
	"github.com/dhkim-dev/markethub-backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrMissingFields = errors.New("username, password and nickname are required")
	ErrWeakPassword  = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrUsernameTaken = errors.New("username already taken")
	// One message for both unknown username and wrong password, so the
	// login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	users  repository.UserRepository
	tokens *token.Issuer
}

func NewAuthService(users repository.UserRepository, tokens *token.Issuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a local-provider account and returns it with a fresh
// bearer token. The duplicate pre-check is best effort; the unique index
// settles concurrent registrations and the loser also gets ErrUsernameTaken.
func (s *AuthService) Register(req *dto.RegisterRequest) (*models.User, string, error) {
	username := strings.TrimSpace(req.Username)
	nickname := strings.TrimSpace(req.Nickname)
	if username == "" || req.Password == "" || nickname == "" {
		return nil, "", ErrMissingFields
	}
	if len(req.Password) < minPasswordLength {
		return nil, "", ErrWeakPassword
	}

	if _, err := s.users.FindByUsername(username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("username lookup failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	user := &models.User{
		Username:     &username,
		PasswordHash: &hashStr,
		Nickname:     nickname,
		Provider:     models.ProviderLocal,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	if req.Location != "" {
		user.Location = &req.Location
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	tok, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, tok, nil
}

// Login authenticates a local account. Unknown usernames, federated-only
// accounts and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("username lookup failed: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, tok, nil
}

// FederatedSignIn resolves or creates the account for a verified provider
// profile. Repeat sign-ins keep the numeric id and provider tag and
// refresh nickname, profile image and email from the provider's data.
func (s *AuthService) FederatedSignIn(info *oauth.UserInfo) (*models.User, string, error) {
	if info.ProviderUserID == "" {
		return nil, "", errors.New("provider returned no user id")
	}

	user, err := s.users.FindByProviderID(info.Provider, info.ProviderUserID)
	switch {
	case err == nil:
		fields := map[string]interface{}{}
		if info.Nickname != "" && info.Nickname != user.Nickname {
			fields["nickname"] = info.Nickname
		}
		if info.ProfileImage != "" {
			fields["profile_image"] = info.ProfileImage
		}
		if info.Email != "" {
			fields["email"] = info.Email
		}
		if len(fields) > 0 {
			if user, err = s.users.UpdateFields(user.ID, fields); err != nil {
				return nil, "", fmt.Errorf("failed to refresh profile: %w", err)
			}
		}

	case errors.Is(err, repository.ErrNotFound):
		nickname := info.Nickname
		if nickname == "" {
			nickname = info.Provider + "_" + info.ProviderUserID
		}
		user = &models.User{
			Nickname:       nickname,
			Provider:       info.Provider,
			ProviderUserID: &info.ProviderUserID,
		}
		if info.Email != "" {
			user.Email = &info.Email
		}
		if info.ProfileImage != "" {
			user.ProfileImage = &info.ProfileImage
		}
		if err := s.users.Create(user); err != nil {
			// Two callbacks for the same new identity can race; the
			// unique index picks one winner and the loser signs in to
			// the row the winner created.
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, "", fmt.Errorf("failed to create federated user: %w", err)
			}
			if user, err = s.users.FindByProviderID(info.Provider, info.ProviderUserID); err != nil {
				return nil, "", fmt.Errorf("failed to resolve federated user: %w", err)
			}
		} else {
			slog.Info("federated user created", "provider", info.Provider, "user_id", user.ID)
		}

	default:
		return nil, "", fmt.Errorf("provider lookup failed: %w", err)
	}

	tok, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, tok, nil
}

// Profile returns the caller's own record. The id must come from
// verified token claims, never from client input.
func (s *AuthService) Profile(id uint) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return user, nil
}

// UpdateProfile applies only the fields present in the request and
// returns the updated record.
func (s *AuthService) UpdateProfile(id uint, req *dto.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.Nickname != nil {
		if strings.TrimSpace(*req.Nickname) == "" {
			return nil, errors.New("nickname cannot be empty")
		}
		fields["nickname"] = *req.Nickname
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.ProfileImage != nil {
		fields["profile_image"] = *req.ProfileImage
	}

	user, err := s.users.UpdateFields(id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("profile update failed: %w", err)
	}
	return user, nil
}
