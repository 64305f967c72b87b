package service

import (
	"errors"
	"strings"

	"social-service/internal/models"
	"social-service/internal/repository"
	"social-service/pkg/apperrors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileService owns the user-facing profile operations: name, bio,
// avatar and password changes. The acting user always edits their own
// profile; the id comes from the token, never from the request body.
type ProfileService struct {
	users repository.UserRepository
}

func NewProfileService(users repository.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Get(userID uint) (*models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Unavailable(err, "failed to load user")
	}
	return user, nil
}

func (s *ProfileService) List() ([]models.PublicUser, error) {
	users, err := s.users.ListAll()
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list users")
	}
	return publicUsers(users), nil
}

func (s *ProfileService) Search(query string) ([]models.PublicUser, error) {
	users, err := s.users.SearchByUsername(query, 20)
	if err != nil {
		return nil, apperrors.Unavailable(err, "search failed")
	}
	return publicUsers(users), nil
}

func (s *ProfileService) UpdateName(userID uint, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.Validation("username must not be empty")
	}
	return s.update(userID, func(u *models.User) { u.Username = username })
}

// UpdateBio sets the bio; an empty string clears it.
func (s *ProfileService) UpdateBio(userID uint, bio string) (*models.User, error) {
	return s.update(userID, func(u *models.User) { u.Bio = bio })
}

// SetProfilePic stores the URL of an already-uploaded avatar object.
func (s *ProfileService) SetProfilePic(userID uint, url string) (*models.User, error) {
	if url == "" {
		return nil, apperrors.Validation("profile picture is required")
	}
	return s.update(userID, func(u *models.User) { u.ProfilePic = url })
}

// ChangePassword verifies the current password before storing the new
// hash. A wrong current password fails the same way a bad login does.
func (s *ProfileService) ChangePassword(userID uint, current, newPassword string) error {
	if len(newPassword) < 6 {
		return apperrors.Validation("password must be at least 6 characters")
	}

	user, err := s.Get(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return apperrors.Forbidden("invalid credentials")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, err, "failed to hash password")
	}

	user.Password = string(hashed)
	if err := s.users.Update(user); err != nil {
		return apperrors.Unavailable(err, "failed to update password")
	}
	return nil
}

func (s *ProfileService) update(userID uint, apply func(*models.User)) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	apply(user)
	if err := s.users.Update(user); err != nil {
		return nil, apperrors.Unavailable(err, "failed to update profile")
	}
	return user, nil
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
