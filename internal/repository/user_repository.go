package repository

import (
	"errors"

	"github.com/dhkim-dev/markethub-backend/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that match no user.
var ErrNotFound = errors.New("user not found")

// ErrDuplicate is returned when a unique key (username or provider
// identity) is already taken, including when two concurrent creates race.
var ErrDuplicate = errors.New("user already exists")

// UserRepository is the credential store contract. The only update
// primitive is UpdateFields, which applies exactly the columns supplied
// and leaves everything else untouched.
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByProviderID(provider, providerUserID string) (*models.User, error)
	UpdateFields(id uint, fields map[string]interface{}) (*models.User, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *gormUserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) FindByProviderID(provider, providerUserID string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "provider = ? AND provider_user_id = ?", provider, providerUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) UpdateFields(id uint, fields map[string]interface{}) (*models.User, error) {
	if len(fields) > 0 {
		result := r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindByID(id)
}
