package repository

import (
	"mariadbpaas/config"
	"mariadbpaas/models"

	"gorm.io/gorm"
)

// UserRepository provides data access for platform accounts.
type UserRepository interface {
	GetByUsername(tx *gorm.DB, username string) (*models.User, error)
	GetByID(tx *gorm.DB, id uint) (*models.User, error)
	ExistsByUsername(tx *gorm.DB, username string) (bool, error)
	ExistsByEmail(tx *gorm.DB, email string) (bool, error)
	Create(tx *gorm.DB, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance.
func NewUserRepository() UserRepository {
	return &userRepository{
		db: config.DB,
	}
}

func (r *userRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepository) GetByUsername(tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := r.conn(tx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := r.conn(tx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(tx *gorm.DB, username string) (bool, error) {
	var count int64
	if err := r.conn(tx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) ExistsByEmail(tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := r.conn(tx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) Create(tx *gorm.DB, user *models.User) error {
	return r.conn(tx).Create(user).Error
}
