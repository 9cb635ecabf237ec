package repository

import (
	"mariadbpaas/config"
	"mariadbpaas/models"

	"gorm.io/gorm"
)

// DbUserRepository provides data access for per-database credentials.
type DbUserRepository interface {
	GetByDbAndUser(tx *gorm.DB, dbID, userID uint) (*models.DbUser, error)
	GetAllByDb(tx *gorm.DB, dbID uint) ([]models.DbUser, error)
	Create(tx *gorm.DB, dbUser *models.DbUser) error
	Delete(tx *gorm.DB, dbUser *models.DbUser) error
	DeleteAllByDb(tx *gorm.DB, dbID uint) error
}

type dbUserRepository struct {
	db *gorm.DB
}

// NewDbUserRepository creates a new credential repository instance.
func NewDbUserRepository() DbUserRepository {
	return &dbUserRepository{
		db: config.DB,
	}
}

func (r *dbUserRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dbUserRepository) GetByDbAndUser(tx *gorm.DB, dbID, userID uint) (*models.DbUser, error) {
	var dbUser models.DbUser
	if err := r.conn(tx).Where("db_id = ? AND user_id = ?", dbID, userID).First(&dbUser).Error; err != nil {
		return nil, err
	}
	return &dbUser, nil
}

func (r *dbUserRepository) GetAllByDb(tx *gorm.DB, dbID uint) ([]models.DbUser, error) {
	var dbUsers []models.DbUser
	if err := r.conn(tx).Where("db_id = ?", dbID).Find(&dbUsers).Error; err != nil {
		return nil, err
	}
	return dbUsers, nil
}

func (r *dbUserRepository) Create(tx *gorm.DB, dbUser *models.DbUser) error {
	return r.conn(tx).Create(dbUser).Error
}

func (r *dbUserRepository) Delete(tx *gorm.DB, dbUser *models.DbUser) error {
	return r.conn(tx).Delete(dbUser).Error
}

func (r *dbUserRepository) DeleteAllByDb(tx *gorm.DB, dbID uint) error {
	return r.conn(tx).Where("db_id = ?", dbID).Delete(&models.DbUser{}).Error
}
