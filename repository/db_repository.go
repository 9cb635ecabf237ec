package repository

import (
	"mariadbpaas/config"
	"mariadbpaas/models"

	"gorm.io/gorm"
)

// DbRepository provides data access for managed database records.
type DbRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Db, error)
	GetAllByProject(tx *gorm.DB, projectID uint) ([]models.Db, error)
	ExistsByName(tx *gorm.DB, name string) (bool, error)
	ExistsByProject(tx *gorm.DB, projectID uint) (bool, error)
	Create(tx *gorm.DB, db *models.Db) error
	Delete(tx *gorm.DB, db *models.Db) error
}

type dbRepository struct {
	db *gorm.DB
}

// NewDbRepository creates a new managed-database repository instance.
func NewDbRepository() DbRepository {
	return &dbRepository{
		db: config.DB,
	}
}

func (r *dbRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dbRepository) GetByID(tx *gorm.DB, id uint) (*models.Db, error) {
	var db models.Db
	if err := r.conn(tx).Where("id = ?", id).First(&db).Error; err != nil {
		return nil, err
	}
	return &db, nil
}

func (r *dbRepository) GetAllByProject(tx *gorm.DB, projectID uint) ([]models.Db, error) {
	var dbs []models.Db
	if err := r.conn(tx).Where("project_id = ?", projectID).Find(&dbs).Error; err != nil {
		return nil, err
	}
	return dbs, nil
}

func (r *dbRepository) ExistsByName(tx *gorm.DB, name string) (bool, error) {
	var count int64
	if err := r.conn(tx).Model(&models.Db{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *dbRepository) ExistsByProject(tx *gorm.DB, projectID uint) (bool, error) {
	var count int64
	if err := r.conn(tx).Model(&models.Db{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *dbRepository) Create(tx *gorm.DB, db *models.Db) error {
	return r.conn(tx).Create(db).Error
}

func (r *dbRepository) Delete(tx *gorm.DB, db *models.Db) error {
	return r.conn(tx).Delete(db).Error
}
