package repository

import (
	"mariadbpaas/config"
	"mariadbpaas/models"

	"gorm.io/gorm"
)

// BackupRepository provides data access for backup metadata.
type BackupRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Backup, error)
	GetByDbAndID(tx *gorm.DB, dbID, id uint) (*models.Backup, error)
	GetByDbPaged(tx *gorm.DB, dbID uint, offset, limit int) ([]models.Backup, error)
	CountByDb(tx *gorm.DB, dbID uint) (int64, error)
	Create(tx *gorm.DB, backup *models.Backup) error
	Delete(tx *gorm.DB, backup *models.Backup) error
	DeleteAllByDb(tx *gorm.DB, dbID uint) error
}

type backupRepository struct {
	db *gorm.DB
}

// NewBackupRepository creates a new backup metadata repository instance.
func NewBackupRepository() BackupRepository {
	return &backupRepository{
		db: config.DB,
	}
}

func (r *backupRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *backupRepository) GetByID(tx *gorm.DB, id uint) (*models.Backup, error) {
	var backup models.Backup
	if err := r.conn(tx).Where("id = ?", id).First(&backup).Error; err != nil {
		return nil, err
	}
	return &backup, nil
}

func (r *backupRepository) GetByDbAndID(tx *gorm.DB, dbID, id uint) (*models.Backup, error) {
	var backup models.Backup
	if err := r.conn(tx).Where("db_id = ? AND id = ?", dbID, id).First(&backup).Error; err != nil {
		return nil, err
	}
	return &backup, nil
}

func (r *backupRepository) GetByDbPaged(tx *gorm.DB, dbID uint, offset, limit int) ([]models.Backup, error) {
	var backups []models.Backup
	if err := r.conn(tx).Where("db_id = ?", dbID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&backups).Error; err != nil {
		return nil, err
	}
	return backups, nil
}

func (r *backupRepository) CountByDb(tx *gorm.DB, dbID uint) (int64, error) {
	var count int64
	if err := r.conn(tx).Model(&models.Backup{}).Where("db_id = ?", dbID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *backupRepository) Create(tx *gorm.DB, backup *models.Backup) error {
	return r.conn(tx).Create(backup).Error
}

func (r *backupRepository) Delete(tx *gorm.DB, backup *models.Backup) error {
	return r.conn(tx).Delete(backup).Error
}

func (r *backupRepository) DeleteAllByDb(tx *gorm.DB, dbID uint) error {
	return r.conn(tx).Where("db_id = ?", dbID).Delete(&models.Backup{}).Error
}
