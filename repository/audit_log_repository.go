package repository

import (
	"mariadbpaas/config"
	"mariadbpaas/models"

	"gorm.io/gorm"
)

// AuditLogRepository provides data access for recorded audit events.
type AuditLogRepository interface {
	Create(tx *gorm.DB, entry *models.AuditLog) error
	GetByDbPaged(tx *gorm.DB, dbID uint, offset, limit int) ([]models.AuditLog, error)
	CountByDb(tx *gorm.DB, dbID uint) (int64, error)
	DeleteAllByDb(tx *gorm.DB, dbID uint) error
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance.
func NewAuditLogRepository() AuditLogRepository {
	return &auditLogRepository{
		db: config.DB,
	}
}

func (r *auditLogRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *auditLogRepository) Create(tx *gorm.DB, entry *models.AuditLog) error {
	return r.conn(tx).Create(entry).Error
}

func (r *auditLogRepository) GetByDbPaged(tx *gorm.DB, dbID uint, offset, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := r.conn(tx).Where("db_id = ?", dbID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *auditLogRepository) CountByDb(tx *gorm.DB, dbID uint) (int64, error) {
	var count int64
	if err := r.conn(tx).Model(&models.AuditLog{}).Where("db_id = ?", dbID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *auditLogRepository) DeleteAllByDb(tx *gorm.DB, dbID uint) error {
	return r.conn(tx).Where("db_id = ?", dbID).Delete(&models.AuditLog{}).Error
}
