package repository

import (
	"mariadbpaas/config"
	"mariadbpaas/models"

	"gorm.io/gorm"
)

// DbMemberRepository provides data access for database memberships.
type DbMemberRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.DbMember, error)
	GetByDbAndUser(tx *gorm.DB, dbID, userID uint) (*models.DbMember, error)
	GetAllByDb(tx *gorm.DB, dbID uint) ([]models.DbMember, error)
	GetAllByUser(tx *gorm.DB, userID uint) ([]models.DbMember, error)
	ExistsByDbAndUser(tx *gorm.DB, dbID, userID uint) (bool, error)
	Create(tx *gorm.DB, member *models.DbMember) error
	Save(tx *gorm.DB, member *models.DbMember) error
	Delete(tx *gorm.DB, member *models.DbMember) error
	DeleteAllByDb(tx *gorm.DB, dbID uint) error
}

type dbMemberRepository struct {
	db *gorm.DB
}

// NewDbMemberRepository creates a new membership repository instance.
func NewDbMemberRepository() DbMemberRepository {
	return &dbMemberRepository{
		db: config.DB,
	}
}

func (r *dbMemberRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dbMemberRepository) GetByID(tx *gorm.DB, id uint) (*models.DbMember, error) {
	var member models.DbMember
	if err := r.conn(tx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *dbMemberRepository) GetByDbAndUser(tx *gorm.DB, dbID, userID uint) (*models.DbMember, error) {
	var member models.DbMember
	if err := r.conn(tx).Where("db_id = ? AND user_id = ?", dbID, userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *dbMemberRepository) GetAllByDb(tx *gorm.DB, dbID uint) ([]models.DbMember, error) {
	var members []models.DbMember
	if err := r.conn(tx).Where("db_id = ?", dbID).Order("created_at asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *dbMemberRepository) GetAllByUser(tx *gorm.DB, userID uint) ([]models.DbMember, error) {
	var members []models.DbMember
	if err := r.conn(tx).Where("user_id = ?", userID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *dbMemberRepository) ExistsByDbAndUser(tx *gorm.DB, dbID, userID uint) (bool, error) {
	var count int64
	if err := r.conn(tx).Model(&models.DbMember{}).
		Where("db_id = ? AND user_id = ?", dbID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *dbMemberRepository) Create(tx *gorm.DB, member *models.DbMember) error {
	return r.conn(tx).Create(member).Error
}

func (r *dbMemberRepository) Save(tx *gorm.DB, member *models.DbMember) error {
	return r.conn(tx).Save(member).Error
}

func (r *dbMemberRepository) Delete(tx *gorm.DB, member *models.DbMember) error {
	return r.conn(tx).Delete(member).Error
}

func (r *dbMemberRepository) DeleteAllByDb(tx *gorm.DB, dbID uint) error {
	return r.conn(tx).Where("db_id = ?", dbID).Delete(&models.DbMember{}).Error
}
