package repository

import (
	"mariadbpaas/config"
	"mariadbpaas/models"

	"gorm.io/gorm"
)

// ProjectRepository provides data access for projects.
type ProjectRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Project, error)
	GetByOwnerAndID(tx *gorm.DB, userID, id uint) (*models.Project, error)
	GetAllByOwner(tx *gorm.DB, userID uint) ([]models.Project, error)
	ExistsByOwnerAndName(tx *gorm.DB, userID uint, name string) (bool, error)
	CountByOwner(tx *gorm.DB, userID uint) (int64, error)
	Create(tx *gorm.DB, project *models.Project) error
	Delete(tx *gorm.DB, project *models.Project) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance.
func NewProjectRepository() ProjectRepository {
	return &projectRepository{
		db: config.DB,
	}
}

func (r *projectRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *projectRepository) GetByID(tx *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.conn(tx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) GetByOwnerAndID(tx *gorm.DB, userID, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.conn(tx).Where("user_id = ? AND id = ?", userID, id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) GetAllByOwner(tx *gorm.DB, userID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := r.conn(tx).Where("user_id = ?", userID).Order("created_at asc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ExistsByOwnerAndName(tx *gorm.DB, userID uint, name string) (bool, error) {
	var count int64
	if err := r.conn(tx).Model(&models.Project{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *projectRepository) CountByOwner(tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	if err := r.conn(tx).Model(&models.Project{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *projectRepository) Create(tx *gorm.DB, project *models.Project) error {
	return r.conn(tx).Create(project).Error
}

func (r *projectRepository) Delete(tx *gorm.DB, project *models.Project) error {
	return r.conn(tx).Delete(project).Error
}
