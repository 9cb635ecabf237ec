package repository

import (
	"mariadbpaas/config"

	"gorm.io/gorm"
)

// BaseRepository provides transaction management for control-plane writes
// that span multiple entities.
type BaseRepository interface {
	Begin() *gorm.DB
}

type baseRepository struct {
	db *gorm.DB
}

// NewBaseRepository creates a new base repository instance.
func NewBaseRepository() BaseRepository {
	return &baseRepository{
		db: config.DB,
	}
}

func (r *baseRepository) Begin() *gorm.DB {
	return r.db.Begin()
}
