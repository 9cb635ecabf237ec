package models

import "time"

// Project groups managed databases under one owning user.
// The name is unique per owner, not globally.
type Project struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex:uniq_project_owner_name" json:"userId"`
	Name      string    `gorm:"column:name;uniqueIndex:uniq_project_owner_name" json:"name" validate:"required"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the static table name for GORM.
func (Project) TableName() string {
	return "projects"
}

// ProjectCreateRequest is the payload for creating a project.
type ProjectCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}
