package models

import "time"

// AuditLog is an append-only activity record. Rows are never updated; they are
// removed only when the whole database record they point to is deleted.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID    uint      `gorm:"column:user_id" json:"userId"`
	DbID      *uint     `gorm:"column:db_id" json:"dbId,omitempty"`
	Action    string    `gorm:"column:action" json:"action"`
	Details   string    `gorm:"column:details;type:text" json:"details"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the static table name for GORM.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogResponse is the API view of one audit entry.
type AuditLogResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	UserName  string    `json:"userName"`
	DbID      *uint     `json:"dbId,omitempty"`
	DbName    string    `json:"dbName,omitempty"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}
