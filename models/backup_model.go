package models

import "time"

// Backup records one captured dump of a tenant database. The payload itself
// lives in object storage under S3Key; this row is only metadata and is
// immutable except for deletion.
type Backup struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	DbID        uint      `gorm:"column:db_id" json:"dbId"`
	UserID      uint      `gorm:"column:user_id" json:"userId"`
	FileName    string    `gorm:"column:file_name" json:"fileName"`
	S3Key       string    `gorm:"column:s3_key" json:"s3Key"`
	FileSize    int64     `gorm:"column:file_size" json:"fileSize"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the static table name for GORM.
func (Backup) TableName() string {
	return "backups"
}

// BackupCreateRequest is the payload for triggering a backup.
type BackupCreateRequest struct {
	Description string `json:"description" validate:"max=512"`
}

// BackupResponse is the API view of one backup record.
type BackupResponse struct {
	ID          uint      `json:"id"`
	DbID        uint      `json:"dbId"`
	DbName      string    `json:"dbName"`
	UserID      uint      `json:"userId"`
	UserName    string    `json:"userName"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RestoreResult reports a best-effort SQL replay outcome.
type RestoreResult struct {
	ExecutedStatements int `json:"executedStatements"`
	FailedStatements   int `json:"failedStatements"`
}
