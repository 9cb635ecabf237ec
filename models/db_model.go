package models

import "time"

// Db is the control-plane record of one physical tenant database.
// Hostname and port are captured when the database is provisioned and are
// not re-resolved afterwards; the record only exists if the physical
// CREATE DATABASE already succeeded.
type Db struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	ProjectID uint      `gorm:"column:project_id" json:"projectId"`
	Name      string    `gorm:"column:name;unique" json:"name" validate:"required"`
	Hostname  string    `gorm:"column:hostname" json:"hostname"`
	Port      int       `gorm:"column:port" json:"port"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the static table name for GORM.
func (Db) TableName() string {
	return "dbs"
}

// DbCreateRequest is the payload for provisioning a new tenant database.
// The name becomes a physical schema name, so it is pattern restricted.
type DbCreateRequest struct {
	ProjectID uint   `json:"projectId" validate:"required"`
	Name      string `json:"name" validate:"required,min=1,max=48"`
}

// CredentialInfo is returned once at creation time (and to the credential's
// own holder on demand); it is the tenant database login, not the platform one.
type CredentialInfo struct {
	Hostname         string `json:"hostname"`
	Port             int    `json:"port"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	ConnectionString string `json:"connectionString"`
}

// DbResponse is the API view of a managed database.
type DbResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	ProjectID   uint            `json:"projectId,omitempty"`
	ProjectName string          `json:"projectName,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Credential  *CredentialInfo `json:"credential,omitempty"`
}
