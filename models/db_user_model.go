package models

import "time"

// DbUser is the per-member server login for one tenant database. It is
// created and destroyed together with the matching DbMember row: a credential
// without membership (or the reverse) is an invariant violation.
type DbUser struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	DbID      uint      `gorm:"column:db_id;uniqueIndex:uniq_credential_db_user" json:"dbId"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex:uniq_credential_db_user" json:"userId"`
	Username  string    `gorm:"column:username" json:"username"`
	Password  string    `gorm:"column:password" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the static table name for GORM.
func (DbUser) TableName() string {
	return "db_users"
}
