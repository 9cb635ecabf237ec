package models

import "time"

// DbMember is the (database, user, role) relation. Exactly one row exists per
// (db, user) pair, and exactly one member per database holds OWNER.
type DbMember struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	DbID      uint      `gorm:"column:db_id;uniqueIndex:uniq_member_db_user" json:"dbId"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex:uniq_member_db_user" json:"userId"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the static table name for GORM.
func (DbMember) TableName() string {
	return "db_members"
}

// MemberAddRequest adds a platform user to a database with a role.
type MemberAddRequest struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// MemberRoleRequest changes an existing member's role.
type MemberRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// DbMemberResponse is the API view of one membership row.
type DbMemberResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
