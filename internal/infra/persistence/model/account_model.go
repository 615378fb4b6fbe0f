package model

import (
	"time"

	"github.com/google/uuid"
)

// Names of the unique indexes on the accounts table. Violations are mapped back
// to the offending field through these names.
const (
	AccountEmailIndex    = "uq_accounts_email"
	AccountUsernameIndex = "uq_accounts_username"
)

// AccountModel mirrors the 'accounts' table. IDs are generated by the service.
type AccountModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_accounts_email"`
	Username       string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_accounts_username"`
	PasswordHash   string    `gorm:"type:varchar(255);not null"`
	FirstName      string    `gorm:"type:varchar(50);not null"`
	LastName       string    `gorm:"type:varchar(50);not null"`
	Bio            string    `gorm:"type:varchar(500);not null;default:''"`
	ProfilePicture string    `gorm:"type:varchar(255);not null;default:'/default-avatar.png'"`
	Role           string    `gorm:"type:varchar(20);not null;default:'user'"`
	IsActive       bool      `gorm:"not null;default:true"`
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}
