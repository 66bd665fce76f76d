package model

import (
	"time"

	"github.com/google/uuid"
)

// CredentialModel mirrors the 'credentials' table. Usernames are unique per
// credential type.
type CredentialModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Type       string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_credentials_type_username"`
	Username   string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_credentials_type_username"`
	SecretHash string    `gorm:"type:varchar(255)"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (CredentialModel) TableName() string {
	return "credentials"
}

// AccountCredentialModel mirrors the 'account_credentials' join table linking
// accounts to their credentials.
type AccountCredentialModel struct {
	AccountID    int64     `gorm:"primaryKey;autoIncrement:false"`
	CredentialID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountCredentialModel) TableName() string {
	return "account_credentials"
}
