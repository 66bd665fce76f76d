package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenModel mirrors the 'tokens' table. Both token strings carry unique
// indexes; they are the optimistic guard against issuance collisions.
type TokenModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ClientID         uuid.UUID `gorm:"type:uuid;not null"`
	AccountID        int64     `gorm:"not null"`
	Scope            string    `gorm:"type:varchar(20);not null"`
	AccessToken      string    `gorm:"type:varchar(1024);unique;not null"`
	AccessExpiresAt  time.Time `gorm:"not null"`
	RefreshToken     string    `gorm:"type:varchar(1024);unique;not null"`
	RefreshExpiresAt time.Time `gorm:"not null"`
	CreatedAt        time.Time

	Client  *ClientModel  `gorm:"foreignKey:ClientID"`
	Account *AccountModel `gorm:"foreignKey:AccountID"`
}

// TableName explicitly sets the table name for GORM.
func (TokenModel) TableName() string {
	return "tokens"
}
