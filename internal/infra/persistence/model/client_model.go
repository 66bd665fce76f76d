package model

import (
	"time"

	"github.com/google/uuid"
)

// ClientModel mirrors the 'clients' table. Scope is space-separated and grants
// comma-separated, the flat encodings used on the OAuth wire. Token lifetimes
// are stored in seconds.
type ClientModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name                 string    `gorm:"type:varchar(100);not null;unique"`
	ClientID             string    `gorm:"type:varchar(100);not null;unique"`
	ClientSecret         string    `gorm:"type:varchar(255);not null"`
	Scope                string    `gorm:"type:varchar(100)"`
	Grants               string    `gorm:"type:varchar(255)"`
	RedirectURIs         string    `gorm:"type:text"`
	AccessTokenLifetime  int64     `gorm:"not null;default:600"`
	RefreshTokenLifetime int64     `gorm:"not null;default:3600"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName explicitly sets the table name for GORM.
func (ClientModel) TableName() string {
	return "clients"
}
