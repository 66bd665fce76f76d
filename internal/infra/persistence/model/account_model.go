// Package model contains the GORM representations of the persisted tables.
package model

import "time"

// AccountModel mirrors the 'accounts' table.
type AccountModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"type:varchar(100);not null"`
	Phone     string `gorm:"type:varchar(30)"`
	Email     string `gorm:"type:varchar(255);uniqueIndex"`
	Scope     string `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}
