package models

import "time"

// ProviderToken stores the OAuth credentials of an external provider account.
type ProviderToken struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Provider     string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_account" json:"provider"`
	AccountID    string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_account" json:"account_id"`
	AccessToken  string     `gorm:"type:text;not null" json:"-"`
	RefreshToken string     `gorm:"type:text" json:"-"`
	TokenType    string     `gorm:"type:varchar(50)" json:"token_type"`
	Expiry       *time.Time `json:"expiry"`
	Scopes       string     `gorm:"type:text" json:"scopes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
