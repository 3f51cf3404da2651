package repository

import (
	"github.com/yukikurage/column-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// Upsert creates or replaces the token of a provider account
func (r *GormTokenRepository) Upsert(token *models.ProviderToken) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "provider"}, {Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "token_type", "expiry", "scopes", "updated_at",
			}),
		}).
		Create(token).Error
}

// Latest returns the most recently updated token of a provider
func (r *GormTokenRepository) Latest(provider string) (*models.ProviderToken, error) {
	var token models.ProviderToken
	if err := r.db.Where("provider = ?", provider).
		Order("updated_at DESC, id DESC").
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}
