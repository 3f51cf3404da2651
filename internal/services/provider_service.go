package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/repository"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var (
	ErrProviderNotConnected = errors.New("provider is not connected")
	ErrProviderRequired     = errors.New("provider is required")
	ErrAccessTokenRequired  = errors.New("access token is required")
)

// ProviderService stores the single user's third-party credentials.
type ProviderService struct {
	tokenRepo repository.TokenRepository
}

func NewProviderService(tokenRepo repository.TokenRepository) *ProviderService {
	return &ProviderService{tokenRepo: tokenRepo}
}

// ProviderStatus reports whether a provider can be used.
type ProviderStatus struct {
	Provider        string
	AccountID       string
	Connected       bool
	HasRefreshToken bool
	Expiry          *time.Time
	Scopes          []string
}

// SaveToken stores tok for provider and account. An empty refresh token keeps
// the one already on record.
func (s *ProviderService) SaveToken(provider, accountID string, tok *oauth2.Token, scopes []string) (*models.ProviderToken, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, ErrProviderRequired
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrAccessTokenRequired
	}

	refresh := tok.RefreshToken
	if refresh == "" {
		if existing, err := s.tokenRepo.Latest(provider); err == nil && existing.AccountID == accountID {
			refresh = existing.RefreshToken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load token: %w", err)
		}
	}

	record := &models.ProviderToken{
		Provider:     provider,
		AccountID:    accountID,
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		TokenType:    tok.TokenType,
		Scopes:       strings.Join(scopes, " "),
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC()
		record.Expiry = &expiry
	}

	if err := s.tokenRepo.Upsert(record); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	return record, nil
}

// Token returns the most recently stored credential for provider.
func (s *ProviderService) Token(provider string) (*oauth2.Token, error) {
	record, err := s.tokenRepo.Latest(provider)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotConnected
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	return toOAuthToken(record), nil
}

// Status reports a provider as connected when its access token is still
// valid or a refresh token is on record.
func (s *ProviderService) Status(provider string) (*ProviderStatus, error) {
	status := &ProviderStatus{Provider: provider}

	record, err := s.tokenRepo.Latest(provider)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status, nil
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	status.AccountID = record.AccountID
	status.Expiry = record.Expiry
	status.Scopes = strings.Fields(record.Scopes)
	status.HasRefreshToken = record.RefreshToken != ""
	status.Connected = toOAuthToken(record).Valid() || status.HasRefreshToken
	return status, nil
}

func toOAuthToken(record *models.ProviderToken) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		TokenType:    record.TokenType,
	}
	if record.Expiry != nil {
		tok.Expiry = *record.Expiry
	}
	return tok
}
