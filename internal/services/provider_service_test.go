package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/repository"
	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ProviderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProviderService
}

func (suite *ProviderServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(suite.db.AutoMigrate(&models.ProviderToken{}))
	suite.service = NewProviderService(repository.NewTokenRepository(suite.db))
}

func (suite *ProviderServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProviderServiceTestSuite) TestStatus_NotConnected() {
	status, err := suite.service.Status(constants.ProviderGoogle)
	suite.Require().NoError(err)
	suite.False(status.Connected)
	suite.Empty(status.AccountID)

	_, err = suite.service.Token(constants.ProviderGoogle)
	suite.ErrorIs(err, ErrProviderNotConnected)
	suite.Equal(KindNotFound, KindOf(err))
}

func (suite *ProviderServiceTestSuite) TestSaveToken_Valid() {
	_, err := suite.service.SaveToken(constants.ProviderGoogle, "me@example.com", &oauth2.Token{
		AccessToken: "access",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}, []string{"gmail.readonly", "calendar"})
	suite.Require().NoError(err)

	status, err := suite.service.Status(constants.ProviderGoogle)
	suite.Require().NoError(err)
	suite.True(status.Connected)
	suite.Equal("me@example.com", status.AccountID)
	suite.Equal([]string{"gmail.readonly", "calendar"}, status.Scopes)

	tok, err := suite.service.Token(constants.ProviderGoogle)
	suite.Require().NoError(err)
	suite.Equal("access", tok.AccessToken)
}

func (suite *ProviderServiceTestSuite) TestSaveToken_KeepsRefreshToken() {
	_, err := suite.service.SaveToken(constants.ProviderGoogle, "me@example.com", &oauth2.Token{
		AccessToken:  "first",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}, nil)
	suite.Require().NoError(err)

	status, err := suite.service.Status(constants.ProviderGoogle)
	suite.Require().NoError(err)
	suite.True(status.Connected, "expired access token with refresh token counts as connected")
	suite.True(status.HasRefreshToken)

	_, err = suite.service.SaveToken(constants.ProviderGoogle, "me@example.com", &oauth2.Token{
		AccessToken: "second",
		Expiry:      time.Now().Add(-time.Minute),
	}, nil)
	suite.Require().NoError(err)

	tok, err := suite.service.Token(constants.ProviderGoogle)
	suite.Require().NoError(err)
	suite.Equal("second", tok.AccessToken)
	suite.Equal("refresh", tok.RefreshToken)

	var count int64
	suite.db.Model(&models.ProviderToken{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *ProviderServiceTestSuite) TestStatus_ExpiredWithoutRefresh() {
	_, err := suite.service.SaveToken(constants.ProviderGoogle, "me@example.com", &oauth2.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	}, nil)
	suite.Require().NoError(err)

	status, err := suite.service.Status(constants.ProviderGoogle)
	suite.Require().NoError(err)
	suite.False(status.Connected)
}

func (suite *ProviderServiceTestSuite) TestSaveToken_Validation() {
	_, err := suite.service.SaveToken("", "a", &oauth2.Token{AccessToken: "x"}, nil)
	suite.ErrorIs(err, ErrProviderRequired)

	_, err = suite.service.SaveToken(constants.ProviderGoogle, "a", &oauth2.Token{}, nil)
	suite.ErrorIs(err, ErrAccessTokenRequired)
	suite.Equal(KindValidation, KindOf(err))
}

func TestProviderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderServiceTestSuite))
}
