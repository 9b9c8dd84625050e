// internal/services/auth_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/config"
	"github.com/shopdesk/crm-backend/internal/models"
	"github.com/shopdesk/crm-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db   *gorm.DB
	auth *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cfg := testConfig()
	cfg.JWT = config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1}
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	suite.auth = NewAuthService(suite.db, cfg)
}

func (suite *AuthServiceTestSuite) TestRegisterIssuesToken() {
	resp, err := suite.auth.Register(&RegisterRequest{
		Username: "cashier_1",
		Email:    "cashier@example.com",
		Password: "secret123",
	})
	suite.Require().NoError(err)

	suite.NotEmpty(resp.AccessToken)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal(models.UserRoleUser, resp.User.Role)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(resp.User.ID, claims.UserID)
	suite.Equal("cashier_1", claims.Username)
	suite.Equal(string(models.UserRoleUser), claims.Role)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicates() {
	_, err := suite.auth.Register(&RegisterRequest{
		Username: "cashier_1", Email: "cashier@example.com", Password: "secret123",
	})
	suite.Require().NoError(err)

	_, err = suite.auth.Register(&RegisterRequest{
		Username: "cashier_1", Email: "other@example.com", Password: "secret123",
	})
	suite.Require().Error(err)

	_, err = suite.auth.Register(&RegisterRequest{
		Username: "cashier_2", Email: "cashier@example.com", Password: "secret123",
	})
	suite.Require().Error(err)
}

func (suite *AuthServiceTestSuite) TestRegisterValidation() {
	// Short password.
	_, err := suite.auth.Register(&RegisterRequest{
		Username: "cashier_1", Email: "cashier@example.com", Password: "short",
	})
	suite.Require().Error(err)

	// Username with spaces.
	_, err = suite.auth.Register(&RegisterRequest{
		Username: "bad user", Email: "cashier@example.com", Password: "secret123",
	})
	suite.Require().Error(err)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	_, err := suite.auth.Register(&RegisterRequest{
		Username: "cashier_1", Email: "cashier@example.com", Password: "secret123",
	})
	suite.Require().NoError(err)

	resp, err := suite.auth.Login(&LoginRequest{Username: "cashier_1", Password: "secret123"})
	suite.Require().NoError(err)
	suite.NotEmpty(resp.AccessToken)
	suite.NotNil(resp.User.LastLoginAt)

	_, err = suite.auth.Login(&LoginRequest{Username: "cashier_1", Password: "wrong"})
	suite.Require().Error(err)

	_, err = suite.auth.Login(&LoginRequest{Username: "nobody", Password: "secret123"})
	suite.Require().Error(err)
}

func (suite *AuthServiceTestSuite) TestPasswordHashNeverStoredPlain() {
	resp, err := suite.auth.Register(&RegisterRequest{
		Username: "cashier_1", Email: "cashier@example.com", Password: "secret123",
	})
	suite.Require().NoError(err)

	var user models.User
	suite.Require().NoError(suite.db.First(&user, resp.User.ID).Error)
	suite.NotEqual("secret123", user.PasswordHash)
	suite.NoError(user.CheckPassword("secret123"))
	suite.Error(user.CheckPassword("secret124"))
}

func (suite *AuthServiceTestSuite) TestGetUserNotFound() {
	_, err := suite.auth.GetUser(999)
	suite.True(errors.Is(err, ErrUserNotFound))
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
