package services

import (
	"time"

	"taskflow/backend/internal/config"
	"taskflow/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	LoginUser(email, password string) (*models.User, error)
	GenerateToken(userID uuid.UUID) (string, string, error)
	RefreshToken(refreshToken string) (string, string, int64, error)
}

type AuthServiceImpl struct {
	db  *gorm.DB
	cfg config.AuthConfig
}

func NewAuthService(db *gorm.DB, cfg config.AuthConfig) *AuthServiceImpl {
	return &AuthServiceImpl{db: db, cfg: cfg}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, gorm.ErrInvalidData
	}
	return &user, nil
}

func (s *AuthServiceImpl) GenerateToken(userID uuid.UUID) (string, string, error) {
	accessTokenClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshTokenUUID, err := uuid.NewV4()
	if err != nil {
		return "", "", err
	}
	refreshTokenString := refreshTokenUUID.String()

	tokenID, err := uuid.NewV4()
	if err != nil {
		return "", "", err
	}

	token := models.Token{
		ID:           tokenID,
		UserID:       userID,
		RefreshToken: refreshTokenString,
		ExpiresAt:    time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := s.db.Create(&token).Error; err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}

func (s *AuthServiceImpl) RefreshToken(refreshToken string) (string, string, int64, error) {
	var token models.Token
	err := s.db.Where("refresh_token = ? AND expires_at > ?", refreshToken, time.Now()).First(&token).Error
	if err != nil {
		return "", "", 0, err
	}

	accessToken, newRefreshToken, err := s.GenerateToken(token.UserID)
	if err != nil {
		return "", "", 0, err
	}
	expiresIn := int64(s.cfg.AccessTokenTTL.Seconds())

	s.db.Delete(&token)

	return accessToken, newRefreshToken, expiresIn, nil
}
