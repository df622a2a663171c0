package services

import (
	"errors"
	"strings"
	"time"

	"taskflow/backend/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrDuplicateEmail = errors.New("email already exists")

type RegistrationRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
}

type RegisterService interface {
	RegisterUser(req RegistrationRequest) (*models.User, error)
}

type RegisterServiceImpl struct {
	db *gorm.DB
}

func NewRegisterService(db *gorm.DB) *RegisterServiceImpl {
	return &RegisterServiceImpl{db: db}
}

func (s *RegisterServiceImpl) RegisterUser(req RegistrationRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	user := models.User{
		ID:        id,
		Email:     email,
		Password:  string(hashedPassword),
		Name:      &name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
