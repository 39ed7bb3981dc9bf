package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
	"github.com/Abeselom-bb/BatiTone/internal/domain/repository"
	apperrors "github.com/Abeselom-bb/BatiTone/internal/pkg/errors"
	"github.com/Abeselom-bb/BatiTone/pkg/auth"
)

// AuthService отвечает за регистрацию и вход. Ровно столько механики
// аутентификации, сколько нужно, чтобы у попыток был владелец: bcrypt-хеш
// пароля и краткоживущий access-токен.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register создает пользователя и возвращает его вместе с access-токеном
func (s *AuthService) Register(name, email, password, role string) (*entity.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", apperrors.ErrValidation)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	switch role {
	case "":
		role = entity.RoleStudent
	case entity.RoleStudent, entity.RoleTeacher:
	default:
		return nil, "", fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	user := &entity.User{
		Name:     name,
		Email:    email,
		Password: password, // хешируется в BeforeSave
		Role:     role,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь #%d (%s)", user.ID, user.Role)
	return user, token, nil
}

// Login проверяет учётные данные и возвращает пользователя с access-токеном.
// Неверный email и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", apperrors.ErrUnauthorized
	}
	if !user.CheckPassword(password) {
		return nil, "", apperrors.ErrUnauthorized
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// GetUser возвращает пользователя по ID
func (s *AuthService) GetUser(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}
