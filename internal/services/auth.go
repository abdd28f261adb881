package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"noticeboard/internal/logger"
	"noticeboard/internal/models"
	"noticeboard/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	repo UserRepo
}

func NewAuthService(repo UserRepo) *AuthService {
	return &AuthService{repo: repo}
}

type UserRepo interface {
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	HasAdmins(ctx context.Context) (bool, error)
	SetRole(ctx context.Context, userID, role string) error
	DeleteUserByID(ctx context.Context, userID string) error
	SaveRefreshToken(ctx context.Context, userID string, token string) error
	IsRefreshTokenValid(ctx context.Context, userID string, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID string, token string) error
}

var ErrInvalidRole = errors.New("недопустимая роль")

func (s *AuthService) RegisterUser(ctx context.Context, email, plainPassword string) (*models.User, error) {
	logger.Log.Info("Регистрация пользователя (service)", zap.String("email", email))

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("некорректный email")
	}
	if len(plainPassword) < 8 {
		return nil, errors.New("пароль должен быть не короче 8 символов")
	}

	if exists, err := s.repo.IsEmailTaken(ctx, email); exists || err != nil {
		if err != nil {
			logger.Log.Error("Ошибка проверки email", zap.Error(err))
		}
		return nil, errors.New("адрес электронной почты уже зарегистрирован")
	}

	hashed, err := utils.HashPassword(plainPassword)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		logger.Log.Error("Ошибка создания пользователя", zap.Error(err))
		return nil, err
	}
	logger.Log.Info("Пользователь зарегистрирован (service)", zap.String("email", email))
	return user, nil
}

func (s *AuthService) LoginUser(
	ctx context.Context,
	email, password, jwtSecret string,
	accessTTL, refreshTTL time.Duration,
) (string, string, *models.User, error) {
	logger.Log.Info("Попытка входа (service)", zap.String("email", email))

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		logger.Log.Warn("Пользователь не найден (service)", zap.String("email", email), zap.Error(err))
		return "", "", nil, errors.New("пользователь не найден")
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Log.Warn("Неверный пароль (service)", zap.String("email", email))
		return "", "", nil, errors.New("неверный пароль")
	}

	accessToken, err := utils.GenerateToken(jwtSecret, user.ID, user.Role, accessTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации access-токена", zap.Error(err))
		return "", "", nil, err
	}

	refreshToken, err := utils.GenerateToken(jwtSecret, user.ID, user.Role, refreshTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации refresh-токена", zap.Error(err))
		return "", "", nil, err
	}

	if err := s.repo.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		logger.Log.Error("Ошибка сохранения refresh-токена", zap.Error(err))
		return "", "", nil, err
	}

	logger.Log.Info("Вход выполнен (service)", zap.String("email", email), zap.String("role", user.Role))
	return accessToken, refreshToken, user, nil
}

func (s *AuthService) ValidateRefreshToken(ctx context.Context, userID string, token string) (bool, error) {
	logger.Log.Debug("Проверка refresh токена (service)", zap.String("user_id", userID))
	return s.repo.IsRefreshTokenValid(ctx, userID, token)
}

func (s *AuthService) Logout(ctx context.Context, userID string, token string) error {
	logger.Log.Info("Выход пользователя (service)", zap.String("user_id", userID))
	return s.repo.DeleteRefreshToken(ctx, userID, token)
}

func (s *AuthService) GetUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по ID (service)", zap.String("user_id", id))
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logger.Log.Warn("Пользователь не найден по ID (service)", zap.String("user_id", id), zap.Error(err))
	}
	return user, err
}

func (s *AuthService) HasAdmins(ctx context.Context) (bool, error) {
	return s.repo.HasAdmins(ctx)
}

func (s *AuthService) SetRole(ctx context.Context, userID, role string) error {
	logger.Log.Info("Смена роли (service)", zap.String("user_id", userID), zap.String("role", role))
	if !models.IsValidRole(role) {
		return ErrInvalidRole
	}
	return s.repo.SetRole(ctx, userID, role)
}

func (s *AuthService) DeleteUserByID(ctx context.Context, id string) error {
	logger.Log.Info("Сервис: удаление пользователя", zap.String("user_id", id))
	err := s.repo.DeleteUserByID(ctx, id)
	if err != nil {
		logger.Log.Error("Ошибка удаления пользователя (service)", zap.String("user_id", id), zap.Error(err))
	}
	return err
}
