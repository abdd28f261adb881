package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noticeboard/internal/logger"
	"noticeboard/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInviteFieldsMissing = errors.New("требуются email и createdBy")
	ErrInviteInvalid       = errors.New("неверный токен приглашения")
	ErrInviteExpired       = errors.New("срок действия приглашения истёк")
	ErrInviteUsed          = errors.New("приглашение уже использовано")
)

// InviteRepo — хранилище одноразовых приглашений.
type InviteRepo interface {
	SaveInvite(ctx context.Context, inv *models.AdminInvite) error
	GetByToken(ctx context.Context, token string) (*models.AdminInvite, error)
	MarkUsed(ctx context.Context, token string) error
}

type InviteService struct {
	repo    InviteRepo
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewInviteService(repo InviteRepo, baseURL string, ttlDays int) *InviteService {
	if ttlDays <= 0 {
		ttlDays = 7
	}
	return &InviteService{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     time.Duration(ttlDays) * 24 * time.Hour,
		now:     time.Now,
	}
}

// Issue создаёт приглашение и возвращает ссылку активации.
func (s *InviteService) Issue(ctx context.Context, email, createdBy string) (*models.AdminInvite, string, error) {
	log := logger.WithCtx(ctx)

	email = strings.TrimSpace(email)
	createdBy = strings.TrimSpace(createdBy)
	if email == "" || createdBy == "" {
		log.Warn("Приглашение: не заполнены обязательные поля")
		return nil, "", ErrInviteFieldsMissing
	}

	now := s.now().UTC()
	inv := &models.AdminInvite{
		ID:        uuid.New().String(),
		Token:     uuid.New().String(),
		Email:     email,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.repo.SaveInvite(ctx, inv); err != nil {
		log.Error("Приглашение: ошибка сохранения (repo)", zap.Error(err))
		return nil, "", err
	}

	link := fmt.Sprintf("%s/admin-onboarding?token=%s", s.baseURL, inv.Token)
	log.Info("Приглашение создано", zap.String("email", email))
	return inv, link, nil
}

// ValidationResult — результат проверки токена. Email раскрывается только
// для действительного приглашения.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
}

// Validate: отсутствующий токен — это отрицательный результат, а не ошибка.
func (s *InviteService) Validate(ctx context.Context, token string) (*ValidationResult, error) {
	log := logger.WithCtx(ctx)

	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		log.Debug("Приглашение: токен не найден")
		return &ValidationResult{Valid: false}, nil
	}

	if !inv.IsValid(s.now()) {
		return &ValidationResult{Valid: false}, nil
	}
	return &ValidationResult{Valid: true, Email: inv.Email}, nil
}

// Consume помечает приглашение использованным. Просроченный или уже
// использованный токен отклоняется — валидность проверяется перед пометкой.
func (s *InviteService) Consume(ctx context.Context, token string) error {
	log := logger.WithCtx(ctx)

	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		log.Warn("Приглашение: токен не найден при использовании")
		return ErrInviteInvalid
	}
	if inv.Used {
		log.Warn("Приглашение: повторное использование", zap.String("email", inv.Email))
		return ErrInviteUsed
	}
	if !s.now().Before(inv.ExpiresAt) {
		log.Warn("Приглашение: истёк срок", zap.String("email", inv.Email))
		return ErrInviteExpired
	}

	if err := s.repo.MarkUsed(ctx, token); err != nil {
		log.Error("Приглашение: ошибка пометки used (repo)", zap.Error(err))
		return err
	}

	log.Info("Приглашение использовано", zap.String("email", inv.Email))
	return nil
}
