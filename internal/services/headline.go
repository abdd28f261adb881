package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"noticeboard/internal/logger"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// DefaultPageLimit — размер страницы по умолчанию для ленты и админской выборки.
const DefaultPageLimit = 10

var (
	ErrEmptyTitle       = errors.New("заголовок не может быть пустым")
	ErrEmptyDescription = errors.New("описание не может быть пустым")
	ErrInvalidStatus    = errors.New("недопустимый статус объявления")
	ErrHeadlineNotFound = errors.New("объявление не найдено")
)

// ObjectStorage — та часть хранилища, что нужна сервису объявлений:
// компенсационное удаление объектов после удаления записи.
type ObjectStorage interface {
	DeleteByURL(ctx context.Context, url string) error
}

type HeadlineService struct {
	repo    repository.HeadlineRepo
	storage ObjectStorage
	policy  *bluemonday.Policy
}

func NewHeadlineService(repo repository.HeadlineRepo, storage ObjectStorage) *HeadlineService {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	return &HeadlineService{repo: repo, storage: storage, policy: p}
}

// Feed возвращает страницу опубликованных объявлений по курсору published_date.
// Выбирается limit+1 записей: лишняя показывает, есть ли продолжение,
// отдельный COUNT не нужен.
func (s *HeadlineService) Feed(ctx context.Context, cursor *time.Time, limit int) (*models.FeedPage, error) {
	log := logger.WithCtx(ctx)
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	log.Debug("Лента: запрос страницы",
		zap.Int("limit", limit),
		zap.Bool("has_cursor", cursor != nil),
	)

	items, err := s.repo.ListPublished(ctx, cursor, limit+1)
	if err != nil {
		log.Error("Лента: ошибка выборки (repo)", zap.Error(err))
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	if items == nil {
		items = []*models.Headline{}
	}

	var nextCursor *time.Time
	if hasMore {
		nextCursor = items[len(items)-1].PublishedDate
	}

	log.Debug("Лента: страница получена",
		zap.Int("count", len(items)),
		zap.Bool("has_more", hasMore),
	)
	return &models.FeedPage{Headlines: items, NextCursor: nextCursor, HasMore: hasMore}, nil
}

// AdminQueryParams — уже распарсенные параметры админской выборки.
type AdminQueryParams struct {
	ID     string
	Status string
	Search string
	Page   int
	Limit  int
}

// AdminQuery: при непустом ID остальные фильтры игнорируются, запись
// возвращается одноэлементным списком. Иначе — фильтр по статусу (кроме ALL),
// подстрочный поиск по title/description и офсетная пагинация.
func (s *HeadlineService) AdminQuery(ctx context.Context, p AdminQueryParams) (*models.AdminHeadlinesResponse, error) {
	log := logger.WithCtx(ctx)

	if p.ID != "" {
		h, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			log.Warn("Админ-выборка: объявление не найдено", zap.String("headline_id", p.ID), zap.Error(err))
			return nil, ErrHeadlineNotFound
		}
		return &models.AdminHeadlinesResponse{Headlines: []*models.Headline{h}}, nil
	}

	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}

	status := strings.TrimSpace(p.Status)
	if strings.EqualFold(status, "ALL") {
		status = ""
	}
	search := strings.TrimSpace(p.Search)

	log.Debug("Админ-выборка объявлений",
		zap.String("status", status),
		zap.Int("search_len", len(search)),
		zap.Int("page", p.Page),
		zap.Int("limit", p.Limit),
	)

	offset := (p.Page - 1) * p.Limit
	items, total, err := s.repo.ListAdmin(ctx, status, search, p.Limit, offset)
	if err != nil {
		log.Error("Админ-выборка: ошибка (repo)", zap.Error(err))
		return nil, err
	}
	if items == nil {
		items = []*models.Headline{}
	}

	return &models.AdminHeadlinesResponse{
		Headlines: items,
		Pagination: &models.Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(p.Limit))),
		},
	}, nil
}

func (s *HeadlineService) GetByID(ctx context.Context, id string) (*models.Headline, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.WithCtx(ctx).Warn("Объявление не найдено (repo)", zap.String("headline_id", id), zap.Error(err))
		return nil, ErrHeadlineNotFound
	}
	return h, nil
}

func (s *HeadlineService) Create(ctx context.Context, userID string, req models.CreateHeadlineRequest) (*models.Headline, error) {
	log := logger.WithCtx(ctx)

	title := strings.TrimSpace(req.Title)
	if utf8.RuneCountInString(title) == 0 {
		log.Warn("Валидация не пройдена: заголовок пуст")
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(req.Description) == "" {
		log.Warn("Валидация не пройдена: описание пусто")
		return nil, ErrEmptyDescription
	}

	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !models.IsValidStatus(status) {
		log.Warn("Валидация не пройдена: статус", zap.String("status", status))
		return nil, ErrInvalidStatus
	}

	now := time.Now().UTC()
	h := &models.Headline{
		ID:              uuid.New().String(),
		Title:           title,
		Description:     s.policy.Sanitize(req.Description),
		CoverImageURL:   req.CoverImageURL,
		Files:           req.Files,
		Status:          status,
		AutoPublishDate: req.AutoPublishDate,
		CreatedDate:     now,
		CreatedBy:       userID,
		ModifiedDate:    now,
		ModifiedBy:      userID,
	}
	if status == models.StatusPublished {
		h.PublishedDate = &now
		h.PublishedBy = &userID
	}

	created, err := s.repo.Create(ctx, h)
	if err != nil {
		log.Error("Ошибка создания объявления (repo)", zap.Error(err))
		return nil, err
	}

	log.Info("Объявление создано",
		zap.String("headline_id", created.ID),
		zap.String("status", created.Status),
	)
	return created, nil
}

// Update — частичное обновление. Текущий статус читается непосредственно перед
// записью; параллельный писатель может успеть между чтением и записью —
// известная, принятая гонка (last-write-wins на уровне хранилища).
func (s *HeadlineService) Update(ctx context.Context, id, userID string, req models.UpdateHeadlineRequest) (*models.Headline, error) {
	log := logger.WithCtx(ctx)

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Warn("Объявление для обновления не найдено (repo)", zap.String("headline_id", id), zap.Error(err))
		return nil, ErrHeadlineNotFound
	}
	prevStatus := h.Status

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		h.Title = title
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, ErrEmptyDescription
		}
		h.Description = s.policy.Sanitize(*req.Description)
	}
	if req.CoverImageURL != nil {
		h.CoverImageURL = req.CoverImageURL
	}
	if req.Files != nil {
		h.Files = *req.Files
	}
	if req.AutoPublishDate != nil {
		h.AutoPublishDate = req.AutoPublishDate
	}
	if req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			log.Warn("Валидация не пройдена: статус", zap.String("status", *req.Status))
			return nil, ErrInvalidStatus
		}
		h.Status = *req.Status
	}

	now := time.Now().UTC()
	h.ModifiedDate = now
	h.ModifiedBy = userID

	// published_date/published_by выставляются один раз — при первом переходе
	// в PUBLISHED; повторная публикация после отмены их не перезаписывает.
	if h.Status == models.StatusPublished && prevStatus != models.StatusPublished && h.PublishedDate == nil {
		h.PublishedDate = &now
		h.PublishedBy = &userID
	}

	if err := s.repo.Update(ctx, h); err != nil {
		log.Error("Ошибка обновления объявления (repo)", zap.String("headline_id", id), zap.Error(err))
		return nil, err
	}

	log.Info("Объявление обновлено",
		zap.String("headline_id", id),
		zap.String("status", h.Status),
	)
	return h, nil
}

// Delete удаляет запись, затем — отдельным компенсационным шагом — её объекты
// в хранилище. Неудачи удаления объектов логируются и не отменяют результат.
func (s *HeadlineService) Delete(ctx context.Context, id string) error {
	log := logger.WithCtx(ctx)

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Warn("Объявление для удаления не найдено (repo)", zap.String("headline_id", id), zap.Error(err))
		return ErrHeadlineNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error("Ошибка удаления объявления (repo)", zap.String("headline_id", id), zap.Error(err))
		return err
	}

	if h.CoverImageURL != nil && *h.CoverImageURL != "" {
		if err := s.storage.DeleteByURL(ctx, *h.CoverImageURL); err != nil {
			log.Warn("Не удалось удалить обложку из хранилища",
				zap.String("headline_id", id), zap.Error(err))
		}
	}
	for _, f := range h.Files {
		if err := s.storage.DeleteByURL(ctx, f.URL); err != nil {
			log.Warn("Не удалось удалить вложение из хранилища",
				zap.String("headline_id", id),
				zap.String("file", f.Name),
				zap.Error(err))
		}
	}

	log.Info("Объявление удалено", zap.String("headline_id", id))
	return nil
}
