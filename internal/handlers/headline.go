package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"noticeboard/internal/logger"
	"noticeboard/internal/middleware"
	"noticeboard/internal/models"
	"noticeboard/internal/services"
	"noticeboard/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type HeadlineHandler struct {
	svc *services.HeadlineService
}

func NewHeadlineHandler(svc *services.HeadlineService) *HeadlineHandler {
	return &HeadlineHandler{svc: svc}
}

// PublicHeadlines godoc
// @Summary Публичная лента объявлений (курсорная пагинация)
// @Tags headlines
// @Produce json
// @Param cursor query string false "published_date последнего полученного объявления (RFC3339)"
// @Param limit query int false "Размер страницы (по умолчанию 10)"
// @Success 200 {object} models.FeedPage
// @Failure 500 {string} string "Ошибка выборки"
// @Router /api/headlines/public [get]
func (h *HeadlineHandler) PublicHeadlines(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	limit := parsePositiveInt(r.URL.Query().Get("limit"), services.DefaultPageLimit)

	var cursor *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			log.Warn("Лента: некорректный курсор", zap.String("cursor", raw))
			helpers.Error(w, http.StatusBadRequest, "Некорректный курсор")
			return
		}
		cursor = &t
	}

	page, err := h.svc.Feed(r.Context(), cursor, limit)
	if err != nil {
		log.Error("Лента: ошибка получения страницы", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка выборки объявлений")
		return
	}

	helpers.JSON(w, http.StatusOK, page)
}

// AdminHeadlines godoc
// @Summary Админская выборка объявлений (офсетная пагинация, фильтры, поиск)
// @Tags admin-headlines
// @Security ApiKeyAuth
// @Produce json
// @Param id query string false "ID объявления — остальные фильтры игнорируются"
// @Param status query string false "DRAFT|PUBLISHED|CANCELLED|ALL"
// @Param page query int false "Номер страницы (по умолчанию 1)"
// @Param limit query int false "Размер страницы (по умолчанию 10)"
// @Param search query string false "Подстрока в заголовке или описании"
// @Success 200 {object} models.AdminHeadlinesResponse
// @Failure 400 {string} string "Недопустимый статус"
// @Failure 404 {string} string "Не найдено"
// @Router /api/headlines/admin [get]
func (h *HeadlineHandler) AdminHeadlines(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	q := r.URL.Query()

	status := strings.TrimSpace(q.Get("status"))
	if status != "" && !strings.EqualFold(status, "ALL") && !models.IsValidStatus(status) {
		log.Warn("Админ-выборка: недопустимый статус", zap.String("status", status))
		helpers.Error(w, http.StatusBadRequest, "Недопустимый статус")
		return
	}

	search := q.Get("search")
	if search == "" {
		search = q.Get("query")
	}

	params := services.AdminQueryParams{
		ID:     strings.TrimSpace(q.Get("id")),
		Status: status,
		Search: search,
		Page:   parsePositiveInt(q.Get("page"), 1),
		Limit:  parsePositiveInt(q.Get("limit"), services.DefaultPageLimit),
	}

	resp, err := h.svc.AdminQuery(r.Context(), params)
	if err != nil {
		if errors.Is(err, services.ErrHeadlineNotFound) {
			helpers.Error(w, http.StatusNotFound, "Объявление не найдено")
			return
		}
		log.Error("Админ-выборка: ошибка", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка выборки объявлений")
		return
	}

	helpers.JSON(w, http.StatusOK, resp)
}

// GetHeadline godoc
// @Summary Получить объявление по ID
// @Tags headlines
// @Produce json
// @Param id path string true "ID объявления"
// @Success 200 {object} models.Headline
// @Failure 404 {string} string "Не найдено"
// @Router /api/headlines/{id} [get]
func (h *HeadlineHandler) GetHeadline(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	headline, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Объявление не найдено", zap.String("headline_id", id))
		helpers.Error(w, http.StatusNotFound, "Объявление не найдено")
		return
	}

	helpers.JSON(w, http.StatusOK, headline)
}

// CreateHeadline godoc
// @Summary Создать объявление (только admin)
// @Tags admin-headlines
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.CreateHeadlineRequest true "Данные объявления"
// @Success 201 {object} models.Headline
// @Failure 400 {string} string "Ошибка валидации"
// @Router /api/headlines [post]
func (h *HeadlineHandler) CreateHeadline(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req models.CreateHeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный JSON при создании объявления", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	userID, _ := r.Context().Value(middleware.ContextUserID).(string)

	headline, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		if isValidationError(err) {
			helpers.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("Ошибка создания объявления", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка создания объявления")
		return
	}

	helpers.JSON(w, http.StatusCreated, headline)
}

// UpdateHeadline godoc
// @Summary Обновить объявление (только admin)
// @Tags admin-headlines
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "ID объявления"
// @Param input body models.UpdateHeadlineRequest true "Изменяемые поля"
// @Success 200 {object} models.Headline
// @Failure 400 {string} string "Ошибка валидации"
// @Failure 404 {string} string "Не найдено"
// @Router /api/headlines/{id} [put]
func (h *HeadlineHandler) UpdateHeadline(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	id := mux.Vars(r)["id"]

	var req models.UpdateHeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный JSON при обновлении объявления", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	userID, _ := r.Context().Value(middleware.ContextUserID).(string)

	headline, err := h.svc.Update(r.Context(), id, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrHeadlineNotFound):
			helpers.Error(w, http.StatusNotFound, "Объявление не найдено")
		case isValidationError(err):
			helpers.Error(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("Ошибка обновления объявления", zap.String("headline_id", id), zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "Ошибка обновления объявления")
		}
		return
	}

	helpers.JSON(w, http.StatusOK, headline)
}

// DeleteHeadline godoc
// @Summary Удалить объявление вместе с файлами (только admin)
// @Tags admin-headlines
// @Security ApiKeyAuth
// @Param id path string true "ID объявления"
// @Success 200 {string} string "Удалено"
// @Failure 404 {string} string "Не найдено"
// @Router /api/headlines/{id} [delete]
func (h *HeadlineHandler) DeleteHeadline(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrHeadlineNotFound) {
			helpers.Error(w, http.StatusNotFound, "Объявление не найдено")
			return
		}
		log.Error("Ошибка удаления объявления", zap.String("headline_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка удаления объявления")
		return
	}

	helpers.JSON(w, http.StatusOK, "Удалено")
}

// parsePositiveInt возвращает значение по умолчанию для пустого,
// нечислового или неположительного ввода — некорректный параметр
// пагинации не должен ронять запрос.
func parsePositiveInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func isValidationError(err error) bool {
	return errors.Is(err, services.ErrEmptyTitle) ||
		errors.Is(err, services.ErrEmptyDescription) ||
		errors.Is(err, services.ErrInvalidStatus)
}
