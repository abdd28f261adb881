package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"noticeboard/internal/logger"
	"noticeboard/internal/middleware"
	"noticeboard/internal/services"
	"noticeboard/internal/utils/helpers"

	"go.uber.org/zap"
)

type InviteHandler struct {
	inviteService *services.InviteService
}

func NewInviteHandler(inviteService *services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

type issueInviteRequest struct {
	Email     string `json:"email"`
	CreatedBy string `json:"createdBy"`
}

// Issue godoc
// @Summary Создание ссылки-приглашения администратора
// @Tags invite
// @Accept json
// @Produce json
// @Param input body issueInviteRequest true "Email приглашаемого и автор"
// @Success 201 {object} map[string]string
// @Failure 400 {string} string "Ошибка валидации"
// @Security ApiKeyAuth
// @Router /api/invite [post]
func (h *InviteHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("Ошибка декодирования JSON в Issue", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	// Автор берётся из тела, при его отсутствии — из сессии.
	if req.CreatedBy == "" {
		req.CreatedBy, _ = r.Context().Value(middleware.ContextUserID).(string)
	}

	_, link, err := h.inviteService.Issue(r.Context(), req.Email, req.CreatedBy)
	if err != nil {
		if errors.Is(err, services.ErrInviteFieldsMissing) {
			helpers.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Log.Error("Ошибка создания приглашения", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка создания приглашения")
		return
	}

	helpers.JSON(w, http.StatusCreated, map[string]string{"inviteLink": link})
}

// Validate godoc
// @Summary Проверка токена приглашения
// @Tags invite
// @Produce json
// @Param token query string true "Токен приглашения"
// @Success 200 {object} services.ValidationResult
// @Router /api/invite/validate [get]
func (h *InviteHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	result, err := h.inviteService.Validate(r.Context(), token)
	if err != nil {
		logger.Log.Error("Ошибка проверки приглашения", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка проверки приглашения")
		return
	}
	helpers.JSON(w, http.StatusOK, result)
}

// Consume godoc
// @Summary Погашение токена приглашения (одноразовое)
// @Tags invite
// @Accept json
// @Produce json
// @Success 200 {string} string "Приглашение использовано"
// @Failure 400 {string} string "Токен недействителен, истёк или уже использован"
// @Router /api/invite/validate [post]
func (h *InviteHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		helpers.Error(w, http.StatusBadRequest, "Токен не передан")
		return
	}

	if err := h.inviteService.Consume(r.Context(), req.Token); err != nil {
		switch {
		case errors.Is(err, services.ErrInviteInvalid),
			errors.Is(err, services.ErrInviteUsed),
			errors.Is(err, services.ErrInviteExpired):
			helpers.Error(w, http.StatusBadRequest, err.Error())
		default:
			logger.Log.Error("Ошибка погашения приглашения", zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "Ошибка погашения приглашения")
		}
		return
	}

	helpers.JSON(w, http.StatusOK, "Приглашение использовано")
}
