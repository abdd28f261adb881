package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"noticeboard/internal/logger"
	"noticeboard/internal/services"
	"noticeboard/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// CheckFirst godoc
// @Summary Проверка, настроен ли первый администратор
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/admin/check-first [get]
func (h *UserHandler) CheckFirst(w http.ResponseWriter, r *http.Request) {
	exists, err := h.authService.HasAdmins(r.Context())
	if err != nil {
		logger.Log.Error("Ошибка проверки администраторов", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка проверки администраторов")
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]bool{"hasAdmins": exists})
}

type setupRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Setup godoc
// @Summary Назначение роли при первичной настройке
// @Tags admin
// @Accept json
// @Produce json
// @Param input body setupRequest true "ID пользователя и роль"
// @Success 200 {string} string "Роль назначена"
// @Failure 400 {string} string "Недопустимая роль"
// @Router /api/admin/setup [post]
func (h *UserHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		logger.Log.Warn("Ошибка декодирования JSON в Setup")
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if err := h.authService.SetRole(r.Context(), req.UserID, req.Role); err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			helpers.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Log.Error("Ошибка первичной настройки роли", zap.String("user_id", req.UserID), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка назначения роли")
		return
	}

	logger.Log.Info("Роль назначена при первичной настройке",
		zap.String("user_id", req.UserID), zap.String("role", req.Role))
	helpers.JSON(w, http.StatusOK, "Роль назначена")
}

// ListUsers godoc
// @Summary Список пользователей
// @Tags admin
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {string} string "Ошибка получения пользователей"
// @Security ApiKeyAuth
// @Router /api/admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.GetUsers(r.Context())
	if err != nil {
		logger.Log.Error("Ошибка получения пользователей", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения пользователей")
		return
	}
	helpers.JSON(w, http.StatusOK, users)
}

// GetUser godoc
// @Summary Пользователь по ID
// @Tags admin
// @Produce json
// @Param id path string true "ID пользователя"
// @Success 200 {object} models.User
// @Failure 404 {string} string "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /api/admin/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "Пользователь не найден")
		return
	}
	helpers.JSON(w, http.StatusOK, user)
}

// SetRole godoc
// @Summary Смена роли пользователя
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "ID пользователя"
// @Success 200 {string} string "Роль обновлена"
// @Failure 400 {string} string "Недопустимая роль"
// @Security ApiKeyAuth
// @Router /api/users/{id}/role [put]
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if err := h.authService.SetRole(r.Context(), userID, req.Role); err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			helpers.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Log.Error("Ошибка смены роли", zap.String("user_id", userID), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка смены роли")
		return
	}

	logger.Log.Info("Роль обновлена", zap.String("user_id", userID), zap.String("role", req.Role))
	helpers.JSON(w, http.StatusOK, "Роль обновлена")
}

// DeleteUser godoc
// @Summary Удаление пользователя
// @Tags admin
// @Produce json
// @Param id path string true "ID пользователя"
// @Success 200 {string} string "Пользователь удалён"
// @Failure 500 {string} string "Ошибка удаления"
// @Security ApiKeyAuth
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	if err := h.authService.DeleteUserByID(r.Context(), userID); err != nil {
		logger.Log.Error("Ошибка удаления пользователя", zap.String("user_id", userID), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка удаления")
		return
	}

	helpers.JSON(w, http.StatusOK, "Пользователь удалён")
}
