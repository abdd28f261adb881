package handlers

import (
	"errors"
	"net/http"

	"noticeboard/internal/logger"
	"noticeboard/internal/services"
	"noticeboard/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type UploadHandler struct {
	storage     *services.StorageService
	headlineSvc *services.HeadlineService
}

func NewUploadHandler(storage *services.StorageService, headlineSvc *services.HeadlineService) *UploadHandler {
	return &UploadHandler{storage: storage, headlineSvc: headlineSvc}
}

// UploadCover godoc
// @Summary Загрузить обложку объявления (только admin)
// @Tags admin-files
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "ID объявления"
// @Param file formData file true "Изображение (jpeg/png/webp/gif, до 2MB)"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Ошибка загрузки"
// @Router /api/headlines/{id}/cover [post]
func (h *UploadHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	id := mux.Vars(r)["id"]

	if _, err := h.headlineSvc.GetByID(r.Context(), id); err != nil {
		helpers.Error(w, http.StatusNotFound, "Объявление не найдено")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		log.Warn("Ошибка разбора формы при загрузке обложки", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Ошибка разбора формы")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("Файл не найден при загрузке обложки", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Файл не найден")
		return
	}
	defer file.Close()

	coverURL, err := h.storage.UploadCover(r.Context(), id, services.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		if isUploadValidationError(err) {
			helpers.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("Ошибка загрузки обложки в хранилище", zap.String("headline_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка загрузки обложки")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{"cover_image_url": coverURL})
}

// UploadAttachments godoc
// @Summary Загрузить вложения объявления (только admin)
// @Tags admin-files
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "ID объявления"
// @Param files formData file true "Файлы (до 2MB каждый, до 10MB суммарно)"
// @Success 200 {array} models.HeadlineFile
// @Failure 400 {string} string "Ошибка загрузки"
// @Router /api/headlines/{id}/attachments [post]
func (h *UploadHandler) UploadAttachments(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	id := mux.Vars(r)["id"]

	if _, err := h.headlineSvc.GetByID(r.Context(), id); err != nil {
		helpers.Error(w, http.StatusNotFound, "Объявление не найдено")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		log.Warn("Ошибка разбора формы при загрузке вложений", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Ошибка разбора формы")
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		helpers.Error(w, http.StatusBadRequest, "Файлы не найдены")
		return
	}

	var uploads []services.UploadFile
	var opened []interface{ Close() error }
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			log.Warn("Не удалось открыть файл из формы", zap.String("file", header.Filename), zap.Error(err))
			helpers.Error(w, http.StatusBadRequest, "Не удалось прочитать файл "+header.Filename)
			return
		}
		opened = append(opened, f)
		uploads = append(uploads, services.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      f,
		})
	}

	files, err := h.storage.UploadAttachments(r.Context(), id, uploads)
	if err != nil {
		if isUploadValidationError(err) {
			helpers.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("Ошибка загрузки вложений в хранилище", zap.String("headline_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка загрузки вложений")
		return
	}

	helpers.JSON(w, http.StatusOK, files)
}

const maxMultipartMemory = 10 << 20 // 10MB

func isUploadValidationError(err error) bool {
	return errors.Is(err, services.ErrFileTooLarge) ||
		errors.Is(err, services.ErrTotalTooLarge) ||
		errors.Is(err, services.ErrUnsupportedType)
}
