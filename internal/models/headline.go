package models

import "time"

// Статусы объявления. Закрытое перечисление — любое другое значение
// отклоняется на границе запроса.
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusCancelled = "CANCELLED"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled:
		return true
	}
	return false
}

// HeadlineFile — вложение объявления (хранится как jsonb-массив).
type HeadlineFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type Headline struct {
	ID              string         `db:"id"                json:"id"`
	Title           string         `db:"title"             json:"title"`
	Description     string         `db:"description"       json:"description"`
	CoverImageURL   *string        `db:"cover_image_url"   json:"cover_image_url,omitempty"`
	Files           []HeadlineFile `db:"-"                 json:"files"`
	Status          string         `db:"status"            json:"status"`
	AutoPublishDate *time.Time     `db:"auto_publish_date" json:"auto_publish_date,omitempty"`
	PublishedDate   *time.Time     `db:"published_date"    json:"published_date,omitempty"`
	PublishedBy     *string        `db:"published_by"      json:"published_by,omitempty"`
	CreatedDate     time.Time      `db:"created_date"      json:"created_date"`
	CreatedBy       string         `db:"created_by"        json:"created_by"`
	ModifiedDate    time.Time      `db:"modified_date"     json:"modified_date"`
	ModifiedBy      string         `db:"modified_by"       json:"modified_by"`
}

// swagger:model CreateHeadlineRequest
type CreateHeadlineRequest struct {
	Title           string         `json:"title"       example:"Расписание экзаменов"`
	Description     string         `json:"description" example:"<p>Сессия начинается 12 января</p>"`
	CoverImageURL   *string        `json:"cover_image_url,omitempty"`
	Files           []HeadlineFile `json:"files,omitempty"`
	Status          string         `json:"status"      example:"DRAFT"`
	AutoPublishDate *time.Time     `json:"auto_publish_date,omitempty"`
}

// UpdateHeadlineRequest — частичное обновление: nil-поле не трогается.
type UpdateHeadlineRequest struct {
	Title           *string         `json:"title,omitempty"`
	Description     *string         `json:"description,omitempty"`
	CoverImageURL   *string         `json:"cover_image_url,omitempty"`
	Files           *[]HeadlineFile `json:"files,omitempty"`
	Status          *string         `json:"status,omitempty"`
	AutoPublishDate *time.Time      `json:"auto_publish_date,omitempty"`
}

// FeedPage — страница публичной ленты с курсором продолжения.
type FeedPage struct {
	Headlines  []*Headline `json:"headlines"`
	NextCursor *time.Time  `json:"nextCursor"`
	HasMore    bool        `json:"hasMore"`
}

// Pagination — метаданные офсетной пагинации админской выборки.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type AdminHeadlinesResponse struct {
	Headlines  []*Headline `json:"headlines"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
