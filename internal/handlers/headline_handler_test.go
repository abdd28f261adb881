package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"noticeboard/internal/logger"
	"noticeboard/internal/models"
	"noticeboard/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

// stubHeadlineRepo записывает параметры выборок и отдаёт заранее
// подготовленные записи.
type stubHeadlineRepo struct {
	published []*models.Headline
	byID      map[string]*models.Headline

	lastFetch  int
	lastCursor *time.Time
}

func (r *stubHeadlineRepo) Create(_ context.Context, h *models.Headline) (*models.Headline, error) {
	return h, nil
}

func (r *stubHeadlineRepo) GetByID(_ context.Context, id string) (*models.Headline, error) {
	h, ok := r.byID[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return h, nil
}

func (r *stubHeadlineRepo) Update(_ context.Context, _ *models.Headline) error { return nil }
func (r *stubHeadlineRepo) Delete(_ context.Context, _ string) error           { return nil }

func (r *stubHeadlineRepo) ListPublished(_ context.Context, cursor *time.Time, fetch int) ([]*models.Headline, error) {
	r.lastCursor = cursor
	r.lastFetch = fetch
	if len(r.published) > fetch {
		return r.published[:fetch], nil
	}
	return r.published, nil
}

func (r *stubHeadlineRepo) ListAdmin(_ context.Context, _, _ string, limit, _ int) ([]*models.Headline, int, error) {
	items := r.published
	if len(items) > limit {
		items = items[:limit]
	}
	return items, len(r.published), nil
}

func (r *stubHeadlineRepo) PublishDue(_ context.Context, _ time.Time) (int64, error) { return 0, nil }

type nopStorage struct{}

func (nopStorage) DeleteByURL(_ context.Context, _ string) error { return nil }

func newTestHandler(repo *stubHeadlineRepo) *HeadlineHandler {
	return NewHeadlineHandler(services.NewHeadlineService(repo, nopStorage{}))
}

func publishedFixtures(n int) []*models.Headline {
	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	out := make([]*models.Headline, 0, n)
	for i := 0; i < n; i++ {
		pd := base.Add(-time.Duration(i) * time.Hour)
		out = append(out, &models.Headline{
			ID:            fmt.Sprintf("id-%02d", i),
			Title:         fmt.Sprintf("Объявление %d", i),
			Status:        models.StatusPublished,
			PublishedDate: &pd,
		})
	}
	return out
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Empty(t, envelope.Error)
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func TestPublicHeadlines_DefaultLimit(t *testing.T) {
	repo := &stubHeadlineRepo{published: publishedFixtures(15)}
	h := newTestHandler(repo)

	// Нечисловой limit коэрцируется в значение по умолчанию.
	req := httptest.NewRequest(http.MethodGet, "/api/headlines/public?limit=abc", nil)
	rec := httptest.NewRecorder()
	h.PublicHeadlines(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, services.DefaultPageLimit+1, repo.lastFetch)

	var page models.FeedPage
	decodeData(t, rec, &page)
	require.Len(t, page.Headlines, services.DefaultPageLimit)
	require.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)
}

func TestPublicHeadlines_NegativeLimit(t *testing.T) {
	repo := &stubHeadlineRepo{published: publishedFixtures(3)}
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/public?limit=-5", nil)
	rec := httptest.NewRecorder()
	h.PublicHeadlines(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, services.DefaultPageLimit+1, repo.lastFetch)
}

func TestPublicHeadlines_CursorParsing(t *testing.T) {
	repo := &stubHeadlineRepo{}
	h := newTestHandler(repo)

	cursor := "2026-01-15T12:00:00Z"
	req := httptest.NewRequest(http.MethodGet, "/api/headlines/public?cursor="+cursor, nil)
	rec := httptest.NewRecorder()
	h.PublicHeadlines(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.lastCursor)
	require.Equal(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC), repo.lastCursor.UTC())
}

func TestPublicHeadlines_MalformedCursor(t *testing.T) {
	h := newTestHandler(&stubHeadlineRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/public?cursor=not-a-date", nil)
	rec := httptest.NewRecorder()
	h.PublicHeadlines(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicHeadlines_EmptyFeedShape(t *testing.T) {
	h := newTestHandler(&stubHeadlineRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/public", nil)
	rec := httptest.NewRecorder()
	h.PublicHeadlines(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.FeedPage
	decodeData(t, rec, &page)
	require.NotNil(t, page.Headlines)
	require.Empty(t, page.Headlines)
	require.False(t, page.HasMore)
	require.Nil(t, page.NextCursor)
}

func TestAdminHeadlines_InvalidStatus(t *testing.T) {
	h := newTestHandler(&stubHeadlineRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/admin?status=ARCHIVED", nil)
	rec := httptest.NewRecorder()
	h.AdminHeadlines(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHeadlines_StatusALLAccepted(t *testing.T) {
	repo := &stubHeadlineRepo{published: publishedFixtures(2)}
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/admin?status=all", nil)
	rec := httptest.NewRecorder()
	h.AdminHeadlines(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminHeadlines_IDNotFound(t *testing.T) {
	h := newTestHandler(&stubHeadlineRepo{byID: map[string]*models.Headline{}})

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/admin?id=missing", nil)
	rec := httptest.NewRecorder()
	h.AdminHeadlines(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHeadlines_PaginationDefaults(t *testing.T) {
	repo := &stubHeadlineRepo{published: publishedFixtures(25)}
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/admin?page=zzz&limit=", nil)
	rec := httptest.NewRecorder()
	h.AdminHeadlines(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.AdminHeadlinesResponse
	decodeData(t, rec, &resp)
	require.Equal(t, 1, resp.Pagination.Page)
	require.Equal(t, services.DefaultPageLimit, resp.Pagination.Limit)
	require.Equal(t, 25, resp.Pagination.Total)
	require.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestGetHeadline(t *testing.T) {
	repo := &stubHeadlineRepo{byID: map[string]*models.Headline{
		"h1": {ID: "h1", Title: "Есть"},
	}}
	h := newTestHandler(repo)

	router := mux.NewRouter()
	router.HandleFunc("/api/headlines/{id}", h.GetHeadline).Methods("GET")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/headlines/h1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/headlines/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParsePositiveInt(t *testing.T) {
	require.Equal(t, 10, parsePositiveInt("", 10))
	require.Equal(t, 10, parsePositiveInt("abc", 10))
	require.Equal(t, 10, parsePositiveInt("0", 10))
	require.Equal(t, 10, parsePositiveInt("-7", 10))
	require.Equal(t, 25, parsePositiveInt(" 25 ", 10))
}
