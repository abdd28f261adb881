package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"noticeboard/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Интеграционные тесты работают против живой БД из TEST_DB_DSN;
// без неё пропускаются.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN не задан")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS headlines (
			id uuid PRIMARY KEY,
			title text NOT NULL,
			description text NOT NULL,
			cover_image_url text,
			files jsonb NOT NULL DEFAULT '[]',
			status text NOT NULL CHECK (status IN ('DRAFT','PUBLISHED','CANCELLED')),
			auto_publish_date timestamptz,
			published_date timestamptz,
			published_by uuid,
			created_date timestamptz NOT NULL,
			created_by uuid NOT NULL,
			modified_date timestamptz NOT NULL,
			modified_by uuid NOT NULL
		)`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE headlines`)
	require.NoError(t, err)

	return pool
}

func insertHeadline(t *testing.T, repo HeadlineRepo, title, description, status string, publishedAt *time.Time) *models.Headline {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	actor := uuid.New().String()
	h := &models.Headline{
		ID:            uuid.New().String(),
		Title:         title,
		Description:   description,
		Status:        status,
		PublishedDate: publishedAt,
		CreatedDate:   now,
		CreatedBy:     actor,
		ModifiedDate:  now,
		ModifiedBy:    actor,
	}
	if status == models.StatusPublished && publishedAt != nil {
		h.PublishedBy = &actor
	}
	created, err := repo.Create(context.Background(), h)
	require.NoError(t, err)
	return created
}

func TestHeadlineRepo_CursorExclusive(t *testing.T) {
	repo := NewHeadlineRepo(testPool(t))
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	var ids []string
	for i := 0; i < 5; i++ {
		pd := base.Add(-time.Duration(i) * time.Hour)
		h := insertHeadline(t, repo, fmt.Sprintf("Объявление %d", i), "текст", models.StatusPublished, &pd)
		ids = append(ids, h.ID)
	}
	insertHeadline(t, repo, "Черновик", "текст", models.StatusDraft, nil)

	// Черновики не попадают в публичную выборку.
	all, err := repo.ListPublished(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Equal(t, ids[0], all[0].ID)

	// Курсор исключающий: запись с published_date == cursor не возвращается.
	cursor := all[1].PublishedDate
	rest, err := repo.ListPublished(ctx, cursor, 10)
	require.NoError(t, err)
	require.Len(t, rest, 3)
	for _, h := range rest {
		require.True(t, h.PublishedDate.Before(*cursor))
	}
}

func TestHeadlineRepo_ListAdmin_SearchCaseInsensitive(t *testing.T) {
	repo := NewHeadlineRepo(testPool(t))
	ctx := context.Background()

	insertHeadline(t, repo, "Расписание Сессии", "зимняя сессия", models.StatusDraft, nil)
	insertHeadline(t, repo, "Субботник", "уборка territory", models.StatusPublished, nil)
	insertHeadline(t, repo, "Ремонт", "про РАСПИСАНИЕ автобусов", models.StatusCancelled, nil)

	// ILIKE: регистр не важен, ищется и в title, и в description.
	items, total, err := repo.ListAdmin(ctx, "", "расписание", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 2)

	// Фильтр по статусу сужает и total.
	items, total, err = repo.ListAdmin(ctx, models.StatusDraft, "расписание", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, items, 1)
	require.Equal(t, "Расписание Сессии", items[0].Title)
}

func TestHeadlineRepo_ListAdmin_OffsetAndTotal(t *testing.T) {
	repo := NewHeadlineRepo(testPool(t))
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 7; i++ {
		pd := base.Add(-time.Duration(i) * time.Minute)
		insertHeadline(t, repo, fmt.Sprintf("N%d", i), "текст", models.StatusPublished, &pd)
	}

	page1, total, err := repo.ListAdmin(ctx, "", "", 3, 0)
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.Len(t, page1, 3)

	page3, total, err := repo.ListAdmin(ctx, "", "", 3, 6)
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.Len(t, page3, 1)
}

func TestHeadlineRepo_PublishDue(t *testing.T) {
	repo := NewHeadlineRepo(testPool(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	due := insertHeadline(t, repo, "Пора", "текст", models.StatusDraft, nil)
	due.AutoPublishDate = &past
	require.NoError(t, repo.Update(ctx, due))

	later := insertHeadline(t, repo, "Рано", "текст", models.StatusDraft, nil)
	later.AutoPublishDate = &future
	require.NoError(t, repo.Update(ctx, later))

	// Ранее опубликованная и отменённая запись: дата публикации не перебивается.
	prev := now.Add(-24 * time.Hour)
	cancelled := insertHeadline(t, repo, "Возврат", "текст", models.StatusDraft, nil)
	cancelled.AutoPublishDate = &past
	cancelled.PublishedDate = &prev
	require.NoError(t, repo.Update(ctx, cancelled))

	n, err := repo.PublishDue(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	got, err := repo.GetByID(ctx, due.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPublished, got.Status)
	require.NotNil(t, got.PublishedDate)

	got, err = repo.GetByID(ctx, later.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDraft, got.Status)

	got, err = repo.GetByID(ctx, cancelled.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPublished, got.Status)
	require.True(t, got.PublishedDate.Equal(prev))
}

func TestHeadlineRepo_FilesRoundTrip(t *testing.T) {
	repo := NewHeadlineRepo(testPool(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	actor := uuid.New().String()
	h := &models.Headline{
		ID:          uuid.New().String(),
		Title:       "С вложениями",
		Description: "текст",
		Status:      models.StatusDraft,
		Files: []models.HeadlineFile{
			{Name: "план.pdf", URL: "https://cdn.example.com/attachments/plan.pdf", Size: 1024},
		},
		CreatedDate:  now,
		CreatedBy:    actor,
		ModifiedDate: now,
		ModifiedBy:   actor,
	}
	created, err := repo.Create(ctx, h)
	require.NoError(t, err)
	require.Len(t, created.Files, 1)
	require.Equal(t, "план.pdf", created.Files[0].Name)

	got, err := repo.GetByID(ctx, h.ID)
	require.NoError(t, err)
	require.Equal(t, h.Files, got.Files)

	// Без вложений files хранится как пустой массив, не NULL.
	empty := insertHeadline(t, repo, "Пусто", "текст", models.StatusDraft, nil)
	got, err = repo.GetByID(ctx, empty.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Files)
	require.Empty(t, got.Files)
}
