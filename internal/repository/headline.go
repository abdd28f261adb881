package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"noticeboard/internal/models"
)

type HeadlineRepo interface {
	Create(ctx context.Context, h *models.Headline) (*models.Headline, error)
	GetByID(ctx context.Context, id string) (*models.Headline, error)
	Update(ctx context.Context, h *models.Headline) error
	Delete(ctx context.Context, id string) error
	// ListPublished отдаёт до fetch опубликованных записей строго старше курсора
	// (published_date DESC, id DESC).
	ListPublished(ctx context.Context, cursor *time.Time, fetch int) ([]*models.Headline, error)
	// ListAdmin — офсетная выборка с фильтром по статусу и подстрочным поиском;
	// total считается по отфильтрованному множеству.
	ListAdmin(ctx context.Context, status, search string, limit, offset int) ([]*models.Headline, int, error)
	// PublishDue публикует черновики, у которых наступил auto_publish_date.
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

type headlineRepo struct{ db *pgxpool.Pool }

func NewHeadlineRepo(db *pgxpool.Pool) HeadlineRepo { return &headlineRepo{db: db} }

const headlineColumns = `id, title, description, cover_image_url, files, status,
	auto_publish_date, published_date, published_by,
	created_date, created_by, modified_date, modified_by`

func (r *headlineRepo) Create(ctx context.Context, h *models.Headline) (*models.Headline, error) {
	filesJSON, _ := json.Marshal(h.Files)
	if h.Files == nil {
		filesJSON = []byte("[]")
	}

	q := fmt.Sprintf(`
		INSERT INTO headlines (id, title, description, cover_image_url, files, status,
			auto_publish_date, published_date, published_by,
			created_date, created_by, modified_date, modified_by)
		VALUES ($1,$2,$3,$4,$5::jsonb,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING %s`, headlineColumns)

	row := r.db.QueryRow(ctx, q,
		h.ID, h.Title, h.Description, h.CoverImageURL, filesJSON, h.Status,
		h.AutoPublishDate, h.PublishedDate, h.PublishedBy,
		h.CreatedDate, h.CreatedBy, h.ModifiedDate, h.ModifiedBy,
	)
	return scanHeadline(row)
}

func (r *headlineRepo) GetByID(ctx context.Context, id string) (*models.Headline, error) {
	q := fmt.Sprintf(`SELECT %s FROM headlines WHERE id = $1`, headlineColumns)
	return scanHeadline(r.db.QueryRow(ctx, q, id))
}

func (r *headlineRepo) Update(ctx context.Context, h *models.Headline) error {
	filesJSON, _ := json.Marshal(h.Files)
	if h.Files == nil {
		filesJSON = []byte("[]")
	}

	const q = `
		UPDATE headlines
		SET title=$1,
		    description=$2,
		    cover_image_url=$3,
		    files=$4::jsonb,
		    status=$5,
		    auto_publish_date=$6,
		    published_date=$7,
		    published_by=$8,
		    modified_date=$9,
		    modified_by=$10
		WHERE id=$11`
	_, err := r.db.Exec(ctx, q,
		h.Title, h.Description, h.CoverImageURL, filesJSON, h.Status,
		h.AutoPublishDate, h.PublishedDate, h.PublishedBy,
		h.ModifiedDate, h.ModifiedBy, h.ID,
	)
	return err
}

func (r *headlineRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM headlines WHERE id = $1`, id)
	return err
}

func (r *headlineRepo) ListPublished(ctx context.Context, cursor *time.Time, fetch int) ([]*models.Headline, error) {
	// Курсор — строгая верхняя граница: запись на границе не отдаётся повторно.
	// NULLS LAST на случай нарушенного инварианта published_date.
	q := fmt.Sprintf(`
		SELECT %s FROM headlines
		WHERE status = $1 AND ($2::timestamptz IS NULL OR published_date < $2)
		ORDER BY published_date DESC NULLS LAST, id DESC
		LIMIT $3`, headlineColumns)

	rows, err := r.db.Query(ctx, q, models.StatusPublished, cursor, fetch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHeadlines(rows)
}

func (r *headlineRepo) ListAdmin(ctx context.Context, status, search string, limit, offset int) ([]*models.Headline, int, error) {
	where := []string{}
	args := []interface{}{}
	i := 1

	if status != "" {
		where = append(where, fmt.Sprintf("status = $%d", i))
		args = append(args, status)
		i++
	}
	if search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", i, i))
		args = append(args, "%"+search+"%")
		i++
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM headlines"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM headlines%s
		ORDER BY published_date DESC NULLS LAST, id DESC
		LIMIT $%d OFFSET $%d`, headlineColumns, cond, i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := scanHeadlines(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *headlineRepo) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE headlines
		SET status = $1,
		    published_date = COALESCE(published_date, $2),
		    modified_date = $2
		WHERE status = $3 AND auto_publish_date IS NOT NULL AND auto_publish_date <= $2`
	tag, err := r.db.Exec(ctx, q, models.StatusPublished, now, models.StatusDraft)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHeadline(row rowScanner) (*models.Headline, error) {
	var h models.Headline
	var filesRaw []byte
	if err := row.Scan(
		&h.ID, &h.Title, &h.Description, &h.CoverImageURL, &filesRaw, &h.Status,
		&h.AutoPublishDate, &h.PublishedDate, &h.PublishedBy,
		&h.CreatedDate, &h.CreatedBy, &h.ModifiedDate, &h.ModifiedBy,
	); err != nil {
		return nil, err
	}
	_ = json.Unmarshal(filesRaw, &h.Files)
	if h.Files == nil {
		h.Files = []models.HeadlineFile{}
	}
	return &h, nil
}

func scanHeadlines(rows pgx.Rows) ([]*models.Headline, error) {
	var list []*models.Headline
	for rows.Next() {
		h, err := scanHeadline(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}
