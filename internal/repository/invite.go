package repository

import (
	"context"

	"noticeboard/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type InviteRepository struct {
	db *pgxpool.Pool
}

func NewInviteRepository(db *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) SaveInvite(ctx context.Context, inv *models.AdminInvite) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_invites (id, token, email, created_by, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, $5, $6, false)
	`, inv.ID, inv.Token, inv.Email, inv.CreatedBy, inv.CreatedAt, inv.ExpiresAt)
	return err
}

func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*models.AdminInvite, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, token, email, created_by, created_at, expires_at, used, used_at
		FROM admin_invites WHERE token = $1`, token)

	var inv models.AdminInvite
	if err := row.Scan(&inv.ID, &inv.Token, &inv.Email, &inv.CreatedBy,
		&inv.CreatedAt, &inv.ExpiresAt, &inv.Used, &inv.UsedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InviteRepository) MarkUsed(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE admin_invites SET used = true, used_at = NOW() WHERE token = $1`, token)
	return err
}
