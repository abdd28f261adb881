package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"noticeboard/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeInviteRepo struct {
	byToken map[string]*models.AdminInvite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{byToken: map[string]*models.AdminInvite{}}
}

func (r *fakeInviteRepo) SaveInvite(_ context.Context, inv *models.AdminInvite) error {
	cp := *inv
	r.byToken[inv.Token] = &cp
	return nil
}

func (r *fakeInviteRepo) GetByToken(_ context.Context, token string) (*models.AdminInvite, error) {
	inv, ok := r.byToken[token]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInviteRepo) MarkUsed(_ context.Context, token string) error {
	inv, ok := r.byToken[token]
	if !ok {
		return errors.New("no rows")
	}
	inv.Used = true
	now := time.Now().UTC()
	inv.UsedAt = &now
	return nil
}

func TestInviteIssue(t *testing.T) {
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo, "https://board.example.com/", 7)
	issued := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	inv, link, err := svc.Issue(context.Background(), "new-admin@example.com", "u1")
	require.NoError(t, err)
	require.NotEmpty(t, inv.Token)
	require.Equal(t, issued.Add(7*24*time.Hour), inv.ExpiresAt)
	require.Equal(t, "https://board.example.com/admin-onboarding?token="+inv.Token, link)
	require.False(t, strings.Contains(link, "//admin-onboarding"))
}

func TestInviteIssue_RequiredFields(t *testing.T) {
	svc := NewInviteService(newFakeInviteRepo(), "https://board.example.com", 7)

	_, _, err := svc.Issue(context.Background(), "", "u1")
	require.ErrorIs(t, err, ErrInviteFieldsMissing)

	_, _, err = svc.Issue(context.Background(), "a@b.com", "  ")
	require.ErrorIs(t, err, ErrInviteFieldsMissing)
}

func TestInviteValidate_Window(t *testing.T) {
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo, "https://board.example.com", 7)
	issued := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	inv, _, err := svc.Issue(context.Background(), "new-admin@example.com", "u1")
	require.NoError(t, err)

	// Внутри окна — действителен, email раскрывается.
	svc.now = func() time.Time { return issued.Add(6 * 24 * time.Hour) }
	res, err := svc.Validate(context.Background(), inv.Token)
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "new-admin@example.com", res.Email)

	// Ровно на границе окна — уже недействителен (строгое "до").
	svc.now = func() time.Time { return inv.ExpiresAt }
	res, err = svc.Validate(context.Background(), inv.Token)
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Empty(t, res.Email)
}

func TestInviteValidate_UnknownToken(t *testing.T) {
	svc := NewInviteService(newFakeInviteRepo(), "https://board.example.com", 7)

	// Несуществующий токен — отрицательный результат, не ошибка.
	res, err := svc.Validate(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Empty(t, res.Email)
}

func TestInviteConsume_SingleUse(t *testing.T) {
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo, "https://board.example.com", 7)
	issued := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	inv, _, err := svc.Issue(context.Background(), "new-admin@example.com", "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Consume(context.Background(), inv.Token))

	// Второй раз тот же токен не проходит.
	require.ErrorIs(t, svc.Consume(context.Background(), inv.Token), ErrInviteUsed)

	// Использованный токен и при проверке недействителен.
	res, err := svc.Validate(context.Background(), inv.Token)
	require.NoError(t, err)
	require.False(t, res.Valid)
}

func TestInviteConsume_ExpiredAndUnknown(t *testing.T) {
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo, "https://board.example.com", 7)
	issued := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	inv, _, err := svc.Issue(context.Background(), "new-admin@example.com", "u1")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	require.ErrorIs(t, svc.Consume(context.Background(), inv.Token), ErrInviteExpired)

	require.ErrorIs(t, svc.Consume(context.Background(), "nope"), ErrInviteInvalid)
}

func TestInviteTTL_DefaultOnBadValue(t *testing.T) {
	svc := NewInviteService(newFakeInviteRepo(), "https://board.example.com", 0)
	issued := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	inv, _, err := svc.Issue(context.Background(), "a@b.com", "u1")
	require.NoError(t, err)
	require.Equal(t, issued.Add(7*24*time.Hour), inv.ExpiresAt)
}
