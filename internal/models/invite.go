package models

import "time"

// AdminInvite — одноразовое приглашение на создание админ-аккаунта.
// Действительно, пока used=false и срок не истёк; других состояний нет.
type AdminInvite struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	Email     string     `json:"email"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// IsValid — чистая функция от времени и флага used.
func (i *AdminInvite) IsValid(now time.Time) bool {
	return !i.Used && now.Before(i.ExpiresAt)
}
