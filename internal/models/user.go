package models

import "time"

type TelegramUser struct {
	ID        int64  `json:"id" redis:"id"`
	FirstName string `json:"first_name" redis:"first_name"`
	LastName  string `json:"last_name,omitempty" redis:"last_name"`
	Username  string `json:"username,omitempty" redis:"username"`
	PhotoURL  string `json:"photo_url,omitempty" redis:"photo_url"`
}

type UserSession struct {
	ID           int64         `json:"id" redis:"id"`
	SessionID    string        `json:"session_id" redis:"session_id"`
	TelegramUser *TelegramUser `json:"telegram_user" redis:"telegram_user"`
	CreatedAt    time.Time     `json:"created_at" redis:"created_at"`
	LastAccessed time.Time     `json:"last_accessed" redis:"last_accessed"`
}

type BalanceResponse struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}
