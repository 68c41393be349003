package profile

import "time"

type Profile struct {
	ID             string    `json:"id"`
	Email          *string   `json:"email"`
	FullName       *string   `json:"full_name"`
	AvatarURL      *string   `json:"avatar_url"`
	TelegramChatID *int64    `json:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
