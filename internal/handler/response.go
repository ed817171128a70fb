package handler

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type UnreadCountResponse struct {
	UserID int64     `json:"user_id"`
	Since  time.Time `json:"since"`
	Unread int       `json:"unread"`
}
