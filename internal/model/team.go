package model

import "time"

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type TeamMember struct {
	ID          int64     `json:"id"`
	TeamID      int64     `json:"team_id"`
	UserID      int64     `json:"user_id"`
	IsModerator bool      `json:"is_moderator"`
	JoinedAt    time.Time `json:"joined_at"`
}
