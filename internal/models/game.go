package models

import "time"

type GameMode string

const (
	ModePvP GameMode = "pvp"
	ModeBot GameMode = "bot"
)

// Game is the durable record of a running session. The in-memory session in
// services is the working copy; this row is refreshed after every mutation.
type Game struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ChatID     int64     `gorm:"not null;index" json:"chat_id"`
	Mode       GameMode  `gorm:"size:10;not null" json:"mode"`
	WhiteName  string    `gorm:"size:100;not null" json:"white_name"`
	BlackName  string    `gorm:"size:100;not null" json:"black_name"`
	WhiteID    int64     `gorm:"not null" json:"white_id"`
	BlackID    int64     `json:"black_id"` // 0 when the second slot is the bot
	BoardFEN   string    `gorm:"size:100;not null" json:"board_fen"`
	Turn       int       `gorm:"not null;default:0" json:"turn"` // slot index: 0 = white
	Selection  string    `gorm:"size:8" json:"selection"`        // "row,col" or empty
	MessageID  int64     `json:"message_id"`
	LastRender time.Time `json:"last_render"`
	CreatedAt  time.Time `json:"created_at"`
}
