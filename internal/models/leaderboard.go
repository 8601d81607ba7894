package models

type LeaderboardEntry struct {
	TelegramID int64  `gorm:"primaryKey" json:"telegram_id"`
	Username   string `gorm:"size:100;not null" json:"username"`
	Points     int    `gorm:"not null;default:0" json:"points"`
}
