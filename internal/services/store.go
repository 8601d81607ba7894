package services

import (
	"errors"
	"fmt"

	"github.com/saharsb963/chess/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameStorage is the durable side of the session layer: full-record upserts of
// running games plus the monotonic score ledger.
type GameStorage interface {
	Save(rec *models.Game) error
	LoadAll() ([]models.Game, error)
	Delete(gameID string) error
	AddPoints(telegramID int64, username string, delta int) error
	TopScores(n int) ([]models.LeaderboardEntry, error)
	PlayerScore(telegramID int64) (*models.LeaderboardEntry, error)
}

type GameStore struct {
	db *gorm.DB
}

func NewGameStore(db *gorm.DB) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) Save(rec *models.Game) error {
	if err := s.db.Save(rec).Error; err != nil {
		return fmt.Errorf("save game %s: %w", rec.ID, err)
	}
	return nil
}

func (s *GameStore) LoadAll() ([]models.Game, error) {
	var games []models.Game
	if err := s.db.Find(&games).Error; err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	return games, nil
}

func (s *GameStore) Delete(gameID string) error {
	if err := s.db.Delete(&models.Game{}, "id = ?", gameID).Error; err != nil {
		return fmt.Errorf("delete game %s: %w", gameID, err)
	}
	return nil
}

// AddPoints creates the ledger row if it does not exist and applies the delta
// in the same transaction. A zero delta still creates the row, so losers show
// up on the leaderboard with 0 points.
func (s *GameStore) AddPoints(telegramID int64, username string, delta int) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry := models.LeaderboardEntry{TelegramID: telegramID, Username: username, Points: 0}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}
		return tx.Model(&models.LeaderboardEntry{}).
			Where("telegram_id = ?", telegramID).
			UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
	})
	if err != nil {
		return fmt.Errorf("add %d points for %d: %w", delta, telegramID, err)
	}
	return nil
}

// TopScores orders by points descending; ties fall back to the database's
// scan order, which is implementation-defined.
func (s *GameStore) TopScores(n int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := s.db.Order("points DESC").Limit(n).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	return entries, nil
}

// PlayerScore returns nil without error when the player has no ledger row yet.
func (s *GameStore) PlayerScore(telegramID int64) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := s.db.First(&entry, "telegram_id = ?", telegramID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("player score %d: %w", telegramID, err)
	}
	return &entry, nil
}
