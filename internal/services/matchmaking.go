package services

import (
	"sync"
	"time"

	"github.com/saharsb963/chess/internal/models"

	"github.com/google/uuid"
)

// Challenge is a pending two-party offer waiting for an opponent. Challenges
// live in memory only: an offer that nobody accepts before a restart is gone,
// matching a chat message whose button simply stops working.
type Challenge struct {
	ID        string
	ChatID    int64
	HostName  string
	HostID    int64
	MessageID int64 // announcement message, deleted on acceptance
	CreatedAt time.Time
}

type Matchmaker struct {
	games *GameService
	gate  AccessGate

	mu         sync.Mutex
	challenges map[string]*Challenge
}

func NewMatchmaker(games *GameService, gate AccessGate) *Matchmaker {
	return &Matchmaker{
		games:      games,
		gate:       gate,
		challenges: make(map[string]*Challenge),
	}
}

func (m *Matchmaker) OpenChallenge(chatID, hostID int64, hostName string) (*Challenge, error) {
	if !m.gate.IsAuthorized(hostID) {
		return nil, ErrUnauthorized
	}

	c := &Challenge{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		HostName:  hostName,
		HostID:    hostID,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.challenges[c.ID] = c
	m.mu.Unlock()
	return c, nil
}

// SetAnnouncement records the chat message carrying the join button, so it
// can be deleted when the challenge is accepted.
func (m *Matchmaker) SetAnnouncement(challengeID string, messageID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.challenges[challengeID]; ok {
		c.MessageID = messageID
	}
}

// AcceptChallenge promotes a pending challenge into a running session with the
// host as first mover. The challenge is consumed exactly once: a second accept
// sees ErrChallengeNotFound. Self-challenge is detected by display name.
func (m *Matchmaker) AcceptChallenge(challengeID string, accepterID int64, accepterName string) (gameID string, announcementID int64, err error) {
	if !m.gate.IsAuthorized(accepterID) {
		return "", 0, ErrUnauthorized
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.challenges[challengeID]
	if !ok {
		return "", 0, ErrChallengeNotFound
	}
	if accepterName == c.HostName {
		return "", 0, ErrSelfChallenge
	}

	gameID, err = m.games.NewGame(c.ChatID, models.ModePvP,
		[2]string{c.HostName, accepterName},
		[2]int64{c.HostID, accepterID})
	if err != nil {
		return "", 0, err
	}

	delete(m.challenges, challengeID)
	return gameID, c.MessageID, nil
}

// StartSoloGame skips the challenge phase and puts the automaton in the
// second slot. Solo games never post scores.
func (m *Matchmaker) StartSoloGame(chatID, userID int64, username string) (string, error) {
	if !m.gate.IsAuthorized(userID) {
		return "", ErrUnauthorized
	}
	return m.games.NewGame(chatID, models.ModeBot,
		[2]string{username, "Bot"},
		[2]int64{userID, 0})
}
