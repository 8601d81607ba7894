package services

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/saharsb963/chess/internal/models"
)

func newTestMatchmaker(t *testing.T) (*Matchmaker, *fakeStorage, *fakeGate) {
	t.Helper()
	storage := newFakeStorage()
	gate := &fakeGate{denied: map[int64]bool{}}
	games := NewGameService(pawnOracle(), storage, gate, &fakePublisher{}, nil, rand.NewSource(1))
	return NewMatchmaker(games, gate), storage, gate
}

func TestOpenChallengeUnauthorized(t *testing.T) {
	m, _, gate := newTestMatchmaker(t)
	gate.denied[whiteID] = true

	if _, err := m.OpenChallenge(10, whiteID, "alice"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAcceptChallengeStartsGame(t *testing.T) {
	m, storage, _ := newTestMatchmaker(t)

	c, err := m.OpenChallenge(10, whiteID, "alice")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	m.SetAnnouncement(c.ID, 55)

	gameID, announcementID, err := m.AcceptChallenge(c.ID, blackID, "bob")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if gameID == "" {
		t.Fatal("accept returned empty game id")
	}
	if announcementID != 55 {
		t.Fatalf("expected announcement id 55, got %d", announcementID)
	}

	rec, ok := storage.saved[gameID]
	if !ok {
		t.Fatal("accepted game not persisted")
	}
	if rec.Mode != models.ModePvP {
		t.Fatalf("expected pvp mode, got %q", rec.Mode)
	}
	if rec.WhiteName != "alice" || rec.BlackName != "bob" {
		t.Fatalf("host must be white: %q vs %q", rec.WhiteName, rec.BlackName)
	}
	if rec.WhiteID != whiteID || rec.BlackID != blackID {
		t.Fatalf("player ids wrong: %d vs %d", rec.WhiteID, rec.BlackID)
	}
}

func TestAcceptChallengeConsumedOnce(t *testing.T) {
	m, _, _ := newTestMatchmaker(t)

	c, err := m.OpenChallenge(10, whiteID, "alice")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, _, err := m.AcceptChallenge(c.ID, blackID, "bob"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, _, err := m.AcceptChallenge(c.ID, 300, "carol"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("second accept should fail with ErrChallengeNotFound, got %v", err)
	}
}

func TestAcceptUnknownChallenge(t *testing.T) {
	m, _, _ := newTestMatchmaker(t)

	if _, _, err := m.AcceptChallenge("nope", blackID, "bob"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestAcceptOwnChallenge(t *testing.T) {
	m, _, _ := newTestMatchmaker(t)

	c, err := m.OpenChallenge(10, whiteID, "alice")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// Detection is by display name, so even a different account with the
	// same name is rejected.
	if _, _, err := m.AcceptChallenge(c.ID, 999, "alice"); !errors.Is(err, ErrSelfChallenge) {
		t.Fatalf("expected ErrSelfChallenge, got %v", err)
	}

	// The challenge survives a rejected accept.
	if _, _, err := m.AcceptChallenge(c.ID, blackID, "bob"); err != nil {
		t.Fatalf("accept after rejected self-join: %v", err)
	}
}

func TestStartSoloGame(t *testing.T) {
	m, storage, _ := newTestMatchmaker(t)

	gameID, err := m.StartSoloGame(10, whiteID, "alice")
	if err != nil {
		t.Fatalf("solo: %v", err)
	}

	rec, ok := storage.saved[gameID]
	if !ok {
		t.Fatal("solo game not persisted")
	}
	if rec.Mode != models.ModeBot {
		t.Fatalf("expected bot mode, got %q", rec.Mode)
	}
	if rec.BlackName != "Bot" || rec.BlackID != 0 {
		t.Fatalf("automaton slot wrong: %q id %d", rec.BlackName, rec.BlackID)
	}
}
