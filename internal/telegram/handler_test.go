package telegram

import (
	"math/rand"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/saharsb963/chess/internal/models"
	"github.com/saharsb963/chess/internal/rules"
	"github.com/saharsb963/chess/internal/services"
)

// memStore is an in-memory GameStorage for handler tests, which exercise the
// full stack below the webhook with a real rules oracle.
type memStore struct {
	mu     sync.Mutex
	games  map[string]models.Game
	points map[int64]*models.LeaderboardEntry
}

func newMemStore() *memStore {
	return &memStore{
		games:  map[string]models.Game{},
		points: map[int64]*models.LeaderboardEntry{},
	}
}

func (s *memStore) Save(rec *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[rec.ID] = *rec
	return nil
}

func (s *memStore) LoadAll() ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	return out, nil
}

func (s *memStore) Delete(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, gameID)
	return nil
}

func (s *memStore) AddPoints(telegramID int64, username string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.points[telegramID]
	if !ok {
		e = &models.LeaderboardEntry{TelegramID: telegramID, Username: username}
		s.points[telegramID] = e
	}
	e.Points += delta
	return nil
}

func (s *memStore) TopScores(n int) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LeaderboardEntry, 0, len(s.points))
	for _, e := range s.points {
		out = append(out, *e)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *memStore) PlayerScore(telegramID int64) (*models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.points[telegramID]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func newTestHandler(t *testing.T, srv *httptest.Server) (*UpdateHandler, *services.GameService, *memStore) {
	t.Helper()
	client := testClient(srv)
	gate := NewAccessGate(client, "") // no channel: gate disabled
	gateway := NewGateway(client)
	gateway.interval = 0 // no edit throttling in tests
	store := newMemStore()

	games := services.NewGameService(rules.NewLibraryOracle(), store, gate, gateway, nil, rand.NewSource(1))
	match := services.NewMatchmaker(games, gate)
	return NewUpdateHandler(client, gate, match, games, store), games, store
}

func alice() *User { return &User{ID: 100, Username: "alice", FirstName: "Alice"} }
func bob() *User   { return &User{ID: 200, Username: "bob", FirstName: "Bob"} }

func messageUpdate(from *User, text string) Update {
	return Update{Message: &Message{From: from, Chat: Chat{ID: 10}, Text: text}}
}

func callbackUpdate(from *User, data string) Update {
	return Update{CallbackQuery: &CallbackQuery{
		ID:      "cb1",
		From:    *from,
		Message: &Message{MessageID: 5, Chat: Chat{ID: 10}},
		Data:    data,
	}}
}

func TestHandleStartSendsWelcome(t *testing.T) {
	api, srv := newFakeAPI()
	defer srv.Close()
	h, _, _ := newTestHandler(t, srv)

	h.Handle(messageUpdate(alice(), "/start"))

	if got := api.methods(); len(got) != 1 || got[0] != "sendMessage" {
		t.Fatalf("expected a single sendMessage, got %v", got)
	}
	if body := api.lastBody("sendMessage"); !strings.Contains(body, "Welcome") {
		t.Fatalf("welcome text missing: %s", body)
	}
}

func TestHandleChallengeAnnounces(t *testing.T) {
	api, srv := newFakeAPI()
	defer srv.Close()
	h, _, _ := newTestHandler(t, srv)

	h.Handle(messageUpdate(alice(), menuChallenge))

	body := api.lastBody("sendMessage")
	if !strings.Contains(body, "alice is looking for an opponent") {
		t.Fatalf("announcement missing: %s", body)
	}
	if !strings.Contains(body, "join_") {
		t.Fatalf("join button missing: %s", body)
	}
}

func TestChallengeAcceptFlow(t *testing.T) {
	api, srv := newFakeAPI()
	defer srv.Close()
	h, games, _ := newTestHandler(t, srv)

	h.Handle(messageUpdate(alice(), menuChallenge))

	// Extract the challenge id from the announcement markup.
	body := api.lastBody("sendMessage")
	idx := strings.Index(body, "join_")
	if idx < 0 {
		t.Fatalf("no join callback in %s", body)
	}
	data := body[idx:]
	data = data[:strings.IndexAny(data, `"\`)]

	h.Handle(callbackUpdate(bob(), data))

	if answer := api.lastBody("answerCallbackQuery"); !strings.Contains(answer, "Game on") {
		t.Fatalf("accept not confirmed: %s", answer)
	}
	active := games.ActiveGames()
	if len(active) != 1 {
		t.Fatalf("expected 1 active game, got %d", len(active))
	}
	if active[0].White != "alice" || active[0].Black != "bob" {
		t.Fatalf("wrong seats: %+v", active[0])
	}

	// A second accept hits a consumed challenge.
	h.Handle(callbackUpdate(&User{ID: 300, Username: "carol"}, data))
	if answer := api.lastBody("answerCallbackQuery"); !strings.Contains(answer, "no longer available") {
		t.Fatalf("expected consumed-challenge alert: %s", answer)
	}
}

func TestSoloGameTapFlow(t *testing.T) {
	api, srv := newFakeAPI()
	defer srv.Close()
	h, games, store := newTestHandler(t, srv)

	h.Handle(messageUpdate(alice(), menuPlayBot))

	active := games.ActiveGames()
	if len(active) != 1 {
		t.Fatalf("expected 1 active game, got %d", len(active))
	}
	gameID := active[0].ID

	// Pick up the e2 pawn.
	h.Handle(callbackUpdate(alice(), "cell_"+gameID+"_6_4"))
	if answer := api.lastBody("answerCallbackQuery"); !strings.Contains(answer, "Selected e2") {
		t.Fatalf("selection not confirmed: %s", answer)
	}

	// Move it to e4; the bot answers within the same interaction.
	h.Handle(callbackUpdate(alice(), "cell_"+gameID+"_4_4"))

	rec := store.games[gameID]
	if rec.Turn != 0 {
		t.Fatalf("turn should be back with the human, got %d", rec.Turn)
	}
	if !strings.Contains(rec.BoardFEN, " w ") {
		t.Fatalf("expected white to move after the bot reply, fen %q", rec.BoardFEN)
	}
	if rec.BoardFEN == "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" {
		t.Fatal("position did not advance")
	}
}

func TestCellTapOnFinishedGame(t *testing.T) {
	api, srv := newFakeAPI()
	defer srv.Close()
	h, _, _ := newTestHandler(t, srv)

	h.Handle(callbackUpdate(alice(), "cell_gone_0_0"))

	if answer := api.lastBody("answerCallbackQuery"); !strings.Contains(answer, "game is over") {
		t.Fatalf("expected game-over alert: %s", answer)
	}
}

func TestCellTapOutOfTurnAlert(t *testing.T) {
	api, srv := newFakeAPI()
	defer srv.Close()
	h, games, _ := newTestHandler(t, srv)

	h.Handle(messageUpdate(alice(), menuPlayBot))
	gameID := games.ActiveGames()[0].ID

	h.Handle(callbackUpdate(bob(), "cell_"+gameID+"_6_4"))

	if answer := api.lastBody("answerCallbackQuery"); !strings.Contains(answer, "not your game") {
		t.Fatalf("expected not-a-participant alert: %s", answer)
	}
}

func TestIsCommand(t *testing.T) {
	cases := []struct {
		text string
		cmd  string
		want bool
	}{
		{"/start", "start", true},
		{"/start@SomeBot", "start", true},
		{"/start now", "start", true},
		{"/started", "start", false},
		{"start", "start", false},
		{"", "start", false},
		{"/chess", "chess", true},
	}
	for _, tc := range cases {
		if got := isCommand(tc.text, tc.cmd); got != tc.want {
			t.Fatalf("isCommand(%q, %q) = %v, want %v", tc.text, tc.cmd, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := alice().DisplayName(); got != "alice" {
		t.Fatalf("username should win: %q", got)
	}
	u := User{ID: 1, FirstName: "NoHandle"}
	if got := u.DisplayName(); got != "NoHandle" {
		t.Fatalf("first name fallback: %q", got)
	}
}
