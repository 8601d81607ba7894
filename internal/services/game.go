package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/saharsb963/chess/internal/models"
	"github.com/saharsb963/chess/internal/rules"
	"github.com/saharsb963/chess/internal/ws"

	"github.com/google/uuid"
)

// AccessGate verifies a principal may interact with the bot. Implementations
// must fail closed: any error checking means not authorized.
type AccessGate interface {
	IsAuthorized(telegramID int64) bool
}

// BoardPublisher renders a session snapshot to the chat surface. The first
// publish sends a new message and returns its id; later publishes edit it in
// place, throttled per game.
type BoardPublisher interface {
	Publish(view *GameView) (messageID int64, renderedAt time.Time, err error)
}

// GameSession is the in-memory working copy of a running game. All mutations
// happen under mu, so no two interactions interleave on one session.
type GameSession struct {
	mu sync.Mutex

	ID        string
	ChatID    int64
	Mode      models.GameMode
	Players   [2]string // slot 0 = white (first mover)
	PlayerIDs [2]int64  // bot slot has id 0
	FEN       string
	Turn      int // slot index of the side to move
	Selection *rules.Cell
	MessageID int64

	LastRender time.Time
	CreatedAt  time.Time
}

// GameView is an immutable snapshot handed to the publisher.
type GameView struct {
	ID         string
	ChatID     int64
	Mode       models.GameMode
	Players    [2]string
	FEN        string
	Turn       int
	Selection  *rules.Cell
	Targets    []rules.Cell
	Board      map[rules.Cell]rules.Piece
	InCheck    bool
	Outcome    rules.Outcome
	WinnerName string
	MessageID  int64
	LastRender time.Time
}

type TapKind int

const (
	TapSelected TapKind = iota
	TapMoved
	TapIllegal
	TapGameOver
)

type TapResult struct {
	Kind       TapKind
	Cell       rules.Cell
	Outcome    rules.Outcome
	WinnerName string
}

type GameSummary struct {
	ID        string          `json:"id"`
	ChatID    int64           `json:"chat_id"`
	Mode      models.GameMode `json:"mode"`
	White     string          `json:"white"`
	Black     string          `json:"black"`
	Turn      int             `json:"turn"`
	CreatedAt time.Time       `json:"created_at"`
}

// GameService owns the active-session registry and the per-session turn and
// selection state machine.
type GameService struct {
	oracle    rules.Oracle
	store     GameStorage
	gate      AccessGate
	publisher BoardPublisher
	hub       *ws.Hub

	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.RWMutex
	games map[string]*GameSession
}

func NewGameService(oracle rules.Oracle, store GameStorage, gate AccessGate, publisher BoardPublisher, hub *ws.Hub, seed rand.Source) *GameService {
	return &GameService{
		oracle:    oracle,
		store:     store,
		gate:      gate,
		publisher: publisher,
		hub:       hub,
		rng:       rand.New(seed),
		games:     make(map[string]*GameSession),
	}
}

// Restore rebuilds the registry from durable records. Called once at startup.
func (s *GameService) Restore() error {
	records, err := s.store.LoadAll()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range records {
		rec := &records[i]
		if _, err := s.oracle.Turn(rec.BoardFEN); err != nil {
			log.Printf("skipping game %s with unreadable position: %v", rec.ID, err)
			continue
		}
		s.games[rec.ID] = sessionFromRecord(rec)
	}
	log.Printf("restored %d active games", len(s.games))
	return nil
}

// NewGame creates a session, persists it and publishes the initial board.
// Slot 0 (white) is the first mover. In bot mode the second slot is the
// automaton with id 0.
func (s *GameService) NewGame(chatID int64, mode models.GameMode, players [2]string, playerIDs [2]int64) (string, error) {
	g := &GameSession{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Mode:      mode,
		Players:   players,
		PlayerIDs: playerIDs,
		FEN:       s.oracle.StartingPosition(),
		Turn:      0,
		CreatedAt: time.Now(),
	}

	if err := s.store.Save(recordOf(g)); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.games[g.ID] = g
	s.mu.Unlock()

	g.mu.Lock()
	s.publish(g, rules.OutcomeNone, "")
	g.mu.Unlock()
	return g.ID, nil
}

// SelectCell is the single entry point for board taps. Without a pending
// selection the tap picks up a piece; with one, it is treated as the
// destination of a move attempt.
func (s *GameService) SelectCell(gameID string, userID int64, row, col int) (*TapResult, error) {
	g := s.lookup(gameID)
	if g == nil {
		return nil, ErrGameNotFound
	}
	if !s.gate.IsAuthorized(userID) {
		return nil, ErrUnauthorized
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// The game may have ended while we waited for the lock.
	if s.lookup(gameID) != g {
		return nil, ErrGameNotFound
	}

	slot := g.slotOf(userID)
	if slot < 0 {
		return nil, ErrNotAParticipant
	}
	if slot != g.Turn {
		return nil, ErrOutOfTurn
	}

	cell := rules.Cell{Row: row, Col: col}
	if !cell.Valid() {
		return nil, ErrEmptyOrForeignCell
	}

	if g.Selection == nil {
		piece, ok := s.oracle.PieceAt(g.FEN, cell)
		if !ok || piece.Owner != colorOfSlot(g.Turn) {
			return nil, ErrEmptyOrForeignCell
		}
		g.Selection = &cell
		if err := s.store.Save(recordOf(g)); err != nil {
			return nil, err
		}
		s.publish(g, rules.OutcomeNone, "")
		return &TapResult{Kind: TapSelected, Cell: cell}, nil
	}

	return s.attemptMove(g, *g.Selection, cell)
}

// attemptMove builds the candidate move (auto-promoting pawns to queens),
// applies it if legal, runs the automaton's reply in solo mode and detects
// termination. Called with g.mu held.
func (s *GameService) attemptMove(g *GameSession, from, to rules.Cell) (*TapResult, error) {
	mv := rules.Move{From: from, To: to}
	if piece, ok := s.oracle.PieceAt(g.FEN, from); ok && piece.Kind == rules.Pawn && (to.Row == 0 || to.Row == 7) {
		mv.Promotion = rules.Queen
	}

	next, err := s.oracle.Apply(g.FEN, mv)
	if errors.Is(err, rules.ErrIllegalMove) {
		// Advisory only: drop the selection, re-render the unchanged position.
		g.Selection = nil
		if err := s.store.Save(recordOf(g)); err != nil {
			return nil, err
		}
		s.publish(g, rules.OutcomeNone, "")
		return &TapResult{Kind: TapIllegal, Cell: to}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("apply move: %w", err)
	}

	g.FEN = next
	g.Selection = nil
	g.Turn = 1 - g.Turn

	if outcome := s.oracle.Outcome(g.FEN); outcome != rules.OutcomeNone {
		return s.finishGame(g, outcome)
	}

	if g.Mode == models.ModeBot && g.Turn == 1 {
		if err := s.playBotMove(g); err != nil {
			return nil, err
		}
		if outcome := s.oracle.Outcome(g.FEN); outcome != rules.OutcomeNone {
			return s.finishGame(g, outcome)
		}
	}

	if err := s.store.Save(recordOf(g)); err != nil {
		return nil, err
	}
	s.publish(g, rules.OutcomeNone, "")
	s.broadcast(g, "move", nil)
	return &TapResult{Kind: TapMoved, Cell: to}, nil
}

// playBotMove picks uniformly at random among the legal replies and applies
// it as part of the same interaction, flipping the turn back to the human.
func (s *GameService) playBotMove(g *GameSession) error {
	moves, err := s.oracle.LegalMoves(g.FEN)
	if err != nil {
		return fmt.Errorf("bot legal moves: %w", err)
	}
	if len(moves) == 0 {
		return fmt.Errorf("bot has no legal moves in non-terminal position %q", g.FEN)
	}

	s.rngMu.Lock()
	mv := moves[s.rng.Intn(len(moves))]
	s.rngMu.Unlock()

	next, err := s.oracle.Apply(g.FEN, mv)
	if err != nil {
		return fmt.Errorf("apply bot move: %w", err)
	}
	g.FEN = next
	g.Turn = 0
	return nil
}

// finishGame handles termination: scores first (in-process, unconditional),
// then the point of no return — removal from the registry and deletion of the
// durable record, exactly once — and only then the final, retry-safe render.
func (s *GameService) finishGame(g *GameSession, outcome rules.Outcome) (*TapResult, error) {
	moverSlot := 1 - g.Turn
	winner := ""

	if outcome == rules.OutcomeCheckmate {
		winner = g.Players[moverSlot]
	}

	if g.Mode == models.ModePvP {
		if outcome == rules.OutcomeCheckmate {
			loserSlot := 1 - moverSlot
			if err := s.store.AddPoints(g.PlayerIDs[moverSlot], g.Players[moverSlot], 3); err != nil {
				log.Printf("record win for game %s: %v", g.ID, err)
			}
			if err := s.store.AddPoints(g.PlayerIDs[loserSlot], g.Players[loserSlot], 0); err != nil {
				log.Printf("record loss for game %s: %v", g.ID, err)
			}
		} else {
			for i := 0; i < 2; i++ {
				if err := s.store.AddPoints(g.PlayerIDs[i], g.Players[i], 1); err != nil {
					log.Printf("record draw for game %s: %v", g.ID, err)
				}
			}
		}
	}

	s.mu.Lock()
	delete(s.games, g.ID)
	s.mu.Unlock()

	if err := s.store.Delete(g.ID); err != nil {
		log.Printf("delete finished game %s: %v", g.ID, err)
	}

	s.publish(g, outcome, winner)
	s.broadcast(g, "game_over", map[string]interface{}{
		"outcome": int(outcome),
		"winner":  winner,
	})
	return &TapResult{Kind: TapGameOver, Outcome: outcome, WinnerName: winner}, nil
}

// publish renders the session, then persists the updated message reference and
// render timestamp. Render failures are logged, not propagated: durable state
// was already saved and a later render supersedes a lost one.
func (s *GameService) publish(g *GameSession, outcome rules.Outcome, winner string) {
	view := s.viewOf(g, outcome, winner)
	msgID, at, err := s.publisher.Publish(view)
	if err != nil {
		log.Printf("publish game %s: %v", g.ID, err)
		return
	}
	changed := false
	if msgID > 0 && msgID != g.MessageID {
		g.MessageID = msgID
		changed = true
	}
	if at.After(g.LastRender) {
		g.LastRender = at
		changed = true
	}
	if changed && outcome == rules.OutcomeNone {
		if err := s.store.Save(recordOf(g)); err != nil {
			log.Printf("save render refs for game %s: %v", g.ID, err)
		}
	}
}

func (s *GameService) viewOf(g *GameSession, outcome rules.Outcome, winner string) *GameView {
	board, err := s.oracle.Pieces(g.FEN)
	if err != nil {
		log.Printf("read board for game %s: %v", g.ID, err)
		board = map[rules.Cell]rules.Piece{}
	}

	var targets []rules.Cell
	if g.Selection != nil {
		targets, err = s.oracle.LegalTargets(g.FEN, *g.Selection)
		if err != nil {
			log.Printf("legal targets for game %s: %v", g.ID, err)
		}
	}

	return &GameView{
		ID:         g.ID,
		ChatID:     g.ChatID,
		Mode:       g.Mode,
		Players:    g.Players,
		FEN:        g.FEN,
		Turn:       g.Turn,
		Selection:  g.Selection,
		Targets:    targets,
		Board:      board,
		InCheck:    s.oracle.InCheck(g.FEN),
		Outcome:    outcome,
		WinnerName: winner,
		MessageID:  g.MessageID,
		LastRender: g.LastRender,
	}
}

func (s *GameService) broadcast(g *GameSession, event string, extra map[string]interface{}) {
	if s.hub == nil {
		return
	}
	data := map[string]interface{}{
		"game_id": g.ID,
		"fen":     g.FEN,
		"turn":    g.Turn,
	}
	for k, v := range extra {
		data[k] = v
	}
	s.hub.Broadcast(g.ID, ws.WSMessage{Type: event, Data: data})
}

func (s *GameService) lookup(gameID string) *GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[gameID]
}

// ActiveGames lists registry contents for the REST surface.
func (s *GameService) ActiveGames() []GameSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]GameSummary, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, GameSummary{
			ID:        g.ID,
			ChatID:    g.ChatID,
			Mode:      g.Mode,
			White:     g.Players[0],
			Black:     g.Players[1],
			Turn:      g.Turn,
			CreatedAt: g.CreatedAt,
		})
	}
	return out
}

func (g *GameSession) slotOf(userID int64) int {
	if g.Mode == models.ModeBot {
		if userID == g.PlayerIDs[0] {
			return 0
		}
		return -1
	}
	for i, id := range g.PlayerIDs {
		if id == userID {
			return i
		}
	}
	return -1
}

func colorOfSlot(slot int) rules.Color {
	if slot == 0 {
		return rules.White
	}
	return rules.Black
}

func recordOf(g *GameSession) *models.Game {
	return &models.Game{
		ID:         g.ID,
		ChatID:     g.ChatID,
		Mode:       g.Mode,
		WhiteName:  g.Players[0],
		BlackName:  g.Players[1],
		WhiteID:    g.PlayerIDs[0],
		BlackID:    g.PlayerIDs[1],
		BoardFEN:   g.FEN,
		Turn:       g.Turn,
		Selection:  encodeSelection(g.Selection),
		MessageID:  g.MessageID,
		LastRender: g.LastRender,
		CreatedAt:  g.CreatedAt,
	}
}

func sessionFromRecord(rec *models.Game) *GameSession {
	return &GameSession{
		ID:         rec.ID,
		ChatID:     rec.ChatID,
		Mode:       rec.Mode,
		Players:    [2]string{rec.WhiteName, rec.BlackName},
		PlayerIDs:  [2]int64{rec.WhiteID, rec.BlackID},
		FEN:        rec.BoardFEN,
		Turn:       rec.Turn,
		Selection:  decodeSelection(rec.Selection),
		MessageID:  rec.MessageID,
		LastRender: rec.LastRender,
		CreatedAt:  rec.CreatedAt,
	}
}

func encodeSelection(c *rules.Cell) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d", c.Row, c.Col)
}

func decodeSelection(s string) *rules.Cell {
	if s == "" {
		return nil
	}
	var c rules.Cell
	if _, err := fmt.Sscanf(s, "%d,%d", &c.Row, &c.Col); err != nil || !c.Valid() {
		return nil
	}
	return &c
}
