package telegram

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/saharsb963/chess/internal/services"
)

type UpdateHandler struct {
	client *Client
	gate   *AccessGate
	match  *services.Matchmaker
	games  *services.GameService
	store  services.GameStorage
}

func NewUpdateHandler(
	client *Client,
	gate *AccessGate,
	match *services.Matchmaker,
	games *services.GameService,
	store services.GameStorage,
) *UpdateHandler {
	return &UpdateHandler{
		client: client,
		gate:   gate,
		match:  match,
		games:  games,
		store:  store,
	}
}

func (h *UpdateHandler) Handle(upd Update) {
	if upd.CallbackQuery != nil {
		h.handleCallback(upd.CallbackQuery)
		return
	}
	if upd.Message != nil {
		h.handleMessage(upd.Message)
	}
}

func (h *UpdateHandler) handleMessage(msg *Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if isCommand(text, "start") || isCommand(text, "chess") {
		h.cmdStart(msg.From, chatID)
		return
	}
	if isCommand(text, "help") {
		h.cmdHelp(msg.From, chatID)
		return
	}

	switch text {
	case menuChallenge:
		h.cmdChallenge(msg.From, chatID)
	case menuPlayBot:
		h.startSolo(msg.From, chatID)
	case menuLeaderboard:
		h.cmdLeaderboard(msg.From, chatID)
	case menuMyScore:
		h.cmdMyScore(msg.From, chatID)
	case menuHelp:
		h.cmdHelp(msg.From, chatID)
	}
}

func (h *UpdateHandler) cmdStart(from *User, chatID int64) {
	if !h.gate.IsAuthorized(from.ID) {
		h.sendSubscribePrompt(chatID)
		return
	}

	welcome := "♟️ Welcome to the chess bot! Play full chess games against " +
		"your friends right in the chat.\n\n" +
		"🔥 <b>What you can do</b>:\n" +
		"- ⚔️ Open a challenge and wait for an opponent.\n" +
		"- 🏆 Check the leaderboard (top 5 players).\n" +
		"- 📊 See your own points.\n" +
		"- 🤖 Practice against the bot (very easy, no points).\n\n" +
		"Pick an action below:"
	h.client.SendMessage(chatID, welcome, "HTML", MainMenuKeyboard())
}

func (h *UpdateHandler) cmdChallenge(from *User, chatID int64) {
	challenge, err := h.match.OpenChallenge(chatID, from.ID, from.DisplayName())
	if errors.Is(err, services.ErrUnauthorized) {
		h.sendSubscribePrompt(chatID)
		return
	}
	if err != nil {
		log.Printf("open challenge: %v", err)
		return
	}

	msgID, err := h.client.SendMessage(chatID,
		fmt.Sprintf("⚔ %s is looking for an opponent! Anyone up for a game?", challenge.HostName),
		"", ChallengeKeyboard(challenge.ID))
	if err != nil {
		log.Printf("announce challenge %s: %v", challenge.ID, err)
		return
	}
	h.match.SetAnnouncement(challenge.ID, msgID)
}

func (h *UpdateHandler) startSolo(from *User, chatID int64) {
	_, err := h.match.StartSoloGame(chatID, from.ID, from.DisplayName())
	if errors.Is(err, services.ErrUnauthorized) {
		h.sendSubscribePrompt(chatID)
		return
	}
	if err != nil {
		log.Printf("start solo game: %v", err)
	}
}

func (h *UpdateHandler) cmdLeaderboard(from *User, chatID int64) {
	if !h.gate.IsAuthorized(from.ID) {
		h.sendSubscribePrompt(chatID)
		return
	}

	entries, err := h.store.TopScores(5)
	if err != nil {
		log.Printf("top scores: %v", err)
		return
	}
	if len(entries) == 0 {
		h.client.SendMessage(chatID, "🏆 The leaderboard is empty!", "", nil)
		return
	}

	medals := map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}
	lines := []string{"🏆 <b>Chess leaderboard (top 5):</b>\n"}
	for i, e := range entries {
		medal, ok := medals[i+1]
		if !ok {
			medal = fmt.Sprintf("%d.", i+1)
		}
		lines = append(lines, fmt.Sprintf("%s <b>%s</b>: %d points", medal, e.Username, e.Points))
	}
	h.client.SendMessage(chatID, strings.Join(lines, "\n"), "HTML", nil)
}

func (h *UpdateHandler) cmdMyScore(from *User, chatID int64) {
	if !h.gate.IsAuthorized(from.ID) {
		h.sendSubscribePrompt(chatID)
		return
	}

	entry, err := h.store.PlayerScore(from.ID)
	if err != nil {
		log.Printf("player score: %v", err)
		return
	}
	if entry == nil {
		h.client.SendMessage(chatID,
			fmt.Sprintf("@%s you have no points yet! Play PvP games to earn some.", from.DisplayName()),
			"", nil)
		return
	}
	h.client.SendMessage(chatID,
		fmt.Sprintf("@%s your chess score: %d points", from.DisplayName(), entry.Points),
		"", nil)
}

func (h *UpdateHandler) cmdHelp(from *User, chatID int64) {
	if !h.gate.IsAuthorized(from.ID) {
		h.sendSubscribePrompt(chatID)
		return
	}

	help := "🛡️ <b>Chess bot guide</b>\n\n" +
		"<b>Commands:</b>\n" +
		"- /chess — start and show the menu\n" +
		"- ⚔️ New challenge — challenge a player in the chat\n" +
		"- 🏆 Leaderboard — top 5 players by points\n" +
		"- 📊 My score — your personal points\n" +
		"- 🤖 Play vs bot — practice game, no points\n\n" +
		"<b>Points (PvP only):</b>\n" +
		"- Win: 3 points\n" +
		"- Draw: 1 point\n" +
		"- Loss: 0 points\n\n" +
		"<b>How to play:</b>\n" +
		"Tap one of your pieces, then tap a highlighted square to move. " +
		"🔵 marks a move, 🔴 marks a capture. Checkmate the enemy king to win!\n\n" +
		"Enjoy! ♟️"
	h.client.SendMessage(chatID, help, "HTML", nil)
}

func (h *UpdateHandler) sendSubscribePrompt(chatID int64) {
	h.client.SendMessage(chatID,
		"⚠️ Please join our channel to use the bot!",
		"", SubscribeKeyboard(h.gate.ChannelURL()))
}

func (h *UpdateHandler) handleCallback(cb *CallbackQuery) {
	switch {
	case cb.Data == "check_sub":
		h.onCheckSubscription(cb)
	case cb.Data == "mode_bot":
		h.onPlayBot(cb)
	case strings.HasPrefix(cb.Data, "join_"):
		h.onJoin(cb)
	case strings.HasPrefix(cb.Data, "cell_"):
		h.onCellTap(cb)
	default:
		h.client.AnswerCallbackQuery(cb.ID, "Unknown action", true)
	}
}

func (h *UpdateHandler) onCheckSubscription(cb *CallbackQuery) {
	if !h.gate.IsAuthorized(cb.From.ID) {
		h.client.AnswerCallbackQuery(cb.ID, "❌ Not subscribed yet!", true)
		return
	}

	h.client.AnswerCallbackQuery(cb.ID, "✔️ Verified!", false)
	if cb.Message != nil {
		h.client.DeleteMessage(cb.Message.Chat.ID, cb.Message.MessageID)
		h.client.SendMessage(cb.Message.Chat.ID, "Verified! Press /start to begin.", "", WelcomeKeyboard())
	}
}

func (h *UpdateHandler) onPlayBot(cb *CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	_, err := h.match.StartSoloGame(chatID, cb.From.ID, cb.From.DisplayName())
	if errors.Is(err, services.ErrUnauthorized) {
		h.client.AnswerCallbackQuery(cb.ID, "⚠️ Please join the channel first!", true)
		return
	}
	if err != nil {
		log.Printf("start solo game: %v", err)
		h.client.AnswerCallbackQuery(cb.ID, "⚠️ Could not start the game", true)
		return
	}

	h.client.DeleteMessage(chatID, cb.Message.MessageID)
	h.client.AnswerCallbackQuery(cb.ID, "✔ Game against the bot started", false)
}

func (h *UpdateHandler) onJoin(cb *CallbackQuery) {
	challengeID := strings.TrimPrefix(cb.Data, "join_")

	gameID, announcementID, err := h.match.AcceptChallenge(challengeID, cb.From.ID, cb.From.DisplayName())
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		h.client.AnswerCallbackQuery(cb.ID, "⚠️ Please join the channel first!", true)
		return
	case errors.Is(err, services.ErrChallengeNotFound):
		h.client.AnswerCallbackQuery(cb.ID, "❌ This challenge is no longer available!", true)
		return
	case errors.Is(err, services.ErrSelfChallenge):
		h.client.AnswerCallbackQuery(cb.ID, "❌ You cannot play against yourself!", true)
		return
	case err != nil:
		log.Printf("accept challenge %s: %v", challengeID, err)
		h.client.AnswerCallbackQuery(cb.ID, "⚠️ Could not start the game", true)
		return
	}

	if announcementID > 0 && cb.Message != nil {
		h.client.DeleteMessage(cb.Message.Chat.ID, announcementID)
	}
	h.client.AnswerCallbackQuery(cb.ID, "🎮 Game on!", false)
	log.Printf("challenge %s accepted, game %s started", challengeID, gameID)
}

func (h *UpdateHandler) onCellTap(cb *CallbackQuery) {
	parts := strings.Split(cb.Data, "_")
	if len(parts) != 4 {
		h.client.AnswerCallbackQuery(cb.ID, "Invalid data", true)
		return
	}
	gameID := parts[1]
	row, errR := strconv.Atoi(parts[2])
	col, errC := strconv.Atoi(parts[3])
	if errR != nil || errC != nil {
		h.client.AnswerCallbackQuery(cb.ID, "Invalid data", true)
		return
	}

	result, err := h.games.SelectCell(gameID, cb.From.ID, row, col)
	switch {
	case errors.Is(err, services.ErrGameNotFound):
		h.client.AnswerCallbackQuery(cb.ID, "❌ This game is over!", true)
	case errors.Is(err, services.ErrUnauthorized):
		h.client.AnswerCallbackQuery(cb.ID, "⚠️ Please join the channel first!", true)
	case errors.Is(err, services.ErrNotAParticipant):
		h.client.AnswerCallbackQuery(cb.ID, "❌ This is not your game!", true)
	case errors.Is(err, services.ErrOutOfTurn):
		h.client.AnswerCallbackQuery(cb.ID, "⏳ Not your turn!", true)
	case errors.Is(err, services.ErrEmptyOrForeignCell):
		h.client.AnswerCallbackQuery(cb.ID, "❌ Pick one of your own pieces!", true)
	case err != nil:
		log.Printf("cell tap on game %s: %v", gameID, err)
		h.client.AnswerCallbackQuery(cb.ID, "⚠️ Something went wrong", true)
	default:
		h.answerTap(cb, result)
	}
}

func (h *UpdateHandler) answerTap(cb *CallbackQuery, result *services.TapResult) {
	switch result.Kind {
	case services.TapSelected:
		h.client.AnswerCallbackQuery(cb.ID, "✔ Selected "+result.Cell.Name(), false)
	case services.TapIllegal:
		h.client.AnswerCallbackQuery(cb.ID, "❌ Illegal move!", true)
	case services.TapGameOver:
		h.client.AnswerCallbackQuery(cb.ID, "🏁 Game over!", false)
	default:
		h.client.AnswerCallbackQuery(cb.ID, "", false)
	}
}

func isCommand(text, cmd string) bool {
	if !strings.HasPrefix(text, "/") {
		return false
	}
	first := strings.Fields(text)[0]
	first = strings.SplitN(first, "@", 2)[0]
	return first == "/"+cmd
}
