// Package ws is the protocol layer: it binds socket connections to rooms,
// drives the submit -> countdown -> reveal round sequence and routes
// disconnects into room cleanup.
package ws

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/janbeck/rpsduel/internal/config"
	"github.com/janbeck/rpsduel/internal/game"
	"github.com/janbeck/rpsduel/internal/leaderboard"
)

// Reactions a player may forward to their opponent.
var allowedReactions = map[string]struct{}{
	"😂": {}, "🔥": {}, "👀": {}, "💀": {}, "🙏": {},
}

type Server struct {
	RM  *game.RoomManager
	LB  *leaderboard.Store
	cfg config.Config

	io *socketio.Server

	mu    sync.Mutex
	conns map[string]socketio.Conn // socketID -> Conn
}

func New(rm *game.RoomManager, lb *leaderboard.Store, cfg config.Config) *Server {
	return &Server{RM: rm, LB: lb, cfg: cfg, conns: make(map[string]socketio.Conn)}
}

// Mount attaches the Socket.IO server with all game handlers to the given
// Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		srv.addConn(s)
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "ping", func(s socketio.Conn) {
		s.Emit("pong")
	})

	io.OnEvent("/", "create_room", func(s socketio.Conn, payload struct {
		PlayerName string `json:"playerName"`
	}) {
		defer srv.guard(s, "create_room")()
		if strings.TrimSpace(payload.PlayerName) == "" {
			s.Emit("room_created", map[string]any{"error": "Invalid playerName"})
			return
		}
		room, _ := srv.RM.Create(payload.PlayerName, s.ID())
		s.Join(room.Code)
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Msg("create_room")
		s.Emit("room_created", map[string]any{"roomCode": room.Code})
	})

	io.OnEvent("/", "play_vs_ai", func(s socketio.Conn, payload struct {
		PlayerName string `json:"playerName"`
		Difficulty string `json:"difficulty"`
	}) {
		defer srv.guard(s, "play_vs_ai")()
		if strings.TrimSpace(payload.PlayerName) == "" {
			s.Emit("room_created", map[string]any{"error": "Invalid playerName"})
			return
		}
		d := game.ParseDifficulty(payload.Difficulty)
		room, _ := srv.RM.CreateAIRoom(payload.PlayerName, s.ID(), d)
		s.Join(room.Code)
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Str("difficulty", string(d)).Msg("play_vs_ai")
		s.Emit("room_created", map[string]any{"roomCode": room.Code})
		s.Emit("game_ready", map[string]any{"opponentName": "AI"})
	})

	io.OnEvent("/", "join_room", func(s socketio.Conn, payload struct {
		RoomCode   string `json:"roomCode"`
		PlayerName string `json:"playerName"`
	}) {
		defer srv.guard(s, "join_room")()
		if strings.TrimSpace(payload.PlayerName) == "" || strings.TrimSpace(payload.RoomCode) == "" {
			s.Emit("room_joined", map[string]any{"error": "Invalid roomCode or playerName"})
			return
		}
		room, joiner, err := srv.RM.Join(payload.RoomCode, payload.PlayerName, s.ID())
		if err != nil {
			s.Emit("room_joined", map[string]any{"error": joinError(err)})
			return
		}
		s.Join(room.Code)
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Msg("join_room")
		if host, ok := room.Opponent(s.ID()); ok {
			srv.emitTo(host.ConnID, "opponent_joined", map[string]any{"opponentName": joiner.Name})
			s.Emit("game_ready", map[string]any{"opponentName": host.Name})
		}
	})

	io.OnEvent("/", "submit_choice", func(s socketio.Conn, payload struct {
		Choice string `json:"choice"`
	}) {
		defer srv.guard(s, "submit_choice")()
		choice, ok := game.ParseChoice(payload.Choice)
		if !ok {
			s.Emit("reveal_result", map[string]any{"error": "Invalid choice"})
			return
		}
		room, ok := srv.RM.ByConn(s.ID())
		if !ok {
			return
		}
		state, err := room.SubmitChoice(s.ID(), choice)
		if err != nil {
			return
		}
		if state != game.RoundReady {
			s.Emit("waiting_for_opponent", map[string]any{})
			return
		}
		log.Info().Str("code", room.Code).Msg("round ready, starting countdown")
		io.BroadcastToRoom("/", room.Code, "start_countdown")
		time.AfterFunc(srv.cfg.Countdown, func() { srv.resolve(room) })
	})

	io.OnEvent("/", "send_reaction", func(s socketio.Conn, payload struct {
		Emoji string `json:"emoji"`
	}) {
		defer srv.guard(s, "send_reaction")()
		if _, ok := allowedReactions[payload.Emoji]; !ok {
			return
		}
		room, ok := srv.RM.ByConn(s.ID())
		if !ok || room.IsAIRoom() {
			return
		}
		if opp, ok := room.Opponent(s.ID()); ok {
			srv.emitTo(opp.ConnID, "reaction_received", map[string]any{"emoji": payload.Emoji})
		}
	})

	io.OnEvent("/", "request_rematch", func(s socketio.Conn) {
		defer srv.guard(s, "request_rematch")()
		room, ok := srv.RM.ByConn(s.ID())
		if !ok {
			return
		}
		ready, err := room.RequestRematch(s.ID())
		if err != nil || !ready {
			return
		}
		log.Info().Str("code", room.Code).Msg("rematch ready")
		io.BroadcastToRoom("/", room.Code, "rematch_ready", map[string]any{})
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.removeConn(s)
		srv.handleLeave(s.ID())
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket.io serve")
		}
	}()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", srv.cfg.CORSOrigin)
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// resolve fires when the countdown elapses. Room.Resolve re-reads state
// under the room lock and reports false if a disconnect emptied the round
// in the meantime, in which case there is nothing to emit.
func (srv *Server) resolve(room *game.Room) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("code", room.Code).Interface("panic", r).Msg("round resolution failed")
		}
	}()
	res, ok := room.Resolve()
	if !ok {
		log.Debug().Str("code", room.Code).Msg("round vanished before resolution")
		return
	}
	for _, pr := range res.Results {
		if pr.Player.ConnID == game.AIConnID {
			continue
		}
		srv.emitTo(pr.Player.ConnID, "reveal_result", map[string]any{
			"yourChoice":     pr.YourChoice,
			"opponentChoice": pr.OpponentChoice,
			"winner":         pr.Winner,
			"yourScore":      pr.YourScore,
			"opponentScore":  pr.OpponentScore,
		})
	}
	if res.AIRoom {
		return
	}
	// Ranking writes are best-effort; the round result is already out.
	for _, pr := range res.Results {
		if err := srv.LB.Record(pr.Player.Name, storeOutcome(pr.Winner)); err != nil {
			log.Error().Err(err).Str("name", pr.Player.Name).Msg("record result")
		}
	}
	srv.io.BroadcastToRoom("/", room.Code, "leaderboard_update", map[string]any{
		"topPlayers": srv.LB.Top(srv.cfg.LeaderboardSize),
	})
}

// handleLeave runs the disconnect path: scripted-opponent rooms die with
// their human, two-human rooms notify the survivor and shrink, empty rooms
// are deleted.
func (srv *Server) handleLeave(connID string) {
	room, ok := srv.RM.ByConn(connID)
	if !ok {
		return
	}
	if room.IsAIRoom() {
		srv.RM.Delete(room.Code)
		log.Info().Str("code", room.Code).Msg("ai room deleted on disconnect")
		return
	}
	if opp, ok := room.Opponent(connID); ok {
		srv.emitTo(opp.ConnID, "opponent_disconnected", map[string]any{})
	}
	if room.RemovePlayer(connID) == 0 {
		srv.RM.Delete(room.Code)
		log.Info().Str("code", room.Code).Msg("empty room deleted")
	}
}

// guard converts a handler panic into a generic error reply so a bad
// command never kills the connection or the process.
func (srv *Server) guard(s socketio.Conn, event string) func() {
	return func() {
		if r := recover(); r != nil {
			log.Error().Str("sid", s.ID()).Str("event", event).Interface("panic", r).Msg("command handler panicked")
			s.Emit("error", map[string]any{"code": "internal_error", "message": "Server error"})
		}
	}
}

func (srv *Server) addConn(s socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.conns[s.ID()] = s
}

func (srv *Server) removeConn(s socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	delete(srv.conns, s.ID())
}

func (srv *Server) emitTo(connID, event string, payload any) {
	srv.mu.Lock()
	c := srv.conns[connID]
	srv.mu.Unlock()
	if c != nil {
		c.Emit(event, payload)
	}
}

func joinError(err error) string {
	switch err {
	case game.ErrRoomNotFound:
		return "Room not found"
	case game.ErrRoomFull:
		return "Room is full"
	default:
		return "Failed to join room"
	}
}

func storeOutcome(winner string) leaderboard.Outcome {
	switch winner {
	case "you":
		return leaderboard.Win
	case "opponent":
		return leaderboard.Loss
	default:
		return leaderboard.Tie
	}
}
