package game

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// AIConnID is the synthetic connection handle occupying the second slot of
// a scripted-opponent room. It never disconnects on its own.
const AIConnID = "ai"

const maxNameLen = 64

// Player is one room membership, bound to a connection for its lifetime.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ConnID string `json:"-"`
}

// Score is a player's cumulative tally within a room.
type Score struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// RoundState reports where a submission left the room's round.
type RoundState int

const (
	// RoundWaiting means only one choice is in; the submitter waits.
	RoundWaiting RoundState = iota
	// RoundReady means both choices are in and resolution should be scheduled.
	RoundReady
	// RoundPending means a resolution is already scheduled; the submission
	// was rejected so it cannot interleave with the pending round.
	RoundPending
)

// PlayerResult is one participant's view of a resolved round.
type PlayerResult struct {
	Player         *Player
	YourChoice     Choice
	OpponentChoice Choice
	Winner         string // "you" | "opponent" | "tie"
	YourScore      Score
	OpponentScore  Score
}

// RoundResult is the full resolution of a round, one view per slot.
type RoundResult struct {
	AIRoom  bool
	Results [2]PlayerResult
}

// Room is a single match: 1-2 players, the current round's choices, the
// cumulative scores and the rematch votes. All mutation happens under the
// room's own lock; rooms are independent of each other.
type Room struct {
	Code string

	mu      sync.Mutex
	players []*Player
	choices map[string]Choice
	scores  map[string]*Score
	rematch map[string]struct{}
	pending bool

	aiRoom       bool
	aiDifficulty Difficulty
	aiHistory    []Choice
	rng          *rand.Rand
}

func newRoom(code string) *Room {
	return &Room{
		Code:    code,
		choices: make(map[string]Choice),
		scores:  make(map[string]*Score),
		rematch: make(map[string]struct{}),
	}
}

func (r *Room) addPlayerLocked(name, connID string) *Player {
	p := &Player{ID: uuid.NewString(), Name: cleanName(name), ConnID: connID}
	r.players = append(r.players, p)
	r.scores[connID] = &Score{}
	return p
}

func (r *Room) join(name, connID string) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) >= 2 {
		return nil, ErrRoomFull
	}
	return r.addPlayerLocked(name, connID), nil
}

// Host returns the first player (room creator).
func (r *Room) Host() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) == 0 {
		return nil
	}
	return r.players[0]
}

// Opponent returns the other player in the room, if any.
func (r *Room) Opponent(connID string) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.ConnID != connID {
			return p, true
		}
	}
	return nil, false
}

// IsAIRoom reports whether the second slot is a scripted opponent.
func (r *Room) IsAIRoom() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aiRoom
}

func (r *Room) hasPlayer(connID string) bool {
	for _, p := range r.players {
		if p.ConnID == connID {
			return true
		}
	}
	return false
}

// SubmitChoice records a choice for the current round. In a scripted-
// opponent room the counter-move is synthesized in the same step and the
// human's choice is appended to the opponent's history. The set-and-check
// is atomic: exactly one submission can observe the round becoming ready.
func (r *Room) SubmitChoice(connID string, c Choice) (RoundState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasPlayer(connID) {
		return RoundWaiting, ErrNotInRoom
	}
	if r.pending {
		return RoundPending, nil
	}
	r.choices[connID] = c
	if r.aiRoom && connID != AIConnID {
		r.choices[AIConnID] = AIChoice(r.aiHistory, r.aiDifficulty, r.rng)
		r.aiHistory = append(r.aiHistory, c)
	}
	if len(r.players) == 2 && len(r.choices) == 2 {
		r.pending = true
		return RoundReady, nil
	}
	return RoundWaiting, nil
}

// Resolve computes the round outcome, updates both cumulative scores and
// clears the round, all as one atomic step. It no-ops (returning false)
// when a needed player, choice or score is missing at fire time, which is
// how a resolution racing a disconnect resolves itself.
func (r *Room) Resolve() (*RoundResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) < 2 {
		return nil, false
	}
	p0, p1 := r.players[0], r.players[1]
	c0, ok0 := r.choices[p0.ConnID]
	c1, ok1 := r.choices[p1.ConnID]
	if !ok0 || !ok1 {
		return nil, false
	}
	s0, s1 := r.scores[p0.ConnID], r.scores[p1.ConnID]
	if s0 == nil || s1 == nil {
		return nil, false
	}

	var w0, w1 string
	switch DetermineWinner(c0, c1) {
	case OutcomeFirst:
		s0.Wins++
		s1.Losses++
		w0, w1 = "you", "opponent"
	case OutcomeSecond:
		s0.Losses++
		s1.Wins++
		w0, w1 = "opponent", "you"
	default:
		s0.Ties++
		s1.Ties++
		w0, w1 = "tie", "tie"
	}

	res := &RoundResult{
		AIRoom: r.aiRoom,
		Results: [2]PlayerResult{
			{Player: p0, YourChoice: c0, OpponentChoice: c1, Winner: w0, YourScore: *s0, OpponentScore: *s1},
			{Player: p1, YourChoice: c1, OpponentChoice: c0, Winner: w1, YourScore: *s1, OpponentScore: *s0},
		},
	}
	r.clearRoundLocked()
	return res, true
}

// ClearRound empties the current-round choices and rematch votes without
// touching cumulative scores.
func (r *Room) ClearRound() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearRoundLocked()
}

func (r *Room) clearRoundLocked() {
	r.choices = make(map[string]Choice)
	r.rematch = make(map[string]struct{})
	r.pending = false
}

// RequestRematch registers a rematch vote and reports whether consensus is
// reached. A scripted-opponent room needs only the human's vote; a
// two-human room needs both. Consensus clears the round.
func (r *Room) RequestRematch(connID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasPlayer(connID) {
		return false, ErrNotInRoom
	}
	if r.aiRoom {
		r.clearRoundLocked()
		return true, nil
	}
	r.rematch[connID] = struct{}{}
	if len(r.rematch) == len(r.players) {
		r.clearRoundLocked()
		return true, nil
	}
	return false, nil
}

// RemovePlayer drops a player and every trace of them from the current
// round, returning how many players remain.
func (r *Room) RemovePlayer(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.players[:0]
	for _, p := range r.players {
		if p.ConnID != connID {
			kept = append(kept, p)
		}
	}
	r.players = kept
	delete(r.choices, connID)
	delete(r.scores, connID)
	delete(r.rematch, connID)
	return len(r.players)
}

// PlayerCount returns the number of occupied slots.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}
	return name
}
