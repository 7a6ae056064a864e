package game

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotInRoom    = errors.New("not a member of this room")
)

// Codes avoid easily-confused characters (no I, O, 0, 1).
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// RoomManager owns every live room, keyed by code. The map is guarded by
// its own lock; each room serializes its own state, so unrelated rooms
// never contend.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room)}
}

// Create makes a room with a fresh unique code and the creator as host.
func (rm *RoomManager) Create(name, connID string) (*Room, *Player) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := randomCode(codeLength)
	for rm.rooms[code] != nil {
		code = randomCode(codeLength)
	}
	r := newRoom(code)
	r.mu.Lock()
	p := r.addPlayerLocked(name, connID)
	r.mu.Unlock()
	rm.rooms[code] = r
	return r, p
}

// CreateAIRoom makes a room whose second slot is a scripted opponent with
// the given difficulty and an empty move history.
func (rm *RoomManager) CreateAIRoom(name, connID string, d Difficulty) (*Room, *Player) {
	r, p := rm.Create(name, connID)
	r.mu.Lock()
	r.players = append(r.players, &Player{ID: AIConnID, Name: "AI", ConnID: AIConnID})
	r.scores[AIConnID] = &Score{}
	r.aiRoom = true
	r.aiDifficulty = d
	r.aiHistory = []Choice{}
	r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	r.mu.Unlock()
	return r, p
}

// Join adds a second player to the room with the given code. The code is
// trimmed and uppercased before lookup. Fails without mutating anything
// when the room is unknown or already full.
func (rm *RoomManager) Join(code, name, connID string) (*Room, *Player, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	rm.mu.RLock()
	r := rm.rooms[code]
	rm.mu.RUnlock()
	if r == nil {
		return nil, nil, ErrRoomNotFound
	}
	p, err := r.join(name, connID)
	if err != nil {
		return nil, nil, err
	}
	return r, p, nil
}

// ByConn finds the room a connection belongs to via a linear scan over
// live rooms.
func (rm *RoomManager) ByConn(connID string) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for _, r := range rm.rooms {
		r.mu.Lock()
		member := r.hasPlayer(connID)
		r.mu.Unlock()
		if member {
			return r, true
		}
	}
	return nil, false
}

// Delete removes a room from the registry.
func (rm *RoomManager) Delete(code string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.rooms, code)
}

// Count returns the number of live rooms.
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

func randomCode(n int) string {
	letters := []rune(codeAlphabet)
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
