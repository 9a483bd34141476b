package usecase

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/bidtactoe-backend/internal/entity"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/game"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/service"
)

type playerRegistry interface {
	Register(connID, name string) (*entity.Player, error)
	Lookup(connID string) (*entity.Player, error)
}

// GameManager is the single entry point for every client command. One mutex
// serialises all of them: each command runs to completion before the next one
// touches any room, so the state machine itself needs no locking. Commands
// hand back per-recipient snapshots taken inside the critical section; the
// live room never leaves it.
type GameManager struct {
	logger *slog.Logger

	mu        sync.Mutex
	registry  playerRegistry
	directory *service.Directory
	lifecycle *service.Lifecycle
}

func NewGameManager(logger *slog.Logger, registry playerRegistry, directory *service.Directory, lifecycle *service.Lifecycle) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game-manager"),

		registry:  registry,
		directory: directory,
		lifecycle: lifecycle,
	}
}

// RegisterPlayer - binds a nickname and a starting balance to a connection.
func (that *GameManager) RegisterPlayer(connID, name string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.registry.Register(connID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}

	return player, nil
}

// PlayerInfo - the identity behind a connection, if it registered.
func (that *GameManager) PlayerInfo(connID string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.registry.Lookup(connID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

// CreateRoom - opens a room hosted by the connection's identity.
func (that *GameManager) CreateRoom(connID string, baseBid int) (*entity.RoomViews, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	host, err := that.registry.Lookup(connID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	room, err := that.directory.Create(host, baseBid)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return room.Views(), nil
}

// JoinRoom - seats the connection's identity on the O side of a room.
func (that *GameManager) JoinRoom(connID, code string) (*entity.RoomViews, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	joiner, err := that.registry.Lookup(connID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	room, err := that.directory.Join(code, joiner)
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	return room.Views(), nil
}

// SpectateRoom - attaches the connection as a read-only observer.
func (that *GameManager) SpectateRoom(connID, code string) (*entity.RoomViews, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := that.registry.Lookup(connID); err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	room, err := that.directory.Spectate(code, connID)
	if err != nil {
		return nil, fmt.Errorf("failed to spectate room: %w", err)
	}

	return room.Views(), nil
}

// SubmitBid - records a secret bid and, when it is the second of the round,
// resolves the pair. Balances are written back whenever the match ends here.
// On a rejected bid the snapshots of the untouched room are still returned.
func (that *GameManager) SubmitBid(code, mark string, amount int) (*entity.RoomViews, game.BidOutcome, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.directory.Get(code)
	if err != nil {
		return nil, game.BidPending, fmt.Errorf("failed to get room: %w", err)
	}

	outcome, err := game.SubmitBid(room, mark, amount)
	if err != nil {
		return room.Views(), outcome, fmt.Errorf("failed to submit bid: %w", err)
	}

	if room.IsFinished() {
		that.lifecycle.SyncBalances(room)
	}

	return room.Views(), outcome, nil
}

// PlaceMark - applies a placement. Invalid requests are silent no-ops; the
// returned bool reports whether anything changed.
func (that *GameManager) PlaceMark(code, mark string, cell int) (*entity.RoomViews, bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.directory.Get(code)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get room: %w", err)
	}

	changed := game.PlaceMark(room, mark, cell)
	if changed && room.IsFinished() {
		that.lifecycle.SyncBalances(room)
	}

	return room.Views(), changed, nil
}

// Surrender - the caller gives up; the opposite side takes the pot.
func (that *GameManager) Surrender(code, connID, mark string) (*entity.RoomViews, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.lifecycle.Surrender(code, connID, mark)
	if err != nil {
		return nil, fmt.Errorf("failed to surrender: %w", err)
	}

	return room.Views(), nil
}

// ResetGame - fresh round in the same room, balances preserved.
func (that *GameManager) ResetGame(code string) (*entity.RoomViews, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.lifecycle.Reset(code)
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	return room.Views(), nil
}

// RenameRoom - host-only display name change.
func (that *GameManager) RenameRoom(code, connID, name string) (*entity.RoomViews, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.lifecycle.Rename(code, connID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to rename room: %w", err)
	}

	return room.Views(), nil
}

// LeaveRoom - explicit departure of any participant.
func (that *GameManager) LeaveRoom(code, connID string) (*service.Departure, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	departure, err := that.lifecycle.Leave(code, connID)
	if err != nil {
		return nil, fmt.Errorf("failed to leave room: %w", err)
	}

	return departure, nil
}

// Disconnect - abrupt departure; also destroys the connection's identity.
// Returns nil when the connection was in no room.
func (that *GameManager) Disconnect(connID string) *service.Departure {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.lifecycle.Disconnect(connID)
}

// Listing - the public lobby listing; sweeps orphaned rooms as a side effect.
func (that *GameManager) Listing() []entity.RoomSummary {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.directory.Listing()
}

// PurgeRoom - deletes a room kept around for a grace period; reports whether
// it was still there.
func (that *GameManager) PurgeRoom(code string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.directory.Delete(code) {
		return false
	}

	that.logger.Info("purged room after grace delay", "code", code)

	return true
}
