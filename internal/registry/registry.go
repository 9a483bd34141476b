package registry

import (
	"strings"
	"sync"

	"github.com/rocketscienceinc/bidtactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/entity"
)

// Registry maps live connection ids to display names and point balances. It is
// a passive store: balances are written into it by whoever settles a match.
type Registry struct {
	mu              sync.RWMutex
	startingBalance int
	players         map[string]*entity.Player
}

func New(startingBalance int) *Registry {
	return &Registry{
		startingBalance: startingBalance,
		players:         make(map[string]*entity.Player),
	}
}

// Register - creates the identity behind a connection. Re-registering replaces
// the stored name but never the balance.
func (that *Registry) Register(connID, name string) (*entity.Player, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, apperror.ErrInvalidName
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if existing, ok := that.players[connID]; ok {
		existing.Name = trimmed
		return existing, nil
	}

	player := &entity.Player{
		ID:     connID,
		Name:   trimmed,
		Points: that.startingBalance,
	}
	that.players[connID] = player

	return player, nil
}

func (that *Registry) Lookup(connID string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[connID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	return player, nil
}

// SetBalance - overwrites a balance after a settlement. Unknown ids are ignored:
// the identity may already be gone by the time a forfeiture settles.
func (that *Registry) SetBalance(connID string, points int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if player, ok := that.players[connID]; ok {
		player.Points = points
	}
}

// Remove - destroys the identity once its connection is gone.
func (that *Registry) Remove(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.players, connID)
}
