package service

import (
	"log/slog"

	"github.com/rocketscienceinc/bidtactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/entity"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/game"
)

const (
	RoleHost      = "host"
	RoleGuest     = "guest"
	RoleSpectator = "spectator"
)

type playerRegistry interface {
	SetBalance(connID string, points int)
	Remove(connID string)
}

// Departure describes what a leave or disconnect did to a room, so the
// transport knows which notices to send and whether a purge is pending. It
// carries snapshots, never the live room.
type Departure struct {
	Views        *entity.RoomViews
	Code         string
	Role         string
	Forfeited    bool
	HostLeft     bool
	OpponentLeft bool
	RoomDeleted  bool
	PurgeLater   bool
}

// Lifecycle handles departures, surrender, reset and renaming, including the
// forfeiture settlements they trigger.
type Lifecycle struct {
	logger    *slog.Logger
	directory *Directory
	registry  playerRegistry
}

func NewLifecycle(logger *slog.Logger, directory *Directory, registry playerRegistry) *Lifecycle {
	return &Lifecycle{
		logger:    logger.With("component", "lifecycle"),
		directory: directory,
		registry:  registry,
	}
}

// Leave - handles an explicit leave request from any participant of the room.
func (that *Lifecycle) Leave(code, connID string) (*Departure, error) {
	room, err := that.directory.Get(code)
	if err != nil {
		return nil, err
	}

	switch connID {
	case room.PlayerX:
		return that.leaveHost(room), nil
	case room.PlayerO:
		return that.leaveGuest(room), nil
	default:
		return that.leaveSpectator(room, connID), nil
	}
}

// leaveHost: mid-match the host forfeits and the room lingers briefly so the
// winner can see the result; otherwise the room dies with its host.
func (that *Lifecycle) leaveHost(room *entity.Room) *Departure {
	if room.InProgress() {
		that.settle(room, entity.PlayerO)
		that.logger.Info("host left mid-match, forfeited to O", "code", room.Code)

		return &Departure{
			Views:      room.Views(),
			Code:       room.Code,
			Role:       RoleHost,
			Forfeited:  true,
			PurgeLater: true,
		}
	}

	that.directory.Delete(room.Code)
	that.logger.Info("host left, room deleted", "code", room.Code)

	return &Departure{
		Views:       room.Views(),
		Code:        room.Code,
		Role:        RoleHost,
		HostLeft:    true,
		RoomDeleted: true,
	}
}

// leaveGuest: mid-match the guest forfeits to the host and the room is kept
// with the slot cleared; otherwise the round resets to fresh bidding.
func (that *Lifecycle) leaveGuest(room *entity.Room) *Departure {
	if room.InProgress() {
		that.settle(room, entity.PlayerX)
		room.PlayerO = ""
		room.PlayerOName = ""
		room.OpponentLeft = true
		that.logger.Info("guest left mid-match, forfeited to X", "code", room.Code)

		return &Departure{
			Views:        room.Views(),
			Code:         room.Code,
			Role:         RoleGuest,
			Forfeited:    true,
			OpponentLeft: true,
		}
	}

	room.PlayerO = ""
	room.PlayerOName = ""
	fresh := entity.NewRound(room)
	fresh.OpponentLeft = true
	that.directory.Replace(fresh)

	return &Departure{
		Views:        fresh.Views(),
		Code:         fresh.Code,
		Role:         RoleGuest,
		OpponentLeft: true,
	}
}

func (that *Lifecycle) leaveSpectator(room *entity.Room, connID string) *Departure {
	delete(room.Spectators, connID)

	return &Departure{
		Views: room.Views(),
		Code:  room.Code,
		Role:  RoleSpectator,
	}
}

// Disconnect - handles an abrupt connection loss. Unlike an explicit leave,
// a host disconnect deletes the room whether or not a match is running, and a
// guest disconnect never settles a forfeiture; it only resets the round. The
// identity behind the connection is destroyed either way.
func (that *Lifecycle) Disconnect(connID string) *Departure {
	defer that.registry.Remove(connID)

	room := that.directory.FindByOccupant(connID)
	if room == nil {
		return nil
	}

	switch connID {
	case room.PlayerX:
		that.directory.Delete(room.Code)
		that.logger.Info("host disconnected, room deleted", "code", room.Code)

		return &Departure{
			Views:       room.Views(),
			Code:        room.Code,
			Role:        RoleHost,
			HostLeft:    true,
			RoomDeleted: true,
		}
	case room.PlayerO:
		room.PlayerO = ""
		room.PlayerOName = ""
		fresh := entity.NewRound(room)
		fresh.OpponentLeft = true
		that.directory.Replace(fresh)
		that.logger.Info("guest disconnected, round reset", "code", room.Code)

		return &Departure{
			Views:        fresh.Views(),
			Code:         fresh.Code,
			Role:         RoleGuest,
			OpponentLeft: true,
		}
	default:
		delete(room.Spectators, connID)

		return &Departure{
			Views: room.Views(),
			Code:  room.Code,
			Role:  RoleSpectator,
		}
	}
}

// Surrender - the caller gives up its side; the opposite side takes the pot.
func (that *Lifecycle) Surrender(code, connID, mark string) (*entity.Room, error) {
	room, err := that.directory.Get(code)
	if err != nil {
		return nil, err
	}

	if room.MarkOf(connID) != mark {
		return nil, apperror.ErrUnauthorized
	}

	if room.IsFinished() {
		return room, nil
	}

	game.Surrender(room, mark)
	that.SyncBalances(room)

	return room, nil
}

// Reset - starts a new match in the same room, keeping both balances. Valid
// only while both contestants are seated.
func (that *Lifecycle) Reset(code string) (*entity.Room, error) {
	room, err := that.directory.Get(code)
	if err != nil {
		return nil, err
	}

	if room.PlayerX == "" || room.PlayerO == "" {
		return nil, apperror.ErrOpponentGone
	}

	fresh := entity.NewRound(room)
	that.directory.Replace(fresh)

	return fresh, nil
}

// Rename - host-only room display name change.
func (that *Lifecycle) Rename(code, connID, name string) (*entity.Room, error) {
	room, err := that.directory.Get(code)
	if err != nil {
		return nil, err
	}

	if room.PlayerX != connID {
		return nil, apperror.ErrUnauthorized
	}

	room.Name = name

	return room, nil
}

// SyncBalances - writes the room balances of both seated sides back to the
// registry. Called after every settlement.
func (that *Lifecycle) SyncBalances(room *entity.Room) {
	if room.PlayerX != "" {
		that.registry.SetBalance(room.PlayerX, room.Balances.X)
	}

	if room.PlayerO != "" {
		that.registry.SetBalance(room.PlayerO, room.Balances.O)
	}
}

func (that *Lifecycle) settle(room *entity.Room, winnerMark string) {
	room.AwardPot(winnerMark)
	that.SyncBalances(room)
}
