package service

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/rocketscienceinc/bidtactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/entity"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/pkg"
)

const maxCodeAttempts = 32

var ErrNoFreeRoomCode = errors.New("could not allocate a unique room code")

// Directory owns every live room, keyed by room code.
type Directory struct {
	logger *slog.Logger
	rooms  map[string]*entity.Room
}

func NewDirectory(logger *slog.Logger) *Directory {
	return &Directory{
		logger: logger.With("component", "directory"),
		rooms:  make(map[string]*entity.Room),
	}
}

// Create - opens a room on one of the fixed stake tiers, hosted by a player
// whose balance covers the tier.
func (that *Directory) Create(host *entity.Player, baseBid int) (*entity.Room, error) {
	if !entity.IsValidBaseBid(baseBid) {
		return nil, apperror.ErrInvalidBaseBid
	}

	if host.Points < baseBid {
		return nil, apperror.ErrInsufficientPoints
	}

	code, err := that.generateCode()
	if err != nil {
		return nil, err
	}

	room := entity.NewRoom(code, host, baseBid)
	that.rooms[code] = room

	that.logger.Info("room created", "code", code, "baseBid", baseBid, "host", host.Name)

	return room, nil
}

// Join - seats a player on the O side.
func (that *Directory) Join(code string, joiner *entity.Player) (*entity.Room, error) {
	room, err := that.Get(code)
	if err != nil {
		return nil, err
	}

	if room.OccupantCount() >= 2 {
		return nil, apperror.ErrRoomFull
	}

	if joiner.Points < room.BaseBid {
		return nil, apperror.ErrInsufficientPoints
	}

	room.PlayerO = joiner.ID
	room.PlayerOName = joiner.Name
	room.Balances.O = joiner.Points
	room.OpponentLeft = false

	return room, nil
}

// Spectate - attaches a read-only observer; no balance check.
func (that *Directory) Spectate(code, viewerID string) (*entity.Room, error) {
	room, err := that.Get(code)
	if err != nil {
		return nil, err
	}

	room.Spectators[viewerID] = struct{}{}

	return room, nil
}

func (that *Directory) Get(code string) (*entity.Room, error) {
	room, ok := that.rooms[code]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// Replace - swaps the stored room for a rebuilt round of the same code.
func (that *Directory) Replace(room *entity.Room) {
	that.rooms[room.Code] = room
}

// Delete - removes a room; reports whether it still existed.
func (that *Directory) Delete(code string) bool {
	if _, ok := that.rooms[code]; !ok {
		return false
	}

	delete(that.rooms, code)

	return true
}

// FindByOccupant - the room the connection participates in, as contestant or
// spectator, or nil.
func (that *Directory) FindByOccupant(connID string) *entity.Room {
	for _, room := range that.rooms {
		if room.PlayerX == connID || room.PlayerO == connID || room.IsSpectator(connID) {
			return room
		}
	}

	return nil
}

// Listing - the public lobby view. Before listing, rooms with no occupants, or
// a single occupant whose opponent departed, are deleted; the sweep keeps the
// directory consistent without a separate timer.
func (that *Directory) Listing() []entity.RoomSummary {
	summaries := make([]entity.RoomSummary, 0, len(that.rooms))

	for code, room := range that.rooms {
		count := room.OccupantCount()
		if count == 0 || (count == 1 && room.OpponentLeft) {
			delete(that.rooms, code)
			that.logger.Info("swept orphaned room", "code", code)
			continue
		}

		summaries = append(summaries, room.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Code < summaries[j].Code
	})

	return summaries
}

// generateCode draws random codes until one is free of the live room set.
func (that *Directory) generateCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := pkg.GenerateRoomCode()
		if code == "" {
			continue
		}

		if _, taken := that.rooms[code]; !taken {
			return code, nil
		}
	}

	return "", ErrNoFreeRoomCode
}
