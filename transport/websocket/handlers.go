package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/bidtactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/entity"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/game"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/service"
)

func parsePayload(message *Message) (*Payload, error) {
	var payload Payload

	if len(message.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

func (that *Server) handleRegister(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	player, err := that.manager.RegisterPlayer(conn.id, payload.Name)
	if err != nil {
		return err
	}

	that.logger.Info("player registered", "connID", conn.id, "name", player.Name)

	return that.sendMessage(conn, noticeRegistered, &Payload{Player: player})
}

func (that *Server) handleInfo(conn *connection, _ *Message) error {
	player, err := that.manager.PlayerInfo(conn.id)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return that.sendMessage(conn, noticeRegisterRequired, &Payload{})
	}

	if err != nil {
		return err
	}

	return that.sendMessage(conn, actionInfo, &Payload{Player: player})
}

func (that *Server) handleCreateRoom(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	views, err := that.manager.CreateRoom(conn.id, payload.BaseBid)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return that.sendMessage(conn, noticeRegisterRequired, &Payload{})
	}

	if err != nil {
		return err
	}

	if err = that.sendMessage(conn, noticeCreated, &Payload{Code: views.Code, Mark: entity.PlayerX}); err != nil {
		return err
	}

	that.broadcastRoomList()

	return nil
}

func (that *Server) handleJoinRoom(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	views, err := that.manager.JoinRoom(conn.id, payload.Code)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return that.sendMessage(conn, noticeRegisterRequired, &Payload{})
	}

	if err != nil {
		return err
	}

	if err = that.sendMessage(conn, noticeJoined, &Payload{Code: views.Code, Mark: entity.PlayerO}); err != nil {
		return err
	}

	that.broadcastRoom(views)
	that.broadcastRoomList()

	return nil
}

func (that *Server) handleSpectateRoom(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	views, err := that.manager.SpectateRoom(conn.id, payload.Code)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return that.sendMessage(conn, noticeRegisterRequired, &Payload{})
	}

	if err != nil {
		return err
	}

	if err = that.sendMessage(conn, noticeSpectating, &Payload{Code: views.Code, Room: views.Recipients[conn.id]}); err != nil {
		return err
	}

	that.sendToRoom(views, noticeSpectators, &Payload{Count: views.SpectatorCount}, "")
	that.broadcastRoomList()

	return nil
}

func (that *Server) handleRoomList(conn *connection, msg *Message) error {
	return that.sendMessage(conn, msg.Action, &Payload{Rooms: that.manager.Listing()})
}

func (that *Server) handleBid(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	views, outcome, err := that.manager.SubmitBid(payload.Code, payload.Mark, payload.Bid)
	if err != nil {
		return err
	}

	that.broadcastRoom(views)

	switch outcome {
	case game.BidTie:
		that.sendToRoom(views, noticeBidTie, &Payload{Count: views.TieCount}, "")
	case game.BidDecided, game.BidDraw:
		that.broadcastRoomList()
	case game.BidPending:
	}

	return nil
}

func (that *Server) handleMark(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	if payload.Cell == nil {
		return errors.New("cell is required")
	}

	views, changed, err := that.manager.PlaceMark(payload.Code, payload.Mark, *payload.Cell)
	if err != nil {
		return err
	}

	// invalid placements are silently ignored
	if !changed {
		return nil
	}

	that.broadcastRoom(views)
	that.broadcastRoomList()

	return nil
}

func (that *Server) handleSurrender(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	views, err := that.manager.Surrender(payload.Code, conn.id, payload.Mark)
	if err != nil {
		return err
	}

	that.broadcastRoom(views)
	that.broadcastRoomList()

	return nil
}

func (that *Server) handleReset(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	views, err := that.manager.ResetGame(payload.Code)
	if err != nil {
		return err
	}

	that.broadcastRoom(views)
	that.broadcastRoomList()

	return nil
}

func (that *Server) handleRename(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	views, err := that.manager.RenameRoom(payload.Code, conn.id, payload.Name)
	if err != nil {
		return err
	}

	that.sendToRoom(views, actionRename, &Payload{Code: views.Code, Name: views.Name}, "")
	that.broadcastRoomList()

	return nil
}

func (that *Server) handleLeave(conn *connection, msg *Message) error {
	payload, err := parsePayload(msg)
	if err != nil {
		return err
	}

	departure, err := that.manager.LeaveRoom(payload.Code, conn.id)
	if err != nil {
		return err
	}

	that.notifyDeparture(departure, conn.id)

	if departure.PurgeLater {
		that.schedulePurge(departure.Code)
	}

	that.broadcastRoomList()

	return nil
}

// notifyDeparture - translates a lifecycle departure into the notices the
// remaining participants should see.
func (that *Server) notifyDeparture(departure *service.Departure, leaverID string) {
	views := departure.Views

	switch {
	case departure.HostLeft:
		that.sendToRoom(views, noticeHostLeft, &Payload{Code: departure.Code}, leaverID)
	case departure.OpponentLeft:
		that.broadcastRoom(views)
		that.sendToRoom(views, noticeOpponentLeft, &Payload{Code: departure.Code}, leaverID)
	case departure.Forfeited:
		that.broadcastRoom(views)
	case departure.Role == service.RoleSpectator:
		that.sendToRoom(views, noticeSpectators, &Payload{Count: views.SpectatorCount}, leaverID)
	}
}

// schedulePurge - deletes a forfeited room after the grace delay so the
// winner's client has time to render the result.
func (that *Server) schedulePurge(code string) {
	time.AfterFunc(that.purgeDelay, func() {
		if that.manager.PurgeRoom(code) {
			that.broadcastRoomList()
		}
	})
}

func (that *Server) sendMessage(conn *connection, action string, payload *Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return conn.send(&Message{Action: action, Payload: raw})
}

func (that *Server) sendError(conn *connection, opErr error) error {
	return that.sendMessage(conn, noticeError, &Payload{Error: opErr.Error()})
}

// sendToRoom - sends one message to every recipient of a snapshot set except excludeID.
func (that *Server) sendToRoom(views *entity.RoomViews, action string, payload *Payload, excludeID string) {
	log := that.logger.With("method", "sendToRoom", "code", views.Code)

	for connID := range views.Recipients {
		if connID == excludeID {
			continue
		}

		conn, ok := that.connectionByID(connID)
		if !ok {
			continue
		}

		if err := that.sendMessage(conn, action, payload); err != nil {
			log.Error("failed to send room message", "connID", connID, "error", err)
		}
	}
}

// broadcastRoom - pushes each recipient its own snapshot: contestants see only
// their own pending bid, spectators neither. The snapshots were taken in one
// step, so every recipient sees the same state.
func (that *Server) broadcastRoom(views *entity.RoomViews) {
	log := that.logger.With("method", "broadcastRoom", "code", views.Code)

	for connID, snapshot := range views.Recipients {
		conn, ok := that.connectionByID(connID)
		if !ok {
			continue
		}

		if err := that.sendMessage(conn, noticeState, &Payload{Code: views.Code, Room: snapshot}); err != nil {
			log.Error("failed to send room state", "connID", connID, "error", err)
		}
	}
}

// broadcastRoomList - pushes the public lobby listing to every connected client.
func (that *Server) broadcastRoomList() {
	log := that.logger.With("method", "broadcastRoomList")

	listing := that.manager.Listing()

	that.connectionsMutex.RLock()
	conns := make([]*connection, 0, len(that.connections))
	for _, conn := range that.connections {
		conns = append(conns, conn)
	}
	that.connectionsMutex.RUnlock()

	for _, conn := range conns {
		if err := that.sendMessage(conn, actionList, &Payload{Rooms: listing}); err != nil {
			log.Error("failed to send room list", "connID", conn.id, "error", err)
		}
	}
}
