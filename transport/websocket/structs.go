package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/bidtactoe-backend/internal/entity"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries every field a client action or server notice may use.
type Payload struct {
	Name    string               `json:"name,omitempty"`
	Code    string               `json:"code,omitempty"`
	Mark    string               `json:"mark,omitempty"`
	BaseBid int                  `json:"base_bid,omitempty"`
	Bid     int                  `json:"bid,omitempty"`
	Cell    *int                 `json:"cell,omitempty"`
	Count   int                  `json:"count,omitempty"`
	Player  *entity.Player       `json:"player,omitempty"`
	Room    *entity.Room         `json:"room,omitempty"`
	Rooms   []entity.RoomSummary `json:"rooms,omitempty"`
	Error   string               `json:"error,omitempty"`
}

const (
	actionRegister  = "player:register"
	actionInfo      = "player:info"
	actionCreate    = "room:create"
	actionJoin      = "room:join"
	actionSpectate  = "room:spectate"
	actionList      = "room:list"
	actionBid       = "room:bid"
	actionMark      = "room:mark"
	actionSurrender = "room:surrender"
	actionReset     = "room:reset"
	actionLeave     = "room:leave"
	actionRename    = "room:name"

	noticeRegistered       = "player:registered"
	noticeRegisterRequired = "player:register_required"
	noticeCreated          = "room:created"
	noticeJoined           = "room:joined"
	noticeSpectating       = "room:spectating"
	noticeState            = "room:state"
	noticeBidTie           = "room:bid_tie"
	noticeOpponentLeft     = "room:opponent_left"
	noticeHostLeft         = "room:host_left"
	noticeSpectators       = "room:spectators"
	noticeError            = "error"
)
