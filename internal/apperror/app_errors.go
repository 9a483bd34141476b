package apperror

import "errors"

var (
	ErrInvalidName        = errors.New("nickname must not be empty")
	ErrInvalidBaseBid     = errors.New("invalid base bid option")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrAlreadyBid         = errors.New("bid already submitted this round")
	ErrBidTooLow          = errors.New("bid must be at least 1 point")
	ErrBidExceedsBase     = errors.New("bid exceeds the room base bid")
	ErrBidExceedsBudget   = errors.New("total bids would exceed the room base bid")
	ErrUnauthorized       = errors.New("operation not allowed for this player")
	ErrOpponentGone       = errors.New("opponent has left the room")
	ErrPlayerNotFound     = errors.New("player not found")
)
