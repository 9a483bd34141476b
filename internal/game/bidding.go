package game

import (
	"github.com/rocketscienceinc/bidtactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/entity"
)

// BidOutcome tells the caller what a bid submission did to the room.
type BidOutcome int

const (
	// BidPending - the bid was accepted; the opponent has not bid yet.
	BidPending BidOutcome = iota
	// BidDecided - both bids were in and the higher one won the placement right.
	BidDecided
	// BidTie - equal bids were rolled back; the round restarts.
	BidTie
	// BidDraw - the third consecutive tie ended the match as a draw.
	BidDraw
)

// SubmitBid validates and records a secret bid for one side. When the second
// bid of the round arrives, the round is resolved in the same step.
func SubmitBid(room *entity.Room, mark string, amount int) (BidOutcome, error) {
	if !room.IsBidding() || room.PendingBids.Get(mark) != nil {
		return BidPending, apperror.ErrAlreadyBid
	}

	if amount < 1 {
		return BidPending, apperror.ErrBidTooLow
	}

	if amount > room.BaseBid {
		return BidPending, apperror.ErrBidExceedsBase
	}

	if room.TotalBids.Get(mark)+amount > room.BaseBid {
		return BidPending, apperror.ErrBidExceedsBudget
	}

	room.PendingBids.Set(mark, amount)
	room.TotalBids.Add(mark, amount)
	room.RemainingBids.Set(mark, room.BaseBid-room.TotalBids.Get(mark))

	if !room.PendingBids.BothSet() {
		return BidPending, nil
	}

	return resolveBids(room), nil
}

// resolveBids settles a complete bid pair: higher bid buys the placement right
// and both sides pay into the pot; equal bids are rolled back entirely.
func resolveBids(room *entity.Room) BidOutcome {
	bidX := *room.PendingBids.X
	bidO := *room.PendingBids.O
	room.PendingBids.Clear()

	if bidX == bidO {
		room.TotalBids.X -= bidX
		room.TotalBids.O -= bidO
		room.RemainingBids.X = room.BaseBid - room.TotalBids.X
		room.RemainingBids.O = room.BaseBid - room.TotalBids.O
		room.TieCount++

		if room.TieCount >= entity.MaxConsecutiveTies {
			room.RefundPot()
			return BidDraw
		}

		return BidTie
	}

	winner := entity.PlayerX
	if bidO > bidX {
		winner = entity.PlayerO
	}

	room.Balances.X -= bidX
	room.Balances.O -= bidO
	room.TieCount = 0
	room.Turn = winner
	room.Phase = entity.PhasePlacing

	settleIfExhausted(room)

	return BidDecided
}

// settleIfExhausted ends the match against a side that ran out of points or of
// bid budget without a completed line. The X side is examined first.
func settleIfExhausted(room *entity.Room) bool {
	if room.IsFinished() {
		return false
	}

	if room.Balances.X <= 0 || room.RemainingBids.X <= 0 {
		room.AwardPot(entity.PlayerO)
		return true
	}

	if room.Balances.O <= 0 || room.RemainingBids.O <= 0 {
		room.AwardPot(entity.PlayerX)
		return true
	}

	return false
}
