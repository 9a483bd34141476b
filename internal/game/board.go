package game

import "github.com/rocketscienceinc/bidtactoe-backend/internal/entity"

// PlaceMark writes a mark for the side that bought the placement right.
// Requests outside the placing phase, out of turn, out of range, or aimed at an
// occupied cell are ignored without touching the board. The returned bool
// reports whether the room changed.
func PlaceMark(room *entity.Room, mark string, cell int) bool {
	if !room.IsPlacing() || room.Turn != mark {
		return false
	}

	if cell < 0 || cell >= len(room.Board) {
		return false
	}

	if room.Board[cell] != entity.EmptyCell {
		return false
	}

	room.Board[cell] = mark

	switch result := room.DetermineGameResult(); result {
	case entity.PlayerX, entity.PlayerO:
		room.AwardPot(result)
		return true
	case entity.WinnerDraw:
		room.RefundPot()
		return true
	}

	room.PendingBids.Clear()
	room.Phase = entity.PhaseBidding
	settleIfExhausted(room)

	return true
}

// Surrender ends the match immediately in favour of the opposite side.
func Surrender(room *entity.Room, mark string) {
	if room.IsFinished() {
		return
	}

	room.AwardPot(entity.Opponent(mark))
}
