package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	// Given: a registered host
	host := &Player{ID: "conn-1", Name: "alice", Points: 100}

	// When: a room is created on the lowest tier
	room := NewRoom("123456", host, 10)

	// Then: the room starts in the bidding phase with the host on the X side
	require.NotNil(t, room)
	require.Equal(t, "123456", room.Code)
	require.Equal(t, "alice's room", room.Name)
	require.Equal(t, 10, room.BaseBid)
	require.Equal(t, PhaseBidding, room.Phase)
	require.Equal(t, PlayerX, room.Turn)
	require.Equal(t, "conn-1", room.PlayerX)
	require.Equal(t, "alice", room.PlayerXName)
	require.Equal(t, Points{X: 100, O: 0}, room.Balances)
	require.Equal(t, Points{X: 10, O: 10}, room.RemainingBids)
	require.Empty(t, room.PlayerO)
	require.NotNil(t, room.Spectators)
}

func TestNewRound(t *testing.T) {
	t.Run("keeps occupants and balances", func(t *testing.T) {
		// Given: a finished room with both sides seated
		prev := &Room{
			Code:        "123456",
			Name:        "alice's room",
			BaseBid:     100,
			Phase:       PhaseFinished,
			Winner:      PlayerX,
			Balances:    Points{X: 140, O: 60},
			TotalBids:   Points{X: 40, O: 40},
			TieCount:    2,
			PlayerX:     "conn-1",
			PlayerO:     "conn-2",
			PlayerXName: "alice",
			PlayerOName: "bob",
			Spectators:  map[string]struct{}{"conn-3": {}},
			Settled:     true,
		}

		// When: a fresh round is built from it
		room := NewRound(prev)

		// Then: only the persistent fields survive
		require.Equal(t, "123456", room.Code)
		require.Equal(t, "alice's room", room.Name)
		require.Equal(t, PhaseBidding, room.Phase)
		require.Equal(t, PlayerX, room.Turn)
		require.Equal(t, Points{X: 140, O: 60}, room.Balances)
		require.Equal(t, Points{X: 100, O: 100}, room.RemainingBids)
		require.Equal(t, Points{}, room.TotalBids)
		require.Zero(t, room.TieCount)
		require.Empty(t, room.Winner)
		require.False(t, room.Settled)
		require.Equal(t, prev.Spectators, room.Spectators)
	})

	t.Run("empty side keeps no balance", func(t *testing.T) {
		// Given: a room whose guest slot is already vacated
		prev := &Room{
			Code:     "123456",
			BaseBid:  10,
			Balances: Points{X: 120, O: 80},
			PlayerX:  "conn-1",
		}

		// When: a fresh round is built
		room := NewRound(prev)

		// Then: the vacant side's balance is zeroed
		require.Equal(t, Points{X: 120, O: 0}, room.Balances)
	})
}

func TestRoom_DetermineGameResult(t *testing.T) {
	t.Run("every winning line", func(t *testing.T) {
		// the three rows, three columns and two diagonals, spelled out so a
		// wrong entry in WinCombos cannot vouch for itself
		lines := [][3]int{
			{0, 1, 2},
			{3, 4, 5},
			{6, 7, 8},
			{0, 3, 6},
			{1, 4, 7},
			{2, 5, 8},
			{0, 4, 8},
			{2, 4, 6},
		}

		for _, line := range lines {
			// Given: a board with X on one full line
			room := &Room{}
			for _, cell := range line {
				room.Board[cell] = PlayerX
			}

			// Then: X wins
			require.Equal(t, PlayerX, room.DetermineGameResult())
		}

		require.Len(t, WinCombos, len(lines))
	})

	t.Run("no other triple wins", func(t *testing.T) {
		// Given: three X marks that do not form a line
		room := &Room{}
		room.Board[0] = PlayerX
		room.Board[1] = PlayerX
		room.Board[5] = PlayerX

		// Then: the board is still undecided
		require.Empty(t, room.DetermineGameResult())
	})

	t.Run("full board without a line is a draw", func(t *testing.T) {
		room := &Room{Board: [9]string{
			PlayerX, PlayerO, PlayerX,
			PlayerX, PlayerO, PlayerO,
			PlayerO, PlayerX, PlayerX,
		}}

		require.Equal(t, WinnerDraw, room.DetermineGameResult())
	})

	t.Run("open board is undecided", func(t *testing.T) {
		room := &Room{Board: [9]string{PlayerX, PlayerO}}

		require.Empty(t, room.DetermineGameResult())
	})
}

func TestRoom_AwardPot(t *testing.T) {
	// Given: a mid-match room with a 30 point pot
	room := &Room{
		Phase:     PhasePlacing,
		Balances:  Points{X: 80, O: 90},
		TotalBids: Points{X: 20, O: 10},
	}

	// When: the pot is awarded to O
	room.AwardPot(PlayerO)

	// Then: O takes the whole pot and the match ends
	require.Equal(t, Points{X: 80, O: 120}, room.Balances)
	require.Equal(t, PlayerO, room.Winner)
	require.Equal(t, PhaseFinished, room.Phase)
	require.Empty(t, room.Turn)

	// When: somebody tries to settle again
	room.AwardPot(PlayerX)

	// Then: nothing moves
	assert.Equal(t, Points{X: 80, O: 120}, room.Balances)
	assert.Equal(t, PlayerO, room.Winner)
}

func TestRoom_RefundPot(t *testing.T) {
	// Given: a room where both sides have committed points
	room := &Room{
		Phase:     PhaseBidding,
		Balances:  Points{X: 70, O: 85},
		TotalBids: Points{X: 30, O: 15},
	}

	// When: the match ends as a draw
	room.RefundPot()

	// Then: each side takes back exactly its own committed points
	require.Equal(t, Points{X: 100, O: 100}, room.Balances)
	require.Equal(t, WinnerDraw, room.Winner)
	require.Equal(t, PhaseFinished, room.Phase)

	// When: a late settlement arrives
	room.AwardPot(PlayerX)

	// Then: the pot does not move twice
	assert.Equal(t, Points{X: 100, O: 100}, room.Balances)
}

func TestRoom_MaskedFor(t *testing.T) {
	bidX, bidO := 7, 4

	newRoom := func() *Room {
		return &Room{
			Code:        "123456",
			Phase:       PhaseBidding,
			PendingBids: PendingBids{X: &bidX, O: &bidO},
			Spectators:  map[string]struct{}{"conn-3": {}, "conn-4": {}},
		}
	}

	t.Run("contestant sees only its own pending bid", func(t *testing.T) {
		room := newRoom()

		masked := room.MaskedFor(PlayerX)

		require.NotNil(t, masked.PendingBids.X)
		require.Nil(t, masked.PendingBids.O)
		require.Equal(t, 2, masked.SpectatorCount)
	})

	t.Run("spectator sees neither pending bid", func(t *testing.T) {
		room := newRoom()

		masked := room.MaskedFor("")

		require.Nil(t, masked.PendingBids.X)
		require.Nil(t, masked.PendingBids.O)
	})

	t.Run("outside the bidding phase nothing is hidden", func(t *testing.T) {
		room := newRoom()
		room.Phase = PhasePlacing

		masked := room.MaskedFor("")

		require.NotNil(t, masked.PendingBids.X)
		require.NotNil(t, masked.PendingBids.O)
	})

	t.Run("masking does not touch the original", func(t *testing.T) {
		room := newRoom()

		_ = room.MaskedFor("")

		require.NotNil(t, room.PendingBids.X)
		require.NotNil(t, room.PendingBids.O)
		require.Len(t, room.Spectators, 2)
	})
}

func TestRoom_Views(t *testing.T) {
	bidX, bidO := 7, 4

	newRoom := func() *Room {
		return &Room{
			Code:        "123456",
			Name:        "alice's room",
			Phase:       PhaseBidding,
			TieCount:    1,
			PendingBids: PendingBids{X: &bidX, O: &bidO},
			PlayerX:     "conn-1",
			PlayerO:     "conn-2",
			Spectators:  map[string]struct{}{"conn-3": {}},
		}
	}

	t.Run("one masked snapshot per participant", func(t *testing.T) {
		// Given: a bidding room with two contestants and a spectator
		room := newRoom()

		// When: the room is snapshotted for broadcast
		views := room.Views()

		// Then: each recipient gets its own masking
		require.Equal(t, "123456", views.Code)
		require.Equal(t, 1, views.TieCount)
		require.False(t, views.Finished)
		require.Equal(t, 1, views.SpectatorCount)
		require.Len(t, views.Recipients, 3)

		require.NotNil(t, views.Recipients["conn-1"].PendingBids.X)
		require.Nil(t, views.Recipients["conn-1"].PendingBids.O)
		require.Nil(t, views.Recipients["conn-2"].PendingBids.X)
		require.NotNil(t, views.Recipients["conn-2"].PendingBids.O)
		require.Nil(t, views.Recipients["conn-3"].PendingBids.X)
		require.Nil(t, views.Recipients["conn-3"].PendingBids.O)
	})

	t.Run("snapshots do not follow later mutations", func(t *testing.T) {
		// Given: a snapshot set already taken
		room := newRoom()
		views := room.Views()

		// When: the live room changes afterwards
		room.Name = "renamed"
		room.Board[4] = PlayerX
		room.Phase = PhasePlacing

		// Then: the snapshots keep the state they were taken with
		assert.Equal(t, "alice's room", views.Name)
		assert.Equal(t, "alice's room", views.Recipients["conn-1"].Name)
		assert.Equal(t, EmptyCell, views.Recipients["conn-1"].Board[4])
		assert.Equal(t, PhaseBidding, views.Recipients["conn-1"].Phase)
	})
}

func TestRoom_MarkOf(t *testing.T) {
	room := &Room{PlayerX: "conn-1", PlayerO: "conn-2"}

	assert.Equal(t, PlayerX, room.MarkOf("conn-1"))
	assert.Equal(t, PlayerO, room.MarkOf("conn-2"))
	assert.Empty(t, room.MarkOf("conn-3"))
	assert.Empty(t, room.MarkOf(""))
}

func TestIsValidBaseBid(t *testing.T) {
	for _, option := range BaseBidOptions {
		assert.True(t, IsValidBaseBid(option))
	}

	assert.False(t, IsValidBaseBid(0))
	assert.False(t, IsValidBaseBid(50))
	assert.False(t, IsValidBaseBid(-10))
}
