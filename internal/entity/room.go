package entity

const (
	PhaseBidding  = "bidding"
	PhasePlacing  = "placing"
	PhaseFinished = "finished"

	PlayerX    = "X"
	PlayerO    = "O"
	WinnerDraw = "-"

	EmptyCell = ""
)

// MaxConsecutiveTies - equal-bid rounds in a row that end the match as a draw.
const MaxConsecutiveTies = 3

// BaseBidOptions - the fixed stake tiers a room can be created with.
var BaseBidOptions = []int{10, 100, 1000, 10000}

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func IsValidBaseBid(baseBid int) bool {
	for _, option := range BaseBidOptions {
		if option == baseBid {
			return true
		}
	}

	return false
}

// Opponent - the other side.
func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}

	return PlayerX
}

// Points holds one integer per side.
type Points struct {
	X int `json:"x"`
	O int `json:"o"`
}

func (that *Points) Get(mark string) int {
	if mark == PlayerX {
		return that.X
	}

	return that.O
}

func (that *Points) Set(mark string, value int) {
	if mark == PlayerX {
		that.X = value
		return
	}

	that.O = value
}

func (that *Points) Add(mark string, delta int) {
	that.Set(mark, that.Get(mark)+delta)
}

// PendingBids - the secret per-side bids of the current round; nil means not bid yet.
type PendingBids struct {
	X *int `json:"x"`
	O *int `json:"o"`
}

func (that *PendingBids) Get(mark string) *int {
	if mark == PlayerX {
		return that.X
	}

	return that.O
}

func (that *PendingBids) Set(mark string, amount int) {
	if mark == PlayerX {
		that.X = &amount
		return
	}

	that.O = &amount
}

func (that *PendingBids) Clear() {
	that.X = nil
	that.O = nil
}

func (that *PendingBids) BothSet() bool {
	return that.X != nil && that.O != nil
}

// Room holds the full mutable state of one match.
type Room struct {
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	BaseBid       int         `json:"base_bid"`
	Board         [9]string   `json:"board"`
	Turn          string      `json:"player_turn"`
	Phase         string      `json:"phase"`
	Winner        string      `json:"winner,omitempty"`
	Balances      Points      `json:"balances"`
	PendingBids   PendingBids `json:"pending_bids"`
	TotalBids     Points      `json:"total_bids"`
	RemainingBids Points      `json:"remaining_bids"`
	TieCount      int         `json:"tie_count"`
	PlayerXName   string      `json:"player_x_name,omitempty"`
	PlayerOName   string      `json:"player_o_name,omitempty"`
	OpponentLeft  bool        `json:"opponent_left"`

	// SpectatorCount is only populated on masked snapshots.
	SpectatorCount int `json:"spectator_count"`

	PlayerX    string              `json:"-"`
	PlayerO    string              `json:"-"`
	Spectators map[string]struct{} `json:"-"`

	// Settled guards the pot: it moves exactly once per match.
	Settled bool `json:"-"`
}

// NewRoom - creates a room hosted by the given player, who takes the X side.
func NewRoom(code string, host *Player, baseBid int) *Room {
	return &Room{
		Code:          code,
		Name:          host.Name + "'s room",
		BaseBid:       baseBid,
		Turn:          PlayerX,
		Phase:         PhaseBidding,
		Balances:      Points{X: host.Points, O: 0},
		RemainingBids: Points{X: baseBid, O: baseBid},
		PlayerX:       host.ID,
		PlayerXName:   host.Name,
		Spectators:    make(map[string]struct{}),
	}
}

// NewRound - builds a fresh round from an old room, keeping only the persistent
// fields: code, name, base bid, occupants and their balances, and spectators.
// A side without an occupant keeps no balance.
func NewRound(prev *Room) *Room {
	room := &Room{
		Code:          prev.Code,
		Name:          prev.Name,
		BaseBid:       prev.BaseBid,
		Turn:          PlayerX,
		Phase:         PhaseBidding,
		Balances:      prev.Balances,
		RemainingBids: Points{X: prev.BaseBid, O: prev.BaseBid},
		PlayerX:       prev.PlayerX,
		PlayerO:       prev.PlayerO,
		PlayerXName:   prev.PlayerXName,
		PlayerOName:   prev.PlayerOName,
		Spectators:    prev.Spectators,
	}

	if room.PlayerX == "" {
		room.Balances.X = 0
	}

	if room.PlayerO == "" {
		room.Balances.O = 0
	}

	return room
}

func (that *Room) IsBidding() bool {
	return that.Phase == PhaseBidding
}

func (that *Room) IsPlacing() bool {
	return that.Phase == PhasePlacing
}

func (that *Room) IsFinished() bool {
	return that.Phase == PhaseFinished
}

func (that *Room) OccupantCount() int {
	count := 0
	if that.PlayerX != "" {
		count++
	}

	if that.PlayerO != "" {
		count++
	}

	return count
}

// InProgress - both contestants seated and the match not yet finished.
func (that *Room) InProgress() bool {
	return that.PlayerX != "" && that.PlayerO != "" && !that.IsFinished()
}

// MarkOf - the side held by the given connection, or an empty string.
func (that *Room) MarkOf(connID string) string {
	switch connID {
	case "":
		return ""
	case that.PlayerX:
		return PlayerX
	case that.PlayerO:
		return PlayerO
	}

	return ""
}

func (that *Room) IsSpectator(connID string) bool {
	_, ok := that.Spectators[connID]
	return ok
}

// DetermineGameResult - the winning mark for a completed line, WinnerDraw for a
// full board, or an empty string while the board can still be played.
func (that *Room) DetermineGameResult() string {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range that.Board {
		if cell == EmptyCell {
			return ""
		}
	}

	return WinnerDraw
}

// Pot - the points currently withheld from both balances.
func (that *Room) Pot() int {
	return that.TotalBids.X + that.TotalBids.O
}

// AwardPot - ends the match and pays the whole pot to the winning side.
func (that *Room) AwardPot(winnerMark string) {
	if that.Settled {
		return
	}

	that.Balances.Add(winnerMark, that.Pot())
	that.Winner = winnerMark
	that.Phase = PhaseFinished
	that.Turn = ""
	that.Settled = true
}

// RefundPot - ends the match as a draw, each side taking back its own committed points.
func (that *Room) RefundPot() {
	if that.Settled {
		return
	}

	that.Balances.X += that.TotalBids.X
	that.Balances.O += that.TotalBids.O
	that.Winner = WinnerDraw
	that.Phase = PhaseFinished
	that.Turn = ""
	that.Settled = true
}

// MaskedFor - a snapshot safe to send to the given viewer. While bidding, a side
// sees only its own pending bid; spectators see neither.
func (that *Room) MaskedFor(viewerMark string) *Room {
	masked := *that
	masked.Spectators = nil
	masked.SpectatorCount = len(that.Spectators)

	if masked.IsBidding() {
		if viewerMark != PlayerX {
			masked.PendingBids.X = nil
		}

		if viewerMark != PlayerO {
			masked.PendingBids.O = nil
		}
	}

	return &masked
}

// RoomViews carries one masked snapshot per recipient, all taken in a single
// step so every recipient sees the same state. Commands running after the
// snapshot never touch it.
type RoomViews struct {
	Code           string
	Name           string
	Winner         string
	TieCount       int
	Finished       bool
	SpectatorCount int

	// Recipients is keyed by connection id.
	Recipients map[string]*Room
}

// Views - snapshots the room for every participant at once.
func (that *Room) Views() *RoomViews {
	views := &RoomViews{
		Code:           that.Code,
		Name:           that.Name,
		Winner:         that.Winner,
		TieCount:       that.TieCount,
		Finished:       that.IsFinished(),
		SpectatorCount: len(that.Spectators),
		Recipients:     make(map[string]*Room, 2+len(that.Spectators)),
	}

	if that.PlayerX != "" {
		views.Recipients[that.PlayerX] = that.MaskedFor(PlayerX)
	}

	if that.PlayerO != "" {
		views.Recipients[that.PlayerO] = that.MaskedFor(PlayerO)
	}

	for id := range that.Spectators {
		views.Recipients[id] = that.MaskedFor("")
	}

	return views
}

// RoomSummary is the public lobby view of a room.
type RoomSummary struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	BaseBid        int    `json:"base_bid"`
	PlayerCount    int    `json:"player_count"`
	SpectatorCount int    `json:"spectator_count"`
	InProgress     bool   `json:"in_progress"`
	Turn           string `json:"player_turn,omitempty"`
	Phase          string `json:"phase"`
	Winner         string `json:"winner,omitempty"`
}

func (that *Room) Summary() RoomSummary {
	return RoomSummary{
		Code:           that.Code,
		Name:           that.Name,
		BaseBid:        that.BaseBid,
		PlayerCount:    that.OccupantCount(),
		SpectatorCount: len(that.Spectators),
		InProgress:     that.InProgress(),
		Turn:           that.Turn,
		Phase:          that.Phase,
		Winner:         that.Winner,
	}
}
