package entity

// Player is the registry identity behind one live connection.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}
