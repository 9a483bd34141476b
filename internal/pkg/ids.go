package pkg

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

// GenerateConnectionID - mints a transient identifier for a live connection.
func GenerateConnectionID() string {
	return uuid.NewString()
}

// GenerateRoomCode - draws a random 6-digit room code.
func GenerateRoomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return ""
	}

	return strconv.FormatInt(n.Int64()+100000, 10)
}
