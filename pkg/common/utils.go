package common

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

func GenerateTrxNo() string {
	const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 7)
	for i := range result {
		result[i] = characters[r.Intn(len(characters))]
	}
	return string(result)
}

// GenerateReference returns an external correlation reference, used where a
// short code would risk collisions (gateway charge references).
func GenerateReference() string {
	return uuid.NewString()
}
