package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var refMu sync.Mutex
var refRand *rand.Rand

func init() {
	refRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateReferenceID returns a unique reference for ledger entries and purchases.
func GenerateReferenceID(userID uint) string {
	refMu.Lock()
	defer refMu.Unlock()

	nowNano := time.Now().UnixNano()
	nanoPart := nowNano % 1000000

	randPart := refRand.Intn(900) + 100

	return fmt.Sprintf("RH-%06d%03d%d", nanoPart, randPart, userID)
}
