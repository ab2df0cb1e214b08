package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateInvoiceNumber builds a human-facing invoice reference of the form
// FAC-YYYYMMDD-HHMMSS-mmm-RRRR from the given instant.
func GenerateInvoiceNumber(now time.Time) string {
	now = now.UTC()
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("FAC-%s-%03d-%04d", now.Format("20060102-150405"), millis, n.Int64())
}
