package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const referenceChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const referenceLength = 8

// newBookingReference draws 8 uniform random alphanumeric characters.
// Collisions with existing bookings are handled by the caller via retry
// on the unique constraint.
func newBookingReference() (string, error) {
	buf := make([]byte, referenceLength)
	charsetSize := big.NewInt(int64(len(referenceChars)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			return "", fmt.Errorf("generate booking reference: %w", err)
		}
		buf[i] = referenceChars[n.Int64()]
	}
	return string(buf), nil
}
