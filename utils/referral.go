package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RKapadia01/shopezy_backend/models"
)

// GenerateReferralCode generates a referral code for a new user.
// Format: USR-{RANDOM} where RANDOM is 6 alphanumeric characters.
// Uniqueness is enforced by the caller against the users collection.
func GenerateReferralCode() (string, error) {
	// 4 random bytes give us 6 characters in base32
	randomBytes := make([]byte, 4)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	randomStr := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	randomStr = randomStr[:6]

	randomStr = strings.ToUpper(randomStr)
	randomStr = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, randomStr)

	if len(randomStr) < 6 {
		randomStr = randomStr + strings.Repeat("0", 6-len(randomStr))
	}

	return "USR-" + randomStr, nil
}

// BuildUpline computes a new user's ancestor chain from their direct
// referrer: the referrer first, then the referrer's own upline, truncated
// to models.MaxUplineDepth. The list is a snapshot taken at registration
// and is never recomputed, so payout fan-out needs no graph walk. Capping
// to the referrer's upline also makes self-references and cycles
// impossible by construction.
func BuildUpline(referrerID primitive.ObjectID, referrerUpline []primitive.ObjectID) []primitive.ObjectID {
	upline := make([]primitive.ObjectID, 0, len(referrerUpline)+1)
	upline = append(upline, referrerID)
	upline = append(upline, referrerUpline...)
	if len(upline) > models.MaxUplineDepth {
		upline = upline[:models.MaxUplineDepth]
	}
	return upline
}
