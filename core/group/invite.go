package group

import (
	"crypto/rand"
	"math/big"
)

const (
	inviteCodeLen      = 8
	inviteCodeChars    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeAttempts = 10
)

// GenerateInviteCode returns a random code of inviteCodeLen characters from inviteCodeChars.
func GenerateInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteCodeChars)))
	code := make([]byte, inviteCodeLen)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeChars[n.Int64()]
	}
	return string(code), nil
}
