// Package cryptox derives authentication secrets from user passwords.
package cryptox

import (
	"crypto/sha256"
	"math/big"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/zkpauth/internal/common"
)

// SaltForUser builds a deterministic argon2 salt for the given user.
// The derivation must yield the same secret on every device the user
// logs in from, so the salt depends only on the parameter set name and
// the username.
func SaltForUser(paramSet, username string) []byte {
	h := sha256.New()
	h.Write([]byte("zkpauth password salt v1"))
	h.Write([]byte{0})
	h.Write([]byte(paramSet))
	h.Write([]byte{0})
	h.Write([]byte(username))
	return h.Sum(nil)
}

// DeriveSecret stretches a password with argon2id and reduces the result
// into [0, q). The intermediate key material is wiped before returning.
func DeriveSecret(password, salt []byte, q *big.Int) *big.Int {
	key := argon2.IDKey(password, salt, 1, 64*1024, 4, 64)
	x := new(big.Int).SetBytes(key)
	x.Mod(x, q)
	common.WipeByteArray(key)
	return x
}
