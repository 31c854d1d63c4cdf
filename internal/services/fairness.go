package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// RollRange is the exclusive upper bound of a roll value.
const RollRange int64 = 1_000_000

// CommitSeed returns the one-way commitment of the server seed. It is safe to
// publish before any bet consumes the seed.
func CommitSeed(serverSeed string) string {
	hash := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(hash[:])
}

// Roll deterministically derives a value in [0, RollRange) from the server
// seed, client seed and nonce, plus the raw digest it came from. Identical
// inputs always produce identical outputs, which is what lets anyone re-check
// a settled bet once the seed is revealed.
func Roll(serverSeed, clientSeed string, nonce int64) (int64, string) {
	message := fmt.Sprintf("%s:%d", clientSeed, nonce)
	h := hmac.New(sha256.New, []byte(serverSeed))
	h.Write([]byte(message))
	digest := hex.EncodeToString(h.Sum(nil))

	// 52 bits (13 hex chars) before reducing the range keeps modulo bias
	// far below anything observable.
	n := new(big.Int)
	n.SetString(digest[:13], 16)

	return n.Int64() % RollRange, digest
}

// DeriveClientSeed maps a user id to a stable client seed. Stable across bets
// so the published (commitment, seed, nonce) triple is enough to verify.
func DeriveClientSeed(userID int64) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("client:%d", userID)))
	return hex.EncodeToString(hash[:16])
}
