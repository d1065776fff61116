// Package keygen derives opaque registration key tokens.
package keygen

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
)

const (
	saltLength = 5
	// TokenLength is the length of every generated token in hex characters.
	TokenLength = sha256.Size * 2
)

// Generator produces registration key tokens.
type Generator interface {
	Generate(email string, unitID int64) string
}

// SaltSource yields the random value the salt is hashed from.
type SaltSource func() string

// SHA256Generator hashes a short random salt with the occupant's email and unit id.
type SHA256Generator struct {
	random SaltSource
}

// New returns a generator seeded from random UUIDs.
func New() *SHA256Generator {
	return &SHA256Generator{random: uuid.NewString}
}

// NewWithSource returns a generator using the given salt source.
func NewWithSource(src SaltSource) *SHA256Generator {
	if src == nil {
		src = uuid.NewString
	}
	return &SHA256Generator{random: src}
}

// Generate returns hex(sha256(salt || email || decimal(unitID))).
func (g *SHA256Generator) Generate(email string, unitID int64) string {
	return Derive(Salt(g.random()), email, unitID)
}

// Salt truncates the hex SHA-256 of a random value.
func Salt(random string) string {
	sum := sha256.Sum256([]byte(random))
	return hex.EncodeToString(sum[:])[:saltLength]
}

// Derive computes the token for an already chosen salt.
func Derive(salt, email string, unitID int64) string {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte(email))
	h.Write([]byte(strconv.FormatInt(unitID, 10)))
	return hex.EncodeToString(h.Sum(nil))
}
