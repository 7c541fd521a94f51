package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// defaultPBKDF2Iterations applies to werkzeug hashes written as "pbkdf2:sha256" without a count
const defaultPBKDF2Iterations = 260000

var (
	// ErrMismatch is returned when the password does not match the hash
	ErrMismatch = errors.New("password does not match")

	// ErrUnsupportedHash is returned for hash formats that cannot be verified
	ErrUnsupportedHash = errors.New("unsupported password hash format")
)

// Hasher hashes new passwords and verifies stored ones
type Hasher struct {
	cost int
}

// NewHasher creates a bcrypt hasher. A cost of zero selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a bcrypt hash of password
func (h *Hasher) Hash(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashBytes), nil
}

// Verify checks password against a stored hash. It returns ErrMismatch for
// a wrong password and ErrUnsupportedHash for unknown formats.
func (h *Hasher) Verify(hash, password string) error {
	switch {
	case strings.HasPrefix(hash, "$2"):
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return ErrMismatch
			}
			return fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
		}
		return nil
	case strings.HasPrefix(hash, "pbkdf2:"), strings.HasPrefix(hash, "scrypt:"):
		return verifyWerkzeug(hash, password)
	default:
		return ErrUnsupportedHash
	}
}

// NeedsRehash reports whether hash should be replaced by a fresh bcrypt hash
func (h *Hasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost < h.cost
}

// verifyWerkzeug checks "method$salt$hexdigest" hashes
func verifyWerkzeug(hash, password string) error {
	parts := strings.SplitN(hash, "$", 3)
	if len(parts) != 3 {
		return ErrUnsupportedHash
	}
	method, salt, digestHex := parts[0], parts[1], parts[2]

	want, err := hex.DecodeString(digestHex)
	if err != nil || len(want) == 0 {
		return ErrUnsupportedHash
	}

	var got []byte
	args := strings.Split(method, ":")
	switch args[0] {
	case "pbkdf2":
		if len(args) < 2 || args[1] != "sha256" {
			return ErrUnsupportedHash
		}
		iterations := defaultPBKDF2Iterations
		if len(args) == 3 {
			if iterations, err = strconv.Atoi(args[2]); err != nil || iterations <= 0 {
				return ErrUnsupportedHash
			}
		}
		got = pbkdf2.Key([]byte(password), []byte(salt), iterations, len(want), sha256.New)
	case "scrypt":
		n, r, p := 32768, 8, 1
		if len(args) == 4 {
			var errN, errR, errP error
			n, errN = strconv.Atoi(args[1])
			r, errR = strconv.Atoi(args[2])
			p, errP = strconv.Atoi(args[3])
			if errN != nil || errR != nil || errP != nil {
				return ErrUnsupportedHash
			}
		}
		got, err = scrypt.Key([]byte(password), []byte(salt), n, r, p, len(want))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
		}
	default:
		return ErrUnsupportedHash
	}

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}
