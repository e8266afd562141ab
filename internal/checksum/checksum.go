package checksum

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

var (
	// ErrNotPresent means the asset carries no checksum to verify against.
	ErrNotPresent = errors.New("no checksum present for asset")
	// ErrMismatch means the file on disk does not match the expected hash.
	ErrMismatch = errors.New("checksum mismatch")
)

// Verifier compares on-disk content hashes against expected xxHash digests.
// In strict mode, a missing or mismatched checksum is an error; in lenient
// mode both simply report verified=false.
type Verifier struct {
	Strict bool
	log    zerolog.Logger
}

func NewVerifier(strict bool, logger zerolog.Logger) *Verifier {
	return &Verifier{Strict: strict, log: logger}
}

// HashFile computes the xxHash64 hex digest of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening file for hashing: %w", err)
	}
	defer f.Close()
	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", fmt.Errorf("error hashing file: %w", err)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// Verify reports whether the file at path matches the expected digest.
func (v *Verifier) Verify(path, expected string) (bool, error) {
	if expected == "" {
		v.log.Warn().Str("op", "checksum/verify").Msg("Checksum could not be verified, no xxhash digest was listed")
		if v.Strict {
			return false, ErrNotPresent
		}
		return false, nil
	}
	v.log.Debug().Str("op", "checksum/verify").Msg("Calculating checksum")
	diskSum, err := HashFile(path)
	if err != nil {
		return false, err
	}
	v.log.Debug().Str("op", "checksum/verify").Msgf("Expected: %s; Disk: %s", expected, diskSum)
	if diskSum == expected {
		return true, nil
	}
	if v.Strict {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrMismatch, expected, diskSum)
	}
	return false, nil
}
