// Package idgen generates item identifiers and timestamps.
//
// Two id formats are supported: short random base36 ids ("tt-a3f8k2", or
// just "a3f8k2" without a prefix) and UUIDs. Timestamps are UTC instants in
// a fixed-width layout so they sort lexically.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MinLength is the minimum number of base36 characters in a generated ID.
	MinLength = 3
	// MaxLength is the maximum number of base36 characters in a generated ID.
	MaxLength = 8
	// MaxCollisionProbability is the threshold above which the adaptive length
	// is increased. Based on the birthday paradox formula.
	MaxCollisionProbability = 0.25
	// MaxIDRetries is how many ids are drawn at the configured length before
	// the generator escalates to MaxLength.
	MaxIDRetries = 10
)

// Format selects the id shape produced by a Generator.
type Format string

const (
	FormatShort Format = "short"
	FormatUUID  Format = "uuid"
)

// TimeLayout is the on-disk timestamp layout: RFC 3339, UTC, millisecond
// precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Now returns the current instant in TimeLayout.
func Now() string {
	return FormatTime(time.Now())
}

// FixedClock returns a clock that always reports t. Useful in tests.
func FixedClock(t time.Time) func() string {
	s := FormatTime(t)
	return func() string { return s }
}

// RandomID generates a random ID with the given prefix and length.
// It uses crypto/rand to generate length random base36 characters.
// Returns an error if length is outside [MinLength, MaxLength].
func RandomID(prefix string, length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("idgen: length %d out of range [%d, %d]", length, MinLength, MaxLength)
	}

	// Generate a random number in [0, 36^length).
	mod := new(big.Int).Exp(big.NewInt(36), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, mod)
	if err != nil {
		return "", fmt.Errorf("idgen: crypto/rand: %w", err)
	}

	// Encode as base36, left-pad with zeros to the target length.
	encoded := n.Text(36)
	for len(encoded) < length {
		encoded = "0" + encoded
	}

	return prefix + encoded, nil
}

// UUID returns prefix followed by a random (version 4) UUID.
func UUID(prefix string) string {
	return prefix + uuid.NewString()
}

// AdaptiveLength calculates the minimum ID length needed for the given
// number of existing items, using the birthday paradox collision formula:
//
//	P(collision) ≈ 1 - e^(-n²/2N)
//
// where n = existingCount and N = 36^length. Starting from MinLength,
// the length is incremented until the probability falls below
// MaxCollisionProbability, up to MaxLength.
func AdaptiveLength(existingCount int) int {
	for length := MinLength; length <= MaxLength; length++ {
		namespace := math.Pow(36, float64(length))
		n := float64(existingCount)
		probability := 1 - math.Exp(-(n*n)/(2*namespace))
		if probability < MaxCollisionProbability {
			return length
		}
	}
	return MaxLength
}

// NormalizePrefix trims surrounding dashes from p and appends exactly one.
// An empty prefix stays empty.
//
//	NormalizePrefix("tt")    → "tt-"
//	NormalizePrefix("-tt--") → "tt-"
//	NormalizePrefix("")      → ""
func NormalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "-")
	if p == "" {
		return ""
	}
	return p + "-"
}

// Generator produces ids that do not collide with existing ones.
type Generator struct {
	Format Format
	Prefix string
	// Length is the number of base36 characters for short ids. Zero picks
	// AdaptiveLength(Count).
	Length int
	// Count is the number of existing items, used for adaptive length.
	Count int
	// Exists reports whether an id is already taken. May be nil.
	Exists func(id string) bool
}

// NewID returns a fresh id. Short ids are drawn at the configured length up
// to MaxIDRetries times and then at MaxLength until one is free.
func (g *Generator) NewID() (string, error) {
	if g.Format == FormatUUID {
		for {
			id := UUID(g.Prefix)
			if !g.taken(id) {
				return id, nil
			}
		}
	}

	length := g.Length
	if length == 0 {
		length = AdaptiveLength(g.Count)
	}
	for attempt := 0; ; attempt++ {
		if attempt == MaxIDRetries {
			length = MaxLength
		}
		id, err := RandomID(g.Prefix, length)
		if err != nil {
			return "", err
		}
		if !g.taken(id) {
			return id, nil
		}
		if attempt > 10*MaxIDRetries {
			return "", fmt.Errorf("idgen: no free id after %d attempts", attempt)
		}
	}
}

// MustNewID is NewID for callers that cannot handle an error, such as the
// id hook of tasklist.Editor. It panics only if crypto/rand fails or the
// configured length is invalid.
func (g *Generator) MustNewID() string {
	id, err := g.NewID()
	if err != nil {
		panic(err)
	}
	return id
}

func (g *Generator) taken(id string) bool {
	return g.Exists != nil && g.Exists(id)
}

// ParseFormat validates a format name. The empty string means FormatShort.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatShort:
		return FormatShort, nil
	case FormatUUID:
		return FormatUUID, nil
	}
	return "", fmt.Errorf("idgen: unknown id format %q (want short or uuid)", s)
}
