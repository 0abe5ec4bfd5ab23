package tracking

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Prefix is the brand prefix of every tracking id.
const Prefix = "ZAP"

// 3 bytes -> 6 hex characters, 24 bits per day.
const randomBytes = 3

// Pattern matches ids produced with the default prefix.
var Pattern = regexp.MustCompile(`^ZAP-[0-9]{8}-[0-9A-F]{6}$`)

// Generator produces ids of the form PREFIX-YYYYMMDD-XXXXXX.
// Now and Rand are replaceable for tests.
type Generator struct {
	Prefix string
	Now    func() time.Time
	Rand   io.Reader
}

func NewGenerator() *Generator {
	return &Generator{
		Prefix: Prefix,
		Now:    time.Now,
		Rand:   rand.Reader,
	}
}

func (g *Generator) New() (string, error) {
	b := make([]byte, randomBytes)
	if _, err := io.ReadFull(g.Rand, b); err != nil {
		return "", fmt.Errorf("read tracking id entropy: %w", err)
	}

	date := g.Now().UTC().Format("20060102")
	token := strings.ToUpper(hex.EncodeToString(b))

	return g.Prefix + "-" + date + "-" + token, nil
}

// Valid reports whether id has the default tracking id format.
func Valid(id string) bool {
	return Pattern.MatchString(id)
}

// Generate returns a fresh id for now using crypto/rand.
func Generate(now time.Time) (string, error) {
	g := &Generator{Prefix: Prefix, Now: func() time.Time { return now }, Rand: rand.Reader}
	return g.New()
}
