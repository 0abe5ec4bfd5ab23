package tracking_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"zapshift-backend/internal/domain/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNew_MatchesFormatAndCurrentUTCDate(t *testing.T) {
	g := tracking.NewGenerator()

	id, err := g.New()
	require.NoError(t, err)

	assert.True(t, tracking.Valid(id), "unexpected format: %s", id)
	assert.Equal(t, "ZAP-"+time.Now().UTC().Format("20060102"), id[:12])
}

func TestNew_UsesUTCNotLocalDate(t *testing.T) {
	// 23:30 at UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*60*60)
	g := &tracking.Generator{
		Prefix: tracking.Prefix,
		Now:    func() time.Time { return time.Date(2025, 3, 9, 23, 30, 0, 0, loc) },
		Rand:   bytes.NewReader([]byte{0xab, 0x01, 0xff}),
	}

	id, err := g.New()
	require.NoError(t, err)
	assert.Equal(t, "ZAP-20250310-AB01FF", id)
}

func TestNew_EntropyFailure(t *testing.T) {
	g := &tracking.Generator{Prefix: tracking.Prefix, Now: time.Now, Rand: failingReader{}}

	_, err := g.New()
	assert.Error(t, err)
}

func TestNew_ShortEntropyIsAnError(t *testing.T) {
	g := &tracking.Generator{Prefix: tracking.Prefix, Now: time.Now, Rand: bytes.NewReader([]byte{0x01})}

	_, err := g.New()
	assert.Error(t, err)
}

func TestNew_DistinctAcrossCalls(t *testing.T) {
	g := tracking.NewGenerator()
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		id, err := g.New()
		require.NoError(t, err)
		seen[id] = struct{}{}
	}
	// 200 draws from 2^24 collide with probability ~0.1%.
	assert.GreaterOrEqual(t, len(seen), 199)
}

func TestValid(t *testing.T) {
	assert.True(t, tracking.Valid("ZAP-20240101-0A1B2C"))
	assert.False(t, tracking.Valid("ZAP-2024011-0A1B2C"))
	assert.False(t, tracking.Valid("ZAP-20240101-0a1b2c"))
	assert.False(t, tracking.Valid("XYZ-20240101-0A1B2C"))
	assert.False(t, tracking.Valid("ZAP-20240101-0A1B2C3"))
}
