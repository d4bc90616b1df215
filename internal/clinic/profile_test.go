package clinic

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOpenAt(t *testing.T) {
	p := DefaultProfile()
	loc := p.TimeLocation()

	// Monday 10 AM - open
	assert.True(t, p.IsOpenAt(time.Date(2025, 12, 8, 10, 0, 0, 0, loc)))
	// Monday 7 AM - before opening
	assert.False(t, p.IsOpenAt(time.Date(2025, 12, 8, 7, 0, 0, 0, loc)))
	// Saturday noon - open until 13:00
	assert.True(t, p.IsOpenAt(time.Date(2025, 12, 13, 12, 0, 0, 0, loc)))
	// Saturday 14:00 - closed
	assert.False(t, p.IsOpenAt(time.Date(2025, 12, 13, 14, 0, 0, 0, loc)))
	// Sunday - closed
	assert.False(t, p.IsOpenAt(time.Date(2025, 12, 14, 10, 0, 0, 0, loc)))
}

func TestNextOpenTime(t *testing.T) {
	p := DefaultProfile()
	loc := p.TimeLocation()

	// Saturday 15:00 -> Monday 08:00
	next, ok := p.NextOpenTime(time.Date(2025, 12, 13, 15, 0, 0, 0, loc))
	require.True(t, ok)
	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, 8, next.Hour())

	// Already open returns the same instant
	now := time.Date(2025, 12, 9, 11, 30, 0, 0, loc)
	next, ok = p.NextOpenTime(now)
	require.True(t, ok)
	assert.True(t, next.Equal(now))
}

func TestStatusLine(t *testing.T) {
	p := DefaultProfile()
	loc := p.TimeLocation()
	assert.Contains(t, p.StatusLine(time.Date(2025, 12, 8, 10, 0, 0, 0, loc)), "abiertos")
	assert.Contains(t, p.StatusLine(time.Date(2025, 12, 14, 10, 0, 0, 0, loc)), "Abrimos el lunes a las 08:00")
}

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, "Centro Médico Familiar", p.Name)
	assert.Equal(t, 16, p.DailyCapacity)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Clínica Norte\ndaily_capacity: 24\ncontact:\n  phone: \"5555-0000\"\n"), 0o600))

	p, err = LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Clínica Norte", p.Name)
	assert.Equal(t, 24, p.DailyCapacity)
	assert.Equal(t, "5555-0000", p.Contact.Phone)
	assert.Equal(t, "Lunes a Viernes de 8:00 a 18:00", p.Schedule.Weekdays, "unset fields keep defaults")

	require.NoError(t, os.WriteFile(path, []byte("daily_capacity: 0\n"), 0o600))
	_, err = LoadProfile(path)
	assert.Error(t, err)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
