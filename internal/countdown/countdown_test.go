package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	now := time.Date(2023, 3, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want string
	}{
		{"past", now.Add(-time.Minute), "00:00:00:00"},
		{"exactly now", now, "00:00:00:00"},
		{"sub-second", now.Add(900 * time.Millisecond), "00:00:00:00"},
		{"seconds", now.Add(9 * time.Second), "00:00:00:09"},
		{"mixed", now.Add(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second), "02:03:04:05"},
		{"ninety days", now.Add(90 * 24 * time.Hour), "90:00:00:00"},
		{"three digit days", now.Add(120 * 24 * time.Hour), "120:00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(tt.end, now).String())
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, Remaining(now.Add(-time.Hour), now).Expired())
	assert.False(t, Remaining(now.Add(time.Hour), now).Expired())
}

func TestTickReturnsCommand(t *testing.T) {
	assert.NotNil(t, Tick())
}
