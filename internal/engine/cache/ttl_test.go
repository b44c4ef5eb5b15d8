package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "300", want: 5 * time.Minute},
		{in: "5m", want: 5 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "0", want: 0},
		{in: "-1", wantErr: true},
		{in: "200h", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindow(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowsFromEnv(t *testing.T) {
	t.Setenv(EnvStaleTime, "90")
	t.Setenv(EnvGCTime, "not-a-duration")
	t.Setenv(EnvDiskEnabled, "false")

	assert.Equal(t, 90*time.Second, GetStaleTimeFromEnv(DefaultStaleTime))
	assert.Equal(t, DefaultGCTime, GetGCTimeFromEnv(DefaultGCTime))
	assert.False(t, GetDiskEnabledFromEnv(true))

	t.Setenv(EnvDiskEnabled, "")
	assert.True(t, GetDiskEnabledFromEnv(true))
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		30 * time.Second:               "30s",
		5 * time.Minute:                "5m",
		5*time.Minute + 30*time.Second: "5m30s",
		2 * time.Hour:                  "2h",
		90 * time.Minute:               "1h30m",
		48 * time.Hour:                 "2d",
		50 * time.Hour:                 "2d2h",
	}
	for d, want := range tests {
		assert.Equal(t, want, FormatDuration(d))
	}
}
