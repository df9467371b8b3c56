package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{999_949, "999.9K"},
		{1_000_000, "1.0M"},
		{2_000_000, "2.0M"},
		{1_234_567_890, "1234.6M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Number(tt.in), "Number(%d)", tt.in)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{45, "0:45"},
		{60, "1:00"},
		{125, "2:05"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{36000, "10:00:00"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.in), "Duration(%d)", tt.in)
	}
}

func TestFilesize(t *testing.T) {
	assert.Equal(t, "0B", Filesize(0))
	assert.Equal(t, "0B", Filesize(-1))
	assert.Equal(t, "1.0 KiB", Filesize(1024))
	assert.Equal(t, "1.5 MiB", Filesize(1536*1024))
}
