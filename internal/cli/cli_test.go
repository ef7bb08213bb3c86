package cli

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags(t *testing.T) {
	t.Run("no arguments", func(t *testing.T) {
		opts, err := ParseFlags("chiper", nil)
		assert.NoError(t, err)
		assert.Equal(t, "", opts.ROM)
		assert.Equal(t, 0, opts.Hz)
		assert.False(t, opts.Debug)
	})

	t.Run("all options", func(t *testing.T) {
		opts, err := ParseFlags("chiper", []string{
			"-hz", "900", "-seed", "42", "-scale", "6", "-mute",
			"-c", "chiper.conf", "-debug", "-trace", "-q",
			"games/PONG",
		})
		assert.NoError(t, err)
		assert.Equal(t, "games/PONG", opts.ROM)
		assert.Equal(t, 900, opts.Hz)
		assert.Equal(t, uint64(42), opts.Seed)
		assert.Equal(t, 6, opts.Scale)
		assert.True(t, opts.Mute)
		assert.Equal(t, "chiper.conf", opts.Config)
		assert.True(t, opts.Debug)
		assert.True(t, opts.Trace)
		assert.True(t, opts.Quiet)
		assert.False(t, opts.Version)
	})

	t.Run("version", func(t *testing.T) {
		opts, err := ParseFlags("chiper", []string{"-version"})
		assert.NoError(t, err)
		assert.True(t, opts.Version)
	})
}

func TestParseFlagsUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		help bool
	}{
		{"help", []string{"-h"}, true},
		{"unknown flag", []string{"-turbo"}, false},
		{"invalid number", []string{"-hz", "fast"}, false},
		{"extra arguments", []string{"a.ch8", "b.ch8"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags("chiper", tt.args)

			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
			assert.Equal(t, tt.help, usageErr.HelpRequested())
		})
	}
}
