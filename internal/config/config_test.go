package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	Assert := assert.New(t)

	cfg := &Config{}
	cfg.STATUSMAP.Map = []string{
		"processing:s1",
		"completed : s2",
		"broken-pair",
		":s3",
		"on-hold:",
	}

	mapping := cfg.StatusMapping()
	Assert.Equal(map[string]string{
		"processing": "s1",
		"completed":  "s2",
	}, mapping)
}

func TestReverseStatusMapping(t *testing.T) {
	Assert := assert.New(t)

	cfg := &Config{}
	cfg.STATUSMAP.Map = []string{"processing:s1", "completed:s2"}

	reverse := cfg.ReverseStatusMapping()
	Assert.Equal("processing", reverse["s1"])
	Assert.Equal("completed", reverse["s2"])
	Assert.Equal("", reverse["s9"])
}
