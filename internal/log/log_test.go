package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/skilleval/internal/log"
)

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf)
	t.Cleanup(func() { log.SetLevel(log.LevelInfo) })

	log.SetLevel(log.LevelInfo)
	l.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	log.SetLevel(log.LevelDebug)
	l.Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestSetLevelUnknownFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf)
	t.Cleanup(func() { log.SetLevel(log.LevelInfo) })

	log.SetLevel("chatty")
	l.Debugf("nope")
	l.Infof("yes")
	assert.NotContains(t, buf.String(), "nope")
	assert.Contains(t, buf.String(), "yes")
}

func TestPackageHelpersFollowDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Default
	t.Cleanup(func() { log.Default = prev })

	log.Default = log.New(&buf)
	log.Warnf("kept %s", "warning")
	assert.Contains(t, buf.String(), "kept warning")

	buf.Reset()
	log.Default = log.Nop()
	log.Warnf("dropped %s", "warning")
	log.Errorf("dropped %s", "error")
	assert.Empty(t, buf.String())
}
