package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Debug: true, Output: &buf})
	t.Cleanup(func() { Init(Options{}) })

	Debug("building graph", "nodes", 3)

	assert.Contains(t, buf.String(), "building graph")
	assert.Contains(t, buf.String(), "nodes=3")
}

func TestInit_InfoLevelDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Output: &buf})
	t.Cleanup(func() { Init(Options{}) })

	Debug("hidden")
	Warn("dangling relation", "from", "p1", "missing", "p9")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "dangling relation")
	assert.Contains(t, buf.String(), "missing=p9")
}

func TestWith_CarriesFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Output: &buf})
	t.Cleanup(func() { Init(Options{}) })

	With("component", "cms").Info("fetched")

	assert.Contains(t, buf.String(), "component=cms")
}
