package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitrook/offload/internal/stats"
)

func TestNewPresenterQuiet(t *testing.T) {
	p := NewPresenter(Config{Quiet: true, Stats: stats.NewCollector()})
	_, ok := p.(*quietPresenter)
	assert.True(t, ok)
}

func TestNewPresenterPlainWhenNotTTY(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPresenter(Config{Writer: &out, ErrWriter: &errOut, Stats: stats.NewCollector()})
	_, ok := p.(*plainPresenter)
	assert.True(t, ok)
}

func TestNewPresenterNoProgressForcesPlain(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPresenter(Config{
		Writer:     &out,
		ErrWriter:  &errOut,
		Stats:      stats.NewCollector(),
		IsTTY:      true,
		NoProgress: true,
	})
	_, ok := p.(*plainPresenter)
	assert.True(t, ok)
}

func TestNewPresenterHUDOnTTY(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPresenter(Config{
		Writer:    &out,
		ErrWriter: &errOut,
		Stats:     stats.NewCollector(),
		IsTTY:     true,
		Workers:   4,
	})
	hud, ok := p.(*hudPresenter)
	assert.True(t, ok)
	// HUD renders to stderr so the feed survives stdout redirection.
	assert.Same(t, &errOut, hud.w)
}
