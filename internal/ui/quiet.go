package ui

import "github.com/bitrook/offload/internal/stats"

// quietPresenter consumes events but produces no output.
type quietPresenter struct {
	stats stats.Reader
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for ev := range events {
		p.handleEvent(ev)
	}
	return nil
}

func (p *quietPresenter) handleEvent(_ Event) {
	// Counters are updated on the collector directly by the engine;
	// presenters only read from the collector, never write.
}

func (p *quietPresenter) Summary() string {
	return ""
}
