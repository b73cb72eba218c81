package recorder

import (
	"time"

	"github.com/drblury/netflight/gateway"
)

type kindPublisher struct {
	rec   *Recorder
	kind  gateway.Kind
	state *kindState
}

func (p *kindPublisher) Enabled() bool { return p.state.enabled.Load() }

func (p *kindPublisher) Timestamp() gateway.Ticks { return p.rec.clock() }

func (p *kindPublisher) ShouldCommit(duration gateway.Ticks) bool {
	return p.state.enabled.Load() && time.Duration(duration) >= time.Duration(p.state.threshold.Load())
}

func (p *kindPublisher) Commit(ev gateway.Event) { p.rec.record(p.kind, ev) }

func (p *kindPublisher) String() string { return p.rec.name + ":" + p.kind.String() }
