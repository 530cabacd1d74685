package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"update-a", PhaseUpdate, &log})
	r.Register(recorder{"events", PhaseEvents, &log})
	r.Register(recorder{"update-b", PhaseUpdate, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"events", "update-a", "update-b", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Frames())

	log = nil
	r.TickPhase(PhaseUpdate, time.Millisecond)
	assert.Equal(t, []string{"update-a", "update-b"}, log)
	assert.Equal(t, uint64(1), r.Frames())
}

type sleeper time.Duration

func (s sleeper) Phase() Phase           { return PhaseUpdate }
func (s sleeper) Update(_ time.Duration) { time.Sleep(time.Duration(s)) }

func TestRunnerFrameTiming(t *testing.T) {
	r := NewRunner()
	assert.Zero(t, r.MeanFrame())

	r.Register(sleeper(2 * time.Millisecond))
	r.Tick(time.Millisecond)
	r.Tick(time.Millisecond)
	assert.GreaterOrEqual(t, r.LastFrame(), 2*time.Millisecond)
	assert.GreaterOrEqual(t, r.MeanFrame(), 2*time.Millisecond)
}
