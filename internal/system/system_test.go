package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
	"github.com/l1jgo/ecsengine/internal/core/event"
	coresys "github.com/l1jgo/ecsengine/internal/core/system"
)

// fuse queues its owner for destruction once it has burned down.
type fuse struct {
	Left time.Duration
}

func (f *fuse) Update(ctx *ecs.Context, dt time.Duration) {
	if f.Left <= 0 {
		return
	}
	f.Left -= dt
	if f.Left <= 0 {
		ctx.World.QueueDestroy(ctx.Owner)
	}
}

func newFrame(t *testing.T) (*ecs.World, *ecs.Pool[fuse], *event.Bus, *coresys.Runner) {
	t.Helper()
	log := zaptest.NewLogger(t)
	w := ecs.NewWorld(log)
	p := ecs.NewPool[fuse]("fuse")
	require.NoError(t, w.Register(p))
	require.NoError(t, w.Init(nil, 8))

	bus := event.NewBus()
	BridgeLifecycle(w, bus)

	r := coresys.NewRunner()
	r.Register(NewCleanupSystem(w, log))
	r.Register(NewStatsSystem(w, 1, log))
	r.Register(NewPoolUpdateSystem(w))
	r.Register(NewEventDispatchSystem(bus))
	return w, p, bus, r
}

func spawnFused(t *testing.T, w *ecs.World, p *ecs.Pool[fuse], left time.Duration) (ecs.Handle, ecs.Handle) {
	t.Helper()
	eh, err := w.CreateEntity("")
	require.NoError(t, err)
	fh := p.MustCreate()
	w.Entity(eh).AddComponent(fh)
	p.Get(fh).Left = left
	return eh, fh
}

func TestQueuedDestroyRunsAtFrameEnd(t *testing.T) {
	w, p, _, r := newFrame(t)
	var ents []ecs.Handle
	for i := 1; i <= 4; i++ {
		eh, _ := spawnFused(t, w, p, time.Duration(i)*10*time.Millisecond)
		ents = append(ents, eh)
	}

	r.Tick(10 * time.Millisecond)
	assert.False(t, w.IsValid(ents[0]))
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 0, w.Pending())

	r.Tick(20 * time.Millisecond)
	assert.False(t, w.IsValid(ents[1]))
	assert.False(t, w.IsValid(ents[2]))
	assert.True(t, w.IsValid(ents[3]))
	assert.Equal(t, 1, p.Len())
}

func TestLifecycleEventsArriveNextFrame(t *testing.T) {
	w, p, bus, r := newFrame(t)
	var created, destroyed []ecs.Handle
	event.Subscribe(bus, func(e event.ComponentCreated) { created = append(created, e.Handle) })
	event.Subscribe(bus, func(e event.ComponentDestroyed) { destroyed = append(destroyed, e.Handle) })

	eh, fh := spawnFused(t, w, p, 5*time.Millisecond)

	r.Tick(10 * time.Millisecond)
	assert.Equal(t, []ecs.Handle{eh, fh}, created)
	assert.Empty(t, destroyed)

	r.Tick(10 * time.Millisecond)
	assert.ElementsMatch(t, []ecs.Handle{eh, fh}, destroyed)
}
