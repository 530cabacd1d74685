package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/l1jgo/ecsengine/internal/component"
	"github.com/l1jgo/ecsengine/internal/core/ecs"
	"github.com/l1jgo/ecsengine/internal/core/event"
)

const demo = `
scene: demo
entities:
  - name: ship
    components:
      velocity: {linear: "1 0 0"}
      transform: {position: "10 0 0"}
  - components:
      transform: {}
      lifetime: {seconds: 1}
  - name: marker
---
entities:
  - name: ship
    components:
      transform: {position: "0 5 0"}
`

func newComposer(t *testing.T, log *zap.Logger) (*Composer, *ecs.World, *event.Bus) {
	t.Helper()
	w := ecs.NewWorld(log)
	require.NoError(t, component.Register(w, component.Deps{}))
	require.NoError(t, w.Init(map[string]int{component.KindTransform: 4}, 8))
	bus := event.NewBus()
	return NewComposer(w, bus, log), w, bus
}

func TestParseKeepsRecordOrder(t *testing.T) {
	batches, err := Parse("fallback", []byte(demo))
	require.NoError(t, err)
	require.Len(t, batches, 2)

	first := batches[0]
	assert.Equal(t, "demo", first.Name)
	require.Len(t, first.Entities, 3)
	assert.Equal(t, "ship", first.Entities[0].Name)
	var names []string
	for _, r := range first.Entities[0].Records {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"velocity", "transform"}, names)
	assert.Empty(t, first.Entities[2].Records)

	assert.Equal(t, "fallback", batches[1].Name)
	assert.NotEqual(t, first.ID, batches[1].ID)
}

func TestParseRejectsBadShape(t *testing.T) {
	_, err := Parse("x", []byte("entities:\n  - components: [transform]\n"))
	assert.Error(t, err)
	_, err = Parse("x", []byte("entities: {"))
	assert.Error(t, err)

	batches, err := Parse("x", nil)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestComposeMergesAcrossBatches(t *testing.T) {
	c, w, _ := newComposer(t, zaptest.NewLogger(t))
	batches, err := Parse("demo", []byte(demo))
	require.NoError(t, err)

	n, err := c.ComposeAll(batches)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 3, w.Entities().Len())

	ship := w.Entity(w.Named("ship"))
	require.NotNil(t, ship)
	transforms := ecs.PoolOf[component.Transform](w.Directory())
	assert.Equal(t, 2, transforms.Len(), "second batch merged instead of duplicating")
	tr := transforms.Get(ecs.Get[component.Transform](ship))
	assert.Equal(t, component.Vec3{Y: 5}, tr.Position)
}

func TestComposeAttachAfterAllLoads(t *testing.T) {
	c, w, _ := newComposer(t, zaptest.NewLogger(t))
	batches, err := Parse("demo", []byte(demo))
	require.NoError(t, err)
	_, err = c.Compose(batches[0])
	require.NoError(t, err)

	// velocity was declared before its transform and still found it
	w.UpdateAll(time.Second)
	ship := w.Entity(w.Named("ship"))
	tr := ecs.Resolve[component.Transform](w, ecs.Get[component.Transform](ship))
	assert.Equal(t, component.Vec3{X: 11}, tr.Position)
}

func TestComposeSkipsUnknownKinds(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c, w, _ := newComposer(t, zap.New(core))
	batches, err := Parse("x", []byte(`
entities:
  - name: a
    components:
      teleporter: {to: nowhere}
      transform: {position: [1, 2, 3]}
`))
	require.NoError(t, err)

	hs, err := c.Compose(batches[0])
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.False(t, ecs.Get[component.Transform](w.Entity(hs[0])).IsZero())
	assert.Equal(t, 1, logs.FilterMessage("unknown component, record skipped").Len())
}

func TestComposeEmitsEvents(t *testing.T) {
	c, _, bus := newComposer(t, zaptest.NewLogger(t))
	var got []event.EntityComposed
	event.Subscribe(bus, func(e event.EntityComposed) { got = append(got, e) })

	b := NewBatch("manual")
	b.Add("a")
	b.Add("a")
	b.Add("")
	hs, err := c.Compose(b)
	require.NoError(t, err)
	assert.Len(t, hs, 2, "same name twice touches one entity")

	bus.SwapBuffers()
	bus.DispatchAll()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, b.ID, got[0].BatchID)
	assert.Equal(t, "manual", got[1].Batch)
}

func TestComposeCapacityExhaustion(t *testing.T) {
	c, _, _ := newComposer(t, zaptest.NewLogger(t))
	var src string
	for i := 0; i < 5; i++ {
		src += "  - components: {transform: {}}\n"
	}
	batches, err := Parse("big", []byte("entities:\n"+src))
	require.NoError(t, err)

	hs, err := c.Compose(batches[0])
	assert.ErrorIs(t, err, ecs.ErrCapacityExhausted)
	assert.Len(t, hs, 4)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level1.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities:\n  - name: x\n"), 0o644))
	batches, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "level1", batches[0].Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
