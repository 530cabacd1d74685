package ecs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"
)

// position merges whichever of x/y the payload carries.
type position struct {
	X, Y float64
}

func (p *position) Load(_ *Context, pl Payload) error {
	var raw struct {
		X *float64 `yaml:"x"`
		Y *float64 `yaml:"y"`
	}
	if err := pl.Decode(&raw); err != nil {
		return err
	}
	if raw.X != nil {
		p.X = *raw.X
	}
	if raw.Y != nil {
		p.Y = *raw.Y
	}
	return nil
}

// ticker counts its own updates.
type ticker struct {
	ID     int
	Visits int
	Moved  time.Duration
}

func (c *ticker) Update(_ *Context, dt time.Duration) {
	c.Visits++
	c.Moved += dt
}

// follower looks up its sibling position when attached.
type follower struct {
	Target   Handle
	Attached int
}

func (f *follower) OnAttach(ctx *Context) {
	f.Attached++
	f.Target = Sibling[position](ctx.World, ctx.Self)
}

// picky rejects payloads with ok: false.
type picky struct {
	Value string
}

func (p *picky) Load(_ *Context, pl Payload) error {
	var raw struct {
		OK    bool   `yaml:"ok"`
		Value string `yaml:"value"`
	}
	if err := pl.Decode(&raw); err != nil {
		return err
	}
	if !raw.OK {
		return errors.New("not ok")
	}
	p.Value = raw.Value
	return nil
}

// tracked reports its destruction.
type tracked struct {
	ID  int
	Log *[]int
}

func (c *tracked) OnDestroy(_ *Context) {
	if c.Log != nil {
		*c.Log = append(*c.Log, c.ID)
	}
}

// killer destroys Target when it is destroyed itself.
type killer struct {
	Target Handle
}

func (k *killer) OnDestroy(ctx *Context) {
	ctx.World.Destroy(k.Target)
}

func payload(t *testing.T, src string) Payload {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	require.NotEmpty(t, doc.Content)
	return doc.Content[0]
}

func newWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(zaptest.NewLogger(t))
}

func newTestPool[T any](t *testing.T, name string, capacity int) (*World, *Pool[T]) {
	t.Helper()
	w := newWorld(t)
	p := NewPool[T](name)
	require.NoError(t, w.Register(p))
	require.NoError(t, w.Init(nil, capacity))
	return w, p
}

// requireDense checks that reverse[0, live) is a permutation of the live
// external slots and that every live slot points back at its position.
func requireDense(t *testing.T, r *Registry) {
	t.Helper()
	seen := make(map[uint32]bool, r.live)
	for i := uint32(0); i < r.live; i++ {
		ext := r.reverse[i]
		require.NotEqual(t, uint32(noSlot), ext, "hole at internal %d", i)
		require.False(t, seen[ext], "external %d listed twice", ext)
		seen[ext] = true
		require.Equal(t, i, r.slots[ext].internal)
	}
	for i := r.live; int(i) < r.capacity; i++ {
		require.Equal(t, uint32(noSlot), r.reverse[i])
	}
}
