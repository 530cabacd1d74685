package ecs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	_, p := newTestPool[position](t, "position", 8)

	hs := make([]Handle, 5)
	for i := range hs {
		hs[i] = p.MustCreate()
	}
	p.DestroyHandle(hs[1])

	for i, h := range hs {
		if i == 1 {
			continue
		}
		ptr := p.Get(h)
		require.NotNil(t, ptr)
		assert.Equal(t, h, p.HandleOf(ptr))
		assert.Same(t, ptr, p.Get(p.HandleOf(ptr)))
	}

	p.Each(func(h Handle, ptr *position) {
		assert.Equal(t, h, p.HandleOf(ptr))
		assert.Same(t, ptr, p.Get(h))
	})
}

func TestHandleOfRejectsForeignPointers(t *testing.T) {
	_, p := newTestPool[position](t, "position", 4)
	h := p.MustCreate()
	p.MustCreate()

	assert.Equal(t, InvalidHandle, p.HandleOf(nil))
	assert.Equal(t, InvalidHandle, p.HandleOf(&position{}))
	// a slot that exists in storage but is not live
	assert.Equal(t, InvalidHandle, p.HandleOf(&p.items[3]))

	// after the destroy the last live object moved into slot 0, so the
	// pointer to slot 1 is outside the live range
	last := &p.items[1]
	p.DestroyHandle(h)
	assert.Equal(t, InvalidHandle, p.HandleOf(last))
}

type marker struct{}

func TestHandleOfZeroSizedType(t *testing.T) {
	_, p := newTestPool[marker](t, "marker", 2)
	h := p.MustCreate()
	require.NotNil(t, p.Get(h))
	assert.Equal(t, InvalidHandle, p.HandleOf(p.Get(h)))
}

func TestGetChecksKind(t *testing.T) {
	w, p := newTestPool[position](t, "position", 4)
	q := NewPool[ticker]("ticker")
	require.NoError(t, w.Register(q))
	require.NoError(t, w.Init(nil, 4))

	h := p.MustCreate()
	assert.NotNil(t, p.Get(h))
	assert.Nil(t, q.Get(h))
	assert.Nil(t, p.Get(InvalidHandle))
}

func TestUpdateAllVisitsEachLiveObjectOnce(t *testing.T) {
	_, p := newTestPool[ticker](t, "ticker", 32)

	hs := make([]Handle, 20)
	for i := range hs {
		hs[i] = p.MustCreate()
	}
	for i := 0; i < len(hs); i += 3 {
		p.DestroyHandle(hs[i])
	}
	live := p.Len()

	p.UpdateAll(10 * time.Millisecond)
	p.UpdateAll(10 * time.Millisecond)

	count := 0
	p.Each(func(_ Handle, c *ticker) {
		assert.Equal(t, 2, c.Visits)
		assert.Equal(t, 20*time.Millisecond, c.Moved)
		count++
	})
	assert.Equal(t, live, count)
}

type spawner struct {
	Spawned bool
	Visits  int
}

func (s *spawner) Update(ctx *Context, _ time.Duration) {
	s.Visits++
	if !s.Spawned {
		s.Spawned = true
		PoolOf[spawner](ctx.World.Directory()).MustCreate()
	}
}

func TestCreateDuringUpdateIsVisitedNextPass(t *testing.T) {
	_, p := newTestPool[spawner](t, "spawner", 8)
	first := p.MustCreate()

	p.UpdateAll(time.Millisecond)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 1, p.Get(first).Visits)

	p.UpdateAll(time.Millisecond)
	assert.Equal(t, 3, p.Len())
	visits := map[int]int{}
	p.Each(func(_ Handle, s *spawner) { visits[s.Visits]++ })
	assert.Equal(t, map[int]int{2: 1, 1: 1, 0: 1}, visits)
}

func TestCapabilityDispatch(t *testing.T) {
	w, pos := newTestPool[position](t, "position", 4)
	tk := NewPool[ticker]("ticker")
	require.NoError(t, w.Register(tk))
	require.NoError(t, w.Init(nil, 4))

	assert.True(t, pos.hasLoad)
	assert.False(t, pos.hasUpdate)
	assert.False(t, tk.hasLoad)
	assert.True(t, tk.hasUpdate)

	h := pos.MustCreate()
	require.NoError(t, pos.Load(h, payload(t, "{x: 3, y: 4}")))
	assert.Equal(t, position{X: 3, Y: 4}, *pos.Get(h))

	// no Loader: loading is a no-op
	th := tk.MustCreate()
	assert.NoError(t, tk.Load(th, payload(t, "{anything: 1}")))
	// no Attacher: attaching is a no-op
	assert.NotPanics(t, func() { pos.Attach(h) })
	assert.Panics(t, func() { pos.Attach(InvalidHandle) })
}

func TestConstructor(t *testing.T) {
	w := newWorld(t)
	p := NewPool[ticker]("ticker", WithConstructor(func(c *ticker) { c.ID = 7 }))
	require.NoError(t, w.Register(p))
	require.NoError(t, w.Init(nil, 4))

	h := p.MustCreate()
	assert.Equal(t, 7, p.Get(h).ID)
	p.Get(h).Visits = 3
	p.DestroyHandle(h)

	h = p.MustCreate()
	assert.Equal(t, ticker{ID: 7}, *p.Get(h))
}
