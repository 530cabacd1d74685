package component

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
	"github.com/l1jgo/ecsengine/internal/scripting"
)

// Script drives its entity from a Lua behavior. The behavior comes from
// file (relative to the scripts dir) or inline source; params seed the
// instance's self table.
type Script struct {
	File   string
	Source string
	Params map[string]any

	engine   *scripting.Engine
	compiled *scripting.Behavior
	inst     *scripting.Instance
	attached bool
	failed   bool
}

func (s *Script) Load(_ *ecs.Context, p ecs.Payload) error {
	if s.engine == nil {
		return errors.New("script: scripting disabled")
	}
	var raw struct {
		File   string         `yaml:"file"`
		Source string         `yaml:"source"`
		Params map[string]any `yaml:"params"`
	}
	if err := p.Decode(&raw); err != nil {
		return err
	}
	file, source := s.File, s.Source
	if raw.File != "" {
		file, source = raw.File, ""
	}
	if raw.Source != "" {
		file, source = "", raw.Source
	}
	if file == "" && source == "" {
		return errors.New("script: file or source required")
	}
	if file != s.File || source != s.Source || s.compiled == nil {
		// compile now so a broken script rejects the record
		b, err := s.behavior(file, source)
		if err != nil {
			return err
		}
		s.compiled = b
	}
	s.File, s.Source = file, source
	if len(raw.Params) > 0 && s.Params == nil {
		s.Params = make(map[string]any, len(raw.Params))
	}
	for k, v := range raw.Params {
		s.Params[k] = v
	}
	// rebuilt with the new state on the next frame
	s.inst = nil
	s.failed = false
	return nil
}

func (s *Script) OnAttach(ctx *ecs.Context) {
	s.attached = true
	s.ensure(ctx)
}

func (s *Script) Update(ctx *ecs.Context, dt time.Duration) {
	if !s.ensure(ctx) {
		return
	}
	if err := s.inst.Update(dt); err != nil {
		s.fail(ctx, err)
	}
}

// Instance returns the running instance, nil before attach.
func (s *Script) Instance() *scripting.Instance { return s.inst }

func (s *Script) ensure(ctx *ecs.Context) bool {
	if s.inst != nil {
		return true
	}
	if !s.attached || s.failed || s.engine == nil {
		return false
	}
	if s.compiled == nil {
		b, err := s.behavior(s.File, s.Source)
		if err != nil {
			s.fail(ctx, err)
			return false
		}
		s.compiled = b
	}
	s.inst = s.engine.Instantiate(s.compiled, &scriptHost{world: ctx.World, self: ctx.Self}, s.Params)
	if err := s.inst.OnAttach(); err != nil {
		s.fail(ctx, err)
		return false
	}
	return true
}

func (s *Script) behavior(file, source string) (*scripting.Behavior, error) {
	if file != "" {
		return s.engine.Behavior(file)
	}
	return s.engine.Compile("inline", source)
}

// fail logs once and parks the script until its next load.
func (s *Script) fail(ctx *ecs.Context, err error) {
	s.failed = true
	s.inst = nil
	ctx.Log.Warn("script stopped", append(ctx.Fields(), zap.Error(err))...)
}

// scriptHost resolves everything through handles; the script component
// itself may move between frames.
type scriptHost struct {
	world *ecs.World
	self  ecs.Handle
}

func (h *scriptHost) transform() *Transform {
	return ecs.Resolve[Transform](h.world, ecs.Sibling[Transform](h.world, h.self))
}

func (h *scriptHost) Position() (x, y, z float64, ok bool) {
	t := h.transform()
	if t == nil {
		return 0, 0, 0, false
	}
	return t.Position.X, t.Position.Y, t.Position.Z, true
}

func (h *scriptHost) Translate(dx, dy, dz float64) bool {
	t := h.transform()
	if t == nil {
		return false
	}
	t.Position = t.Position.Add(Vec3{dx, dy, dz})
	return true
}

func (h *scriptHost) Destroy() {
	if owner := h.world.Owner(h.self); h.world.IsValid(owner) {
		h.world.QueueDestroy(owner)
		return
	}
	h.world.QueueDestroy(h.self)
}
