package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM hosting component behaviors.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm        *lua.LState
	dir       string
	log       *zap.Logger
	behaviors map[string]*Behavior
}

// NewEngine creates a Lua engine and loads the shared libraries found in
// scriptsDir/lib. Behavior files are loaded lazily by Behavior.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:        vm,
		dir:       scriptsDir,
		log:       log,
		behaviors: make(map[string]*Behavior, 16),
	}

	if scriptsDir != "" {
		if err := e.loadDir(filepath.Join(scriptsDir, "lib")); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load lib scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Behavior is a compiled script: the table its chunk returned, holding the
// optional hooks on_attach(self) and update(self, dt).
type Behavior struct {
	name  string
	table *lua.LTable
}

func (b *Behavior) Name() string { return b.name }

// Compile runs source as a chunk that must return a table.
func (e *Engine) Compile(name, source string) (*Behavior, error) {
	fn, err := e.vm.Load(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return e.run(name, fn)
}

// Behavior loads file (relative to the scripts dir) once and caches it.
func (e *Engine) Behavior(file string) (*Behavior, error) {
	if b, ok := e.behaviors[file]; ok {
		return b, nil
	}
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.dir, file)
	}
	fn, err := e.vm.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	b, err := e.run(file, fn)
	if err != nil {
		return nil, err
	}
	e.behaviors[file] = b
	e.log.Debug("loaded lua behavior", zap.String("file", path))
	return b, nil
}

func (e *Engine) run(name string, fn *lua.LFunction) (*Behavior, error) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("run %s: chunk returned %s, want table", name, ret.Type())
	}
	return &Behavior{name: name, table: tbl}, nil
}

// Host is what a script instance acts on.
type Host interface {
	Position() (x, y, z float64, ok bool)
	Translate(dx, dy, dz float64) bool
	Destroy()
}

// Instance is one component's view of a behavior: a self table whose
// missing keys fall back to the behavior table.
type Instance struct {
	engine   *Engine
	behavior *Behavior
	self     *lua.LTable
}

// Instantiate builds a self table carrying params and the host methods
// position, translate, destroy and log.
func (e *Engine) Instantiate(b *Behavior, host Host, params map[string]any) *Instance {
	L := e.vm
	self := L.NewTable()
	for _, k := range sortedKeys(params) {
		self.RawSetString(k, toLValue(L, params[k]))
	}

	self.RawSetString("position", L.NewFunction(func(L *lua.LState) int {
		x, y, z, ok := host.Position()
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(x))
		L.Push(lua.LNumber(y))
		L.Push(lua.LNumber(z))
		return 3
	}))
	self.RawSetString("translate", L.NewFunction(func(L *lua.LState) int {
		ok := host.Translate(
			float64(L.OptNumber(2, 0)),
			float64(L.OptNumber(3, 0)),
			float64(L.OptNumber(4, 0)),
		)
		L.Push(lua.LBool(ok))
		return 1
	}))
	self.RawSetString("destroy", L.NewFunction(func(L *lua.LState) int {
		host.Destroy()
		return 0
	}))
	self.RawSetString("log", L.NewFunction(func(L *lua.LState) int {
		e.log.Info("lua", zap.String("script", b.name), zap.String("msg", L.CheckString(2)))
		return 0
	}))

	meta := L.NewTable()
	meta.RawSetString("__index", b.table)
	L.SetMetatable(self, meta)

	return &Instance{engine: e, behavior: b, self: self}
}

// OnAttach calls the behavior's on_attach(self), if it has one.
func (i *Instance) OnAttach() error {
	return i.call("on_attach")
}

// Update calls update(self, dt) with dt in seconds, if defined.
func (i *Instance) Update(dt time.Duration) error {
	return i.call("update", lua.LNumber(dt.Seconds()))
}

// Field returns self[key] converted to a Go value.
func (i *Instance) Field(key string) any {
	return fromLValue(i.engine.vm.GetField(i.self, key))
}

func (i *Instance) call(hook string, args ...lua.LValue) error {
	fn, ok := i.behavior.table.RawGetString(hook).(*lua.LFunction)
	if !ok {
		return nil
	}
	L := i.engine.vm
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, append([]lua.LValue{i.self}, args...)...); err != nil {
		return fmt.Errorf("lua %s.%s: %w", i.behavior.name, hook, err)
	}
	return nil
}
