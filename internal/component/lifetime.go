package component

import (
	"errors"
	"fmt"
	"time"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
)

// Lifetime destroys its entity once Remaining runs out.
type Lifetime struct {
	Remaining time.Duration

	expired bool
}

// Load accepts either duration ("1.5s", "250ms") or seconds.
func (l *Lifetime) Load(_ *ecs.Context, p ecs.Payload) error {
	var raw struct {
		Duration string   `yaml:"duration"`
		Seconds  *float64 `yaml:"seconds"`
	}
	if err := p.Decode(&raw); err != nil {
		return err
	}
	var d time.Duration
	switch {
	case raw.Duration != "":
		v, err := time.ParseDuration(raw.Duration)
		if err != nil {
			return fmt.Errorf("lifetime: %w", err)
		}
		d = v
	case raw.Seconds != nil:
		d = time.Duration(*raw.Seconds * float64(time.Second))
	default:
		return errors.New("lifetime: duration or seconds required")
	}
	if d <= 0 {
		return fmt.Errorf("lifetime: %s is not positive", d)
	}
	l.Remaining = d
	l.expired = false
	return nil
}

func (l *Lifetime) Update(ctx *ecs.Context, dt time.Duration) {
	if l.expired {
		return
	}
	l.Remaining -= dt
	if l.Remaining <= 0 {
		l.Remaining = 0
		l.expired = true
		destroyOwner(ctx)
	}
}

// Expired reports whether the entity has been queued for destruction.
func (l *Lifetime) Expired() bool { return l.expired }
