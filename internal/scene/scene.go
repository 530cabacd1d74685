// Package scene reads composition batches and composes them into a World.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
)

// Batch is one unit of composition: every load of the batch happens before
// any OnAttach of the batch.
type Batch struct {
	ID       uuid.UUID
	Name     string
	Entities []EntityDef
}

// EntityDef describes one entity. A named entity that already exists in the
// world receives the records as merges instead of being created again.
type EntityDef struct {
	Name    string
	Records []ecs.Record
}

// NewBatch returns an empty batch with a fresh id.
func NewBatch(name string) *Batch {
	return &Batch{ID: uuid.New(), Name: name}
}

// Add appends an entity definition and returns it for filling in.
func (b *Batch) Add(name string) *EntityDef {
	b.Entities = append(b.Entities, EntityDef{Name: name})
	return &b.Entities[len(b.Entities)-1]
}

// Record appends a component record.
func (d *EntityDef) Record(kind string, p ecs.Payload) {
	d.Records = append(d.Records, ecs.Record{Name: kind, Payload: p})
}

type sceneFile struct {
	Scene    string `yaml:"scene"`
	Entities []struct {
		Name       string    `yaml:"name"`
		Components yaml.Node `yaml:"components"`
	} `yaml:"entities"`
}

// LoadFile reads a scene file. Each YAML document in the file is a batch;
// unnamed documents take the file's base name.
func LoadFile(path string) ([]*Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	batches, err := Parse(base, raw)
	if err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return batches, nil
}

// Parse decodes every document of data into a batch. Component records
// keep their declaration order.
func Parse(name string, data []byte) ([]*Batch, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []*Batch
	for doc := 1; ; doc++ {
		var f sceneFile
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}
		b, err := f.batch(name)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *sceneFile) batch(fallback string) (*Batch, error) {
	name := f.Scene
	if name == "" {
		name = fallback
	}
	b := NewBatch(name)
	for i := range f.Entities {
		src := &f.Entities[i]
		def := b.Add(src.Name)
		comps := &src.Components
		if comps.Kind == 0 || comps.ShortTag() == "!!null" {
			continue
		}
		if comps.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("entity %d (line %d): components must be a mapping", i, comps.Line)
		}
		for j := 0; j+1 < len(comps.Content); j += 2 {
			key, val := comps.Content[j], comps.Content[j+1]
			def.Record(key.Value, val)
		}
	}
	return b, nil
}
