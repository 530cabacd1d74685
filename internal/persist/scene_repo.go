package persist

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
	"github.com/l1jgo/ecsengine/internal/scene"
)

// SceneRow is one component record of a stored scene. Payload is YAML text.
type SceneRow struct {
	EntityOrd  int32
	EntityName string
	Ord        int32
	Component  string
	Payload    string
}

// SceneRepo stores scenes as ordered component records, one row each.
type SceneRepo struct {
	db *DB
}

func NewSceneRepo(db *DB) *SceneRepo {
	return &SceneRepo{db: db}
}

// Names lists the stored scenes.
func (r *SceneRepo) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT scene FROM scene_records ORDER BY scene`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Load reads a scene into a batch. An unknown scene yields an empty batch.
func (r *SceneRepo) Load(ctx context.Context, name string) (*scene.Batch, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT entity_ord, entity_name, ord, component, payload
		 FROM scene_records WHERE scene = $1 ORDER BY entity_ord, ord`, name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SceneRow
	for rows.Next() {
		var row SceneRow
		if err := rows.Scan(&row.EntityOrd, &row.EntityName, &row.Ord, &row.Component, &row.Payload); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return BuildBatch(name, result)
}

// Save replaces the stored rows of b.Name with the contents of b. Entities
// without records are not stored.
func (r *SceneRepo) Save(ctx context.Context, b *scene.Batch) error {
	rows, err := FlattenBatch(b)
	if err != nil {
		return err
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM scene_records WHERE scene = $1`, b.Name); err != nil {
		return err
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"scene_records"},
		[]string{"scene", "entity_ord", "entity_name", "ord", "component", "payload"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{b.Name, row.EntityOrd, row.EntityName, row.Ord, row.Component, row.Payload}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy scene %s: %w", b.Name, err)
	}
	return tx.Commit(ctx)
}

// BuildBatch groups rows (ordered by entity, then record) into a batch.
func BuildBatch(name string, rows []SceneRow) (*scene.Batch, error) {
	b := scene.NewBatch(name)
	var def *scene.EntityDef
	last := int32(-1)
	for _, row := range rows {
		if def == nil || row.EntityOrd != last {
			def = b.Add(row.EntityName)
			last = row.EntityOrd
		}
		node := yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
		if strings.TrimSpace(row.Payload) == "" {
			def.Record(row.Component, &node)
			continue
		}
		if err := yaml.Unmarshal([]byte(row.Payload), &node); err != nil {
			return nil, fmt.Errorf("scene %s entity %d record %d (%s): %w",
				name, row.EntityOrd, row.Ord, row.Component, err)
		}
		def.Record(row.Component, &node)
	}
	return b, nil
}

// FlattenBatch is the inverse of BuildBatch.
func FlattenBatch(b *scene.Batch) ([]SceneRow, error) {
	var rows []SceneRow
	for i, def := range b.Entities {
		for j, rec := range def.Records {
			text, err := encodePayload(rec.Payload)
			if err != nil {
				return nil, fmt.Errorf("scene %s entity %d record %s: %w", b.Name, i, rec.Name, err)
			}
			rows = append(rows, SceneRow{
				EntityOrd:  int32(i),
				EntityName: def.Name,
				Ord:        int32(j),
				Component:  rec.Name,
				Payload:    text,
			})
		}
	}
	return rows, nil
}

func encodePayload(p ecs.Payload) (string, error) {
	if p == nil {
		return "", nil
	}
	var v any
	if err := p.Decode(&v); err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
