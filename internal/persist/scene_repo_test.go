package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/ecsengine/internal/scene"
)

func TestFlattenAndBuildBatch(t *testing.T) {
	batches, err := scene.Parse("arena", []byte(`
entities:
  - name: gate
    components:
      transform: {position: "1 2 3"}
      health: {max: 50}
  - components:
      lifetime:
`))
	require.NoError(t, err)
	src := batches[0]

	rows, err := FlattenBatch(src)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, SceneRow{EntityOrd: 0, EntityName: "gate", Ord: 1, Component: "health", Payload: "max: 50\n"}, rows[1])
	assert.Equal(t, "", rows[2].Payload)

	got, err := BuildBatch("arena", rows)
	require.NoError(t, err)
	require.Len(t, got.Entities, 2)
	assert.Equal(t, "gate", got.Entities[0].Name)
	assert.Equal(t, "", got.Entities[1].Name)

	var tr struct {
		Position string `yaml:"position"`
	}
	require.NoError(t, got.Entities[0].Records[0].Payload.Decode(&tr))
	assert.Equal(t, "1 2 3", tr.Position)

	var lt struct {
		Seconds *float64 `yaml:"seconds"`
	}
	require.NoError(t, got.Entities[1].Records[0].Payload.Decode(&lt))
	assert.Nil(t, lt.Seconds)
}

func TestBuildBatchRejectsBadPayload(t *testing.T) {
	_, err := BuildBatch("x", []SceneRow{{Component: "transform", Payload: "{position: [1,"}})
	assert.Error(t, err)
}
