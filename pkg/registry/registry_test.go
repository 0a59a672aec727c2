package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `{
		"version": "1.0.0",
		"lastUpdated": "2026-08-01",
		"tasks": [
			{
				"id": "process-message",
				"taskType": "assistant.message.process",
				"inputSchema": {
					"type": "object",
					"required": ["message"],
					"properties": {
						"message": {"type": "string"},
						"sessionId": {"type": "string"}
					}
				}
			}
		]
	}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)
	require.Len(t, reg.Tasks, 1)
	assert.Equal(t, "assistant.message.process", reg.Tasks[0].TaskType)
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestFindByTaskType(t *testing.T) {
	reg := &TaskRegistry{Tasks: []Task{
		{ID: "a", TaskType: "assistant.message.process"},
		{ID: "b", TaskType: "assistant.intent.detect"},
	}}

	found := reg.FindByTaskType("assistant.intent.detect")
	require.NotNil(t, found)
	assert.Equal(t, "b", found.ID)

	assert.Nil(t, reg.FindByTaskType("assistant.unknown"))
}

func TestValidateInput(t *testing.T) {
	task := &Task{InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"message"},
		"properties": map[string]interface{}{
			"message":   map[string]interface{}{"type": "string", "minLength": float64(1)},
			"sessionId": map[string]interface{}{"type": "string"},
		},
	}}

	err := task.ValidateInput(map[string]interface{}{
		"message":   "2 kg chawal bhejo",
		"sessionId": "shop-42",
	})
	assert.NoError(t, err)

	err = task.ValidateInput(map[string]interface{}{"sessionId": "shop-42"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message")
}

func TestValidateInputEmptySchema(t *testing.T) {
	task := &Task{}
	assert.NoError(t, task.ValidateInput(map[string]interface{}{"anything": true}))
}
