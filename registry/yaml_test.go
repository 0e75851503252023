package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recordYAML = `definitions:
  - name: record
    pattern:
      - "{id} | {info}"
      - json
    fields:
      - name: info
        json_first: true
        pattern:
          - "{name} | {age}"
    schema:
      type: object
      required: [id, info]
      properties:
        id: {type: integer}
        info:
          type: object
          required: [name, age]
          properties:
            name: {type: string}
            age: {type: integer}
  - name: greeting
    pattern:
      - "hello, {who}"
`

func TestParseFile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f, err := Parse([]byte(recordYAML))
		require.NoError(t, err)
		require.Len(t, f.Definitions, 2)

		rec := f.Definitions[0]
		assert.Equal(t, "record", rec.Name)
		assert.Equal(t, []string{"{id} | {info}", "json"}, rec.Pattern)
		require.Len(t, rec.Fields, 1)
		assert.Equal(t, "info", rec.Fields[0].Name)
		assert.True(t, rec.Fields[0].JSONFirst)
		require.NotNil(t, rec.Schema)
		assert.Equal(t, "object", rec.Schema.Type)
		assert.Equal(t, "integer", rec.Schema.Properties["id"].Type)

		assert.Equal(t, "greeting", f.Definitions[1].Name)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := Parse([]byte("definitions:\n  - pattern: [\"{x}\"]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "definition 0 has no name")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("definitions: ["))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}

func TestLoad(t *testing.T) {
	t.Run("explicit file path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte(recordYAML), 0o644))

		f, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, f.Definitions, 2)
	})

	t.Run("directory resolves strum.yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "strum.yaml")
		require.NoError(t, os.WriteFile(path, []byte(recordYAML), 0o644))

		f, err := Load(dir)
		require.NoError(t, err)
		assert.Len(t, f.Definitions, 2)
	})

	t.Run("directory falls back to strum.yml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "strum.yml")
		require.NoError(t, os.WriteFile(path, []byte(recordYAML), 0o644))

		f, err := Load(dir)
		require.NoError(t, err)
		assert.Len(t, f.Definitions, 2)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no strum.yaml or strum.yml")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stat")
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("registers and parses", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "strum.yaml"), []byte(recordYAML), 0o644))

		r := New()
		require.NoError(t, r.LoadFile(dir))
		assert.Equal(t, []string{"greeting", "record"}, r.Names())

		p, err := r.Parser("record")
		require.NoError(t, err)

		got, err := p.Parse(context.Background(), "7 | Dana | 30")
		require.NoError(t, err)
		assert.Equal(t, int64(7), got["id"])
		info := got["info"].(map[string]any)
		assert.Equal(t, int64(30), info["age"])

		got, err = p.Parse(context.Background(), `{"id": 7, "info": {"name": "Dana", "age": 30}}`)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got["id"])
	})

	t.Run("invalid definition names the culprit", func(t *testing.T) {
		dir := t.TempDir()
		bad := "definitions:\n  - name: broken\n    pattern: [\"{unterminated\"]\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "strum.yaml"), []byte(bad), 0o644))

		r := New()
		err := r.LoadFile(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `definition "broken"`)
	})
}
