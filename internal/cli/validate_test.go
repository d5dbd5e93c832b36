package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vaslog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid file via flag", func(t *testing.T) {
		path := writeConfig(t, `{"logging": {"target": "/tmp/app.log", "max_size": 10, "rotate_schedule": "@daily"}}`)

		out, _, err := execute(t, "", "validate", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "configuration is valid")
	})

	t.Run("valid file via argument", func(t *testing.T) {
		path := writeConfig(t, `{"diagnostics": {"level": "debug"}}`)

		out, _, err := execute(t, "", "validate", "--config", missingConfig(t), path)
		require.NoError(t, err)
		assert.Contains(t, out, path)
	})

	t.Run("schema violation", func(t *testing.T) {
		path := writeConfig(t, `{"logging": {"max_size": "huge"}}`)

		_, _, err := execute(t, "", "validate", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema validation errors")
	})

	t.Run("semantic violation", func(t *testing.T) {
		path := writeConfig(t, `{"logging": {"target": "stdout", "rotate_schedule": "not a schedule"}}`)

		_, errOut, err := execute(t, "", "validate", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rotation requires a file target")
		assert.Contains(t, errOut, "invalid rotation schedule")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "validate", missingConfig(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}
