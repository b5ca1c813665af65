package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/storefront-admin/pkg/forms"
)

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name    string
		version uint64
		ok      bool
	}{
		{"20240501000000_create_sessions.up.sql", 20240501000000, true},
		{"20240501000100_create_messages.down.sql", 20240501000100, true},
		{"create_sessions.up.sql", 0, false},
		{"README", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := migrationVersion(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.version, v)
		})
	}
}

func TestUpMigrations(t *testing.T) {
	files := upMigrations([]string{
		"20240501000100_create_messages.up.sql",
		"20240501000000_create_sessions.down.sql",
		"20240501000000_create_sessions.up.sql",
	})
	assert.Equal(t, []string{
		"20240501000000_create_sessions.up.sql",
		"20240501000100_create_messages.up.sql",
	}, files)
}

func TestListMigrationFiles(t *testing.T) {
	t.Setenv("STOREFRONT_MIGRATIONS_PATH", filepath.Join("..", "..", "db", "migrations"))

	files, err := listMigrationFiles()
	require.NoError(t, err)
	assert.Contains(t, files, "20240501000000_create_sessions.up.sql")
	assert.Contains(t, files, "20240501000100_create_messages.up.sql")
}

func TestProductFormFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "update"}
	addProductFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--price", "19.99", "--stock", "40"}))

	base := forms.ProductForm{Title: "Desk Lamp", Price: "24.5", Stock: "12", Brand: "Lumen"}
	form := productFormFromFlags(cmd, base)

	assert.Equal(t, forms.ProductForm{Title: "Desk Lamp", Price: "19.99", Stock: "40", Brand: "Lumen"}, form)
	assert.Equal(t, "24.5", base.Price)
}

func TestParseProductID(t *testing.T) {
	id, err := parseProductID("7")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := parseProductID(bad)
		assert.Error(t, err, bad)
	}
}

func TestShowConfiguration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STOREFRONT_CONFIG_PATH", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "storefront.yml"), []byte("page_size: 25\n"), 0o600))

	var buf bytes.Buffer
	require.NoError(t, showConfiguration(&buf, "text"))
	assert.Contains(t, buf.String(), "page_size")
	assert.Contains(t, buf.String(), "25")

	buf.Reset()
	require.NoError(t, showConfiguration(&buf, "json"))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, filepath.Join(dir, "storefront.yml"), out["config_file"])

	assert.Error(t, showConfiguration(&buf, "yaml"))
}

func TestApplyConfigurationTestMode(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG_PATH", t.TempDir())
	t.Setenv("STOREFRONT_SESSION_STORE", "memory")

	t.Run("missing data key", func(t *testing.T) {
		t.Setenv("STOREFRONT_DATA_KEY", "")
		var buf bytes.Buffer
		err := applyConfiguration(&buf, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STOREFRONT_DATA_KEY")
	})

	t.Run("valid", func(t *testing.T) {
		t.Setenv("STOREFRONT_DATA_KEY", "2AP/N4ajPY3rsjpaIagjjA+JHjDbIw+hI+uI32jnrP4=")
		var buf bytes.Buffer
		require.NoError(t, applyConfiguration(&buf, true))
		assert.Contains(t, buf.String(), "Configuration is valid.")
		assert.Contains(t, buf.String(), "Test mode: not signalling server.")
	})

	t.Run("postgres without database", func(t *testing.T) {
		t.Setenv("STOREFRONT_DATA_KEY", "2AP/N4ajPY3rsjpaIagjjA+JHjDbIw+hI+uI32jnrP4=")
		t.Setenv("STOREFRONT_SESSION_STORE", "postgres")
		t.Setenv("DATABASE_URL", "")
		var buf bytes.Buffer
		err := applyConfiguration(&buf, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})
}
