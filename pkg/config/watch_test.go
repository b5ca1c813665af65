package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := writeConfig(t, "page_size: 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *StorefrontConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, func(c *StorefrontConfig) { changes <- c }, func(error) {})
	}()

	path := filepath.Join(dir, ConfigFileName)
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	// The watcher may not be registered yet; keep writing until it notices.
	for {
		select {
		case c := <-changes:
			assert.Equal(t, 42, c.PageSize)
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("page_size: 42\n"), 0o600))
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
