package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/mapfuse/internal/optimizer"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. It returns the
// app, the buffer receiving the written graph and the log buffer.
func SetupAppTest(t *testing.T, cfg Config, modules ...optimizer.Module) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if len(cfg.Passes) == 0 {
		cfg.Passes = []string{"map_fusion"}
	}
	valid, err := NewConfig(cfg)
	require.NoError(t, err)

	outBuffer, logBuffer := &SafeBuffer{}, &SafeBuffer{}
	testApp, err := NewApp(outBuffer, logBuffer, valid, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("MAPFUSE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
