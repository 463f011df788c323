package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Engine.TickRate, cfg.Engine.TickRate)
	assert.Equal(t, 150*time.Millisecond, cfg.Engine.PendingPollInterval.Std())
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 64, cfg.Scene.OctreeMaxCapacity)
	assert.Equal(t, 2, cfg.Scene.OctreeMaxDepth)
	assert.Equal(t, 3, cfg.Scene.CollisionRetries)
	assert.True(t, cfg.Scene.CollisionsOn())
	assert.True(t, cfg.Scene.AutoClearOn())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParse_OverridesAndExplicitFalse(t *testing.T) {
	doc := `
[engine]
tick_rate = 30
pending_poll_interval = "50ms"

[renderer]
present_mode = "uncapped"
msaa = 4

[scene]
use_selection_octree = true
collisions_enabled = false
auto_clear = false
clear_color = [1.0, 0.0, 0.0, 1.0]

[logging]
format = "json"
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Engine.TickRate)
	assert.Equal(t, 50*time.Millisecond, cfg.Engine.PendingPollInterval.Std())
	assert.Equal(t, "uncapped", cfg.Renderer.PresentMode)
	assert.Equal(t, 4, cfg.Renderer.MSAA)
	assert.True(t, cfg.Scene.UseSelectionOctree)
	assert.False(t, cfg.Scene.CollisionsOn())
	assert.False(t, cfg.Scene.AutoClearOn())
	assert.Equal(t, [4]float32{1, 0, 0, 1}, cfg.Scene.ClearColor)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad present mode": "[renderer]\npresent_mode = \"triple\"\n",
		"bad msaa":         "[renderer]\nmsaa = 2\n",
		"bad duration":     "[engine]\npending_poll_interval = \"soon\"\n",
		"malformed":        "[engine\n",
		"bad sample ratio": "[tracing]\nsample_ratio = 1.5\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\ntitle = \"demo\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
