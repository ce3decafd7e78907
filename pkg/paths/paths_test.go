package paths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDir(t *testing.T) {
	t.Run("XDGOverride", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		assert.Equal(t, filepath.Join("/tmp/xdg-config", "morphinspector"), ConfigDir())
	})

	t.Run("PlatformDefault", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		switch runtime.GOOS {
		case "windows":
			t.Setenv("AppData", `C:\AppData`)
			assert.Equal(t, filepath.Join(`C:\AppData`, "Morphinspector"), ConfigDir())
		default:
			t.Setenv("HOME", "/home/tester")
			assert.Equal(t, filepath.Join("/home/tester", ".config", "morphinspector"), ConfigDir())
		}
	})
}

func TestDefaultConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	assert.Equal(t, filepath.Join("/tmp/xdg-config", "morphinspector", "config.yaml"), DefaultConfigFile())
}
