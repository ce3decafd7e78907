// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package paths locates per-user files outside the workspace.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigFileName is the name of the configuration file inside ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns the config directory for Morphinspector.
// Order: XDG_CONFIG_HOME/morphinspector, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "morphinspector")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Morphinspector")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "morphinspector")
}

// DefaultConfigFile returns the configuration file read when --config is not
// given. The file need not exist.
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}
