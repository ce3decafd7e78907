// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package version provides version metadata for the application.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of morphinspector.
	Version = "dev"
	// Commit holds the current version commit of morphinspector.
	Commit = "none"
	// BuildDate holds the build date of morphinspector.
	BuildDate = "unknown"
)

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("Morphinspector %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}
}

// Semver parses Version. Development builds have no semantic version.
func Semver() (*semver.Version, error) {
	if Version == "dev" {
		return nil, fmt.Errorf("development build has no semantic version")
	}
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", Version, err)
	}
	return v, nil
}

// IsRelease reports whether Version is a tagged release without prerelease suffix.
func IsRelease() bool {
	v, err := Semver()
	return err == nil && v.Prerelease() == ""
}
