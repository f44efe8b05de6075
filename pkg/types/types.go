// Package types provides core types shared across the Packwright pipeline
package types

import (
	"regexp"
	"strings"
)

// Platform identifies an export platform as declared by a preset
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "macos"
	PlatformWeb     Platform = "web"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformUnknown Platform = "unknown"
)

// EngineMajor selects the engine generation the pipeline drives.
// The two generations differ in export flags, project file name and
// template layout.
type EngineMajor string

const (
	EngineLegacy  EngineMajor = "2"
	EngineCurrent EngineMajor = "3"
)

// ExportTarget is one named export configuration read from the project's
// preset file. Immutable once parsed.
type ExportTarget struct {
	Name       string
	Platform   Platform
	ExportPath string
	Options    map[string]string
}

// BuildArtifact is the output of exporting one preset. Created by the
// export stage; ArchivePath is filled in later by the packager. A given
// artifact is only ever touched by one pipeline stage at a time.
type BuildArtifact struct {
	Preset              *ExportTarget
	SanitizedName       string
	Directory           string
	ExecutablePath      string
	DirectoryEntryCount int
	ArchivePath         string
}

// Archived reports whether the packager produced (or found) an archive
// for this artifact.
func (a *BuildArtifact) Archived() bool {
	return a.ArchivePath != ""
}

// platformAliases maps the platform names engines write into preset
// files onto our canonical identifiers.
var platformAliases = map[string]Platform{
	"windows desktop": PlatformWindows,
	"windows":         PlatformWindows,
	"linux/x11":       PlatformLinux,
	"linux":           PlatformLinux,
	"x11":             PlatformLinux,
	"mac osx":         PlatformMacOS,
	"macos":           PlatformMacOS,
	"osx":             PlatformMacOS,
	"html5":           PlatformWeb,
	"web":             PlatformWeb,
	"android":         PlatformAndroid,
	"ios":             PlatformIOS,
}

// NormalizePlatform maps a raw preset platform string to a Platform.
func NormalizePlatform(raw string) Platform {
	if p, ok := platformAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return p
	}
	return PlatformUnknown
}

// IsDesktop reports whether the platform receives SDK content assembly
// during packaging.
func (p Platform) IsDesktop() bool {
	switch p {
	case PlatformWindows, PlatformLinux, PlatformMacOS:
		return true
	}
	return false
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName derives a filesystem-safe name from a preset name.
// Distinct preset names must stay distinct after sanitization; runs of
// unsafe characters collapse to a single underscore.
func SanitizeName(name string) string {
	s := unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	return strings.Trim(s, "_")
}
