package toolchain

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyVersion indicates version normalization consumed the whole
// string; the engine reported nothing usable.
var ErrEmptyVersion = errors.New("engine version is empty after normalization")

// strippedTags are build-metadata segments removed from a reported
// version before it is used as a template directory key. Release
// channel segments (stable, beta, rc...) are kept; build provenance is
// not. Applied right to left, in this order, until no segment matches.
var strippedTags = []string{"official", "custom_build", "mono", "headless", "server"}

var commitHashTag = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// NormalizeVersion reduces the engine's reported version string to the
// stable key the engine expects as a template directory name, e.g.
// "3.2.2.stable.official.7a34ce662" becomes "3.2.2.stable".
func NormalizeVersion(raw string) (string, error) {
	line := firstLine(raw)
	segments := strings.Split(line, ".")

	for len(segments) > 0 && isStripped(segments[len(segments)-1]) {
		segments = segments[:len(segments)-1]
	}

	version := strings.Join(segments, ".")
	if version == "" {
		return "", ErrEmptyVersion
	}
	return version, nil
}

func isStripped(segment string) bool {
	for _, tag := range strippedTags {
		if segment == tag {
			return true
		}
	}
	return commitHashTag.MatchString(segment)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
