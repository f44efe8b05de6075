// Package presets parses the project's export preset configuration
package presets

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/packwright/packwright/pkg/types"
)

// ConfigFileName is the preset file expected at the project root
const ConfigFileName = "export_presets.cfg"

// ErrConfigNotFound indicates the project has no preset configuration.
// Callers treat this as pipeline-fatal.
var ErrConfigNotFound = errors.New("export preset configuration not found")

var (
	presetHeader  = regexp.MustCompile(`^\[preset\.(\d+)\]$`)
	optionsHeader = regexp.MustCompile(`^\[preset\.(\d+)\.options\]$`)
)

// Load parses the preset file at the project root into export targets
// in file order. A preset without an export path is not a parse error;
// it surfaces with an empty path and the caller decides whether to
// skip it. Preset names must stay unique after sanitization because
// build and archive paths derive from them.
func Load(projectRoot string) ([]types.ExportTarget, error) {
	path := filepath.Join(projectRoot, ConfigFileName)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	var targets []types.ExportTarget
	current := -1 // index into targets being filled
	inOptions := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if presetHeader.MatchString(line) {
			targets = append(targets, types.ExportTarget{
				Options: make(map[string]string),
			})
			current = len(targets) - 1
			inOptions = false
			continue
		}
		if optionsHeader.MatchString(line) {
			inOptions = true
			continue
		}
		if strings.HasPrefix(line, "[") {
			// some other project section, not ours
			current = -1
			continue
		}
		if current < 0 {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		if inOptions {
			targets[current].Options[key] = value
			continue
		}

		switch key {
		case "name":
			targets[current].Name = value
		case "platform":
			targets[current].Platform = types.NormalizePlatform(value)
		case "export_path":
			targets[current].ExportPath = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	if err := checkUniqueNames(targets); err != nil {
		return nil, err
	}

	return targets, nil
}

func checkUniqueNames(targets []types.ExportTarget) error {
	seen := make(map[string]string, len(targets))
	for _, t := range targets {
		key := types.SanitizeName(t.Name)
		if other, dup := seen[key]; dup {
			return fmt.Errorf("preset names %q and %q collide after sanitization", other, t.Name)
		}
		seen[key] = t.Name
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
