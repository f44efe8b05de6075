package toolchain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrExecutableNotFound indicates no engine binary was found inside the
// extracted toolchain tree.
var ErrExecutableNotFound = errors.New("toolchain executable not found")

// binarySuffixes are the known engine binary name endings, covering the
// 32- and 64-bit naming variants shipped in release archives.
var binarySuffixes = []string{".64", ".x86_64", ".32", ".x86"}

// LocateExecutable searches root depth-first and returns the first
// regular file whose name carries a known binary suffix. Release
// archives nest the binary at an unpredictable depth, so the traversal
// uses an explicit stack rather than recursion.
func LocateExecutable(root string) (string, error) {
	stack := []string{root}

	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := os.Lstat(path)
		if err != nil {
			return "", err
		}

		if info.Mode().IsRegular() {
			if hasBinarySuffix(info.Name()) {
				return path, nil
			}
			continue
		}
		if !info.IsDir() {
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return "", err
		}
		// push in reverse so the first directory entry is explored first
		for i := len(entries) - 1; i >= 0; i-- {
			stack = append(stack, filepath.Join(path, entries[i].Name()))
		}
	}

	return "", ErrExecutableNotFound
}

func hasBinarySuffix(name string) bool {
	for _, suffix := range binarySuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
