package toolchain_test

import (
	"errors"
	"testing"

	"github.com/packwright/packwright/pkg/toolchain"
)

func TestNormalizeVersion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"3.2.2.stable.official.7a34ce662", "3.2.2.stable"},
		{"3.2.2.stable.official", "3.2.2.stable"},
		{"3.1.1.stable.mono.official", "3.1.1.stable"},
		{"2.1.6.stable.custom_build", "2.1.6.stable"},
		{"3.2.2.stable.headless.official.7a34ce662", "3.2.2.stable"},
		{"3.3.rc1.official", "3.3.rc1"},
		{"3.2.2.stable", "3.2.2.stable"},
		{"3.2.2.stable.official.7a34ce662\n", "3.2.2.stable"},
	}

	for _, c := range cases {
		got, err := toolchain.NormalizeVersion(c.in)
		if err != nil {
			t.Errorf("NormalizeVersion(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeVersion(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeVersion_EmptyIsHardError(t *testing.T) {
	for _, in := range []string{"", "official", "official.custom_build"} {
		if _, err := toolchain.NormalizeVersion(in); !errors.Is(err, toolchain.ErrEmptyVersion) {
			t.Errorf("NormalizeVersion(%q): expected ErrEmptyVersion, got %v", in, err)
		}
	}
}
