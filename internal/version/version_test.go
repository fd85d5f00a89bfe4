package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	origVersion, origRead := Version, readBuildInfo
	defer func() { Version, readBuildInfo = origVersion, origRead }()

	tests := []struct {
		name      string
		version   string
		buildInfo *debug.BuildInfo
		want      string
	}{
		{
			name:    "linker override wins",
			version: "v1.2.3",
			buildInfo: &debug.BuildInfo{
				Main: debug.Module{Version: "v0.0.1"},
			},
			want: "v1.2.3",
		},
		{
			name: "module version from build info",
			buildInfo: &debug.BuildInfo{
				Main: debug.Module{Version: "v0.4.0"},
			},
			want: "v0.4.0",
		},
		{
			name: "devel build",
			buildInfo: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
			},
			want: "dev",
		},
		{
			name: "no build info",
			want: "dev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = tt.version
			readBuildInfo = func() (*debug.BuildInfo, bool) {
				return tt.buildInfo, tt.buildInfo != nil
			}
			if got := Resolve(); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "v9.9.9"

	got := String()
	if !strings.HasPrefix(got, "corsfs v9.9.9 (") {
		t.Errorf("String() = %q, want prefix %q", got, "corsfs v9.9.9 (")
	}
}
