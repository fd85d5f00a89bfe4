// Package version reports the build version of the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is overridden at link time with -ldflags "-X ...version.Version=v1.2.3".
var Version = ""

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Resolve returns Version, falling back to the module version recorded in
// the build info, then "dev".
func Resolve() string {
	if Version != "" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func String() string {
	return fmt.Sprintf("corsfs %s (%s, %s/%s)", Resolve(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
