package version

import (
	"runtime/debug"
	"strings"
	"sync"
)

// ModulePath is the import path of the restkit module.
const ModulePath = "github.com/kbukum/restkit"

// Version may be set at build time using -ldflags.
var Version = "dev"

var (
	resolved     string
	resolveOnce  sync.Once
	readBuildInf = debug.ReadBuildInfo
)

// Get returns the library version, e.g. "v0.4.1" or "dev".
func Get() string {
	resolveOnce.Do(func() {
		resolved = resolve()
	})
	return resolved
}

// UserAgent returns the default User-Agent header value sent by the client.
func UserAgent() string {
	return "restkit/" + strings.TrimPrefix(Get(), "v")
}

func resolve() string {
	if Version != "dev" {
		return Version
	}
	info, ok := readBuildInf()
	if !ok {
		return Version
	}
	if info.Main.Path == ModulePath && validVersion(info.Main.Version) {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil && validVersion(dep.Replace.Version) {
			return dep.Replace.Version
		}
		if validVersion(dep.Version) {
			return dep.Version
		}
	}
	return Version
}

func validVersion(v string) bool {
	return v != "" && v != "(devel)"
}
