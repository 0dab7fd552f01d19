// Package version reports build information set through -ldflags, falling
// back to what the Go toolchain embeds (module version, vcs revision).
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build information, overridden at link time:
//
//	go build -ldflags "-X github.com/teranos/filestore/version.Version=v0.3.0"
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info is what `filestore version` prints.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Modified   bool   `json:"modified,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the linked-in values, completed from the embedded build info
// when the binary was built without -ldflags.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fill(info, bi)
	}
	return info
}

// fill replaces unset fields with the module version and vcs.* settings.
func fill(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.CommitHash == "dev" {
				info.CommitHash = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func (i Info) String() string {
	s := fmt.Sprintf("filestore %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
	if i.Modified {
		s += " with local changes"
	}
	return s
}

// Short returns the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
