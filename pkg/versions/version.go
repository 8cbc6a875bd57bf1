// Package versions reports the build version of registration-api.
//
// Version, Commit and BuildDate are set at link time, for example:
//
//	go build -ldflags "-X github.com/stacklok/event-registration-server/pkg/versions.Version=v1.0.0"
//
// Development builds fall back to the VCS stamp Go embeds in the binary.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

const (
	devVersion = "dev"
	unknown    = "unknown"

	buildDateLayout = "2006-01-02 15:04:05 MST"
	shortCommitLen  = 8
)

// Set with -ldflags
var (
	Version   = devVersion
	Commit    = unknown
	BuildDate = unknown
)

// VersionInfo is what /version and `registration-api version` print
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// String formats the version for log lines and the OpenTelemetry resource
func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", v.Version, v.Commit, v.Platform)
}

// GetVersionInfo returns the version of the running binary
func GetVersionInfo() VersionInfo {
	return resolve(Version, Commit, BuildDate, vcsStamp)
}

// vcsStamp returns the revision and commit time recorded by the go toolchain
func vcsStamp() (revision, commitTime string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			commitTime = s.Value
		}
	}
	return revision, commitTime
}

func resolve(version, commit, buildDate string, stamp func() (string, string)) VersionInfo {
	if version == devVersion {
		revision, commitTime := stamp()
		if commit == unknown && revision != "" {
			commit = revision
		}
		if buildDate == unknown && commitTime != "" {
			buildDate = commitTime
		}
		version = "build-" + shorten(commit)
	}

	if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
		buildDate = t.Format(buildDateLayout)
	}

	return VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func shorten(commit string) string {
	if len(commit) > shortCommitLen {
		return commit[:shortCommitLen]
	}
	return commit
}
