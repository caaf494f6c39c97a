package version

import (
	"fmt"
	"runtime"
)

// Populated at build time via -ldflags.
var (
	// GitVersion is the semantic version.
	GitVersion = "v0.0.0-master+$Format:%h$"
	// GitCommit is the git sha1 at build time.
	GitCommit = "$Format:%H$"
	// BuildDate is the build timestamp in ISO8601 format.
	BuildDate = "1970-01-01T00:00:00Z"
)

// Info holds versioning information.
type Info struct {
	GitVersion string `json:"gitVersion"`
	GitCommit  string `json:"gitCommit"`
	BuildDate  string `json:"buildDate"`
	GoVersion  string `json:"goVersion"`
	Compiler   string `json:"compiler"`
	Platform   string `json:"platform"`
}

// String returns the semantic version.
func (info Info) String() string {
	return info.GitVersion
}

// Get returns the overall codebase version.
func Get() Info {
	return Info{
		GitVersion: GitVersion,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Compiler:   runtime.Compiler,
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
