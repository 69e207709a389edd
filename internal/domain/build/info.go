// Package build describes the running binary.
package build

import "fmt"

const repoURL = "https://github.com/bnema/pagekit"

// Info holds values injected via ldflags at build time.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// Short renders the version and, when known, the abbreviated commit.
func (i Info) Short() string {
	version := i.Version
	if version == "" {
		version = "dev"
	}
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit == "" || commit == "unknown" || commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}

// RepoURL returns the project repository URL.
func RepoURL() string {
	return repoURL
}
