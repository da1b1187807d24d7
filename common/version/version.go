package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// Set with -ldflags at link time. Filled from the build info otherwise.
var GitCommit string
var Version string

const product = "embed-resolver"

var defaultsOnce sync.Once

func SetDefaults() {
	defaultsOnce.Do(func() {
		build, ok := debug.ReadBuildInfo()
		if !ok {
			build = &debug.BuildInfo{}
		}

		settings := make(map[string]string)
		for _, setting := range build.Settings {
			settings[setting.Key] = setting.Value
		}

		if GitCommit == "" {
			GitCommit = settings["vcs.revision"]
			if GitCommit == "" {
				GitCommit = ".dev"
			} else if settings["vcs.modified"] == "true" {
				GitCommit += "-dirty"
			}
		}

		if Version == "" {
			Version = build.Main.Version
			if Version == "" || Version == "(devel)" {
				Version = "unknown"
			}
		}
	})
}

// UserAgent identifies this build on outbound requests, for example
// "embed-resolver/v1.2.0 (+a1b2c3d)".
func UserAgent() string {
	SetDefaults()
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s/%s (+%s)", product, Version, commit)
}

func Print(usingLogger bool) {
	SetDefaults()

	if usingLogger {
		logrus.WithFields(logrus.Fields{
			"version":   Version,
			"commit":    GitCommit,
			"goVersion": runtime.Version(),
		}).Info("Running " + product)
	} else {
		fmt.Printf("%s %s\nCommit: %s\nGo: %s\n", product, Version, GitCommit, runtime.Version())
	}
}
