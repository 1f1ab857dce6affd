package logging

import (
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger tagged with the service name and version
func New(service, version string, level zerolog.Level) zerolog.Logger {
	return NewWithWriter(os.Stdout, service, version, level)
}

func NewWithWriter(w io.Writer, service, version string, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
}

// Version reports the vcs revision the binary was built from
func Version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	infoMap := map[string]string{}
	for _, s := range buildInfo.Settings {
		infoMap[s.Key] = s.Value
	}

	sha := infoMap["vcs.revision"]
	if sha == "" {
		return "devel"
	}
	if infoMap["vcs.modified"] == "true" {
		sha += "+"
	}
	return sha
}
