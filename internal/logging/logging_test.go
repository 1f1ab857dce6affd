package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer

	log := NewWithWriter(&buf, "clima", "abc123", zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Str("query", "London").Msg("searching")

	var entry map[string]any
	is.NoErr(json.Unmarshal(buf.Bytes(), &entry)) // exactly one JSON line
	is.Equal(entry["service"], "clima")
	is.Equal(entry["version"], "abc123")
	is.Equal(entry["query"], "London")
	is.Equal(entry["message"], "searching")
}

func TestVersion(t *testing.T) {
	is := is.New(t)
	is.True(Version() != "")
}
