package main

import (
	"slices"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

const placesFile = "USPS\tGEOID\tANSICODE\tNAME\tLSAD\tFUNCSTAT\tALAND\tAWATER\tALAND_SQMI\tAWATER_SQMI\tINTPTLAT\tINTPTLONG\n" +
	"OR\t4159000\t02411471\tPortland city\t25\tA\t345\t25\t133.4\t9.7\t45.5371\t-122.6500\n" +
	"TX\t4800100\t02409677\tAbbott city\t25\tA\t1\t0\t0.6\t0.0\tnorth\t-97.0750\n" +
	"short\tline\n" +
	"ME\t2360545\t00573881\tPortland city\t25\tA\t55\t108\t21.3\t41.8\t43.6634\t-70.2808\n"

const zctasFile = "GEOID\tALAND\tAWATER\tALAND_SQMI\tAWATER_SQMI\tINTPTLAT\tINTPTLONG\n" +
	"97201\t5433369\t295117\t2.1\t0.1\t45.5075\t-122.6905\n" +
	"99999\t1\t1\t0\t0\t95.0\t0\n"

func TestParsePlaces(t *testing.T) {
	is := is.New(t)

	entries := slices.Collect(parsePlaces(strings.NewReader(placesFile), zerolog.Nop()))

	is.Equal(len(entries), 2) // bad latitude and short line skipped
	is.Equal(entries[0].Name, "Portland")
	is.Equal(entries[0].State, "OR")
	is.Equal(entries[0].Country, "US")
	is.Equal(entries[0].Lat, 45.5371)
	is.Equal(entries[1].State, "ME")
}

func TestParseZCTAs(t *testing.T) {
	is := is.New(t)

	entries := slices.Collect(parseZCTAs(strings.NewReader(zctasFile), zerolog.Nop()))

	is.Equal(len(entries), 1) // latitude out of range skipped
	is.Equal(entries[0].Name, "97201")
	is.Equal(entries[0].Zip, "97201")
	is.Equal(entries[0].Lon, -122.6905)
}

func TestCleanPlaceName(t *testing.T) {
	is := is.New(t)
	is.Equal(cleanPlaceName("Portland city"), "Portland")
	is.Equal(cleanPlaceName("Bel Air CDP"), "Bel Air")
	is.Equal(cleanPlaceName("Juneau"), "Juneau")
}
