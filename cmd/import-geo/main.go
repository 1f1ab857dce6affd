// Command import-geo loads the US Census gazetteer into the sqlite place
// index used by the search views.
package main

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/swelljoe/clima/internal/db"
	"github.com/swelljoe/clima/internal/logging"
	"github.com/swelljoe/clima/internal/weather"
)

const (
	placesURL = "https://www2.census.gov/geo/docs/maps-data/data/gazetteer/2023_Gazetteer/2023_Gaz_place_national.zip"
	zctasURL  = "https://www2.census.gov/geo/docs/maps-data/data/gazetteer/2023_Gazetteer/2023_Gaz_zcta_national.zip"
)

type dataset struct {
	name  string
	url   string
	parse func(io.Reader, zerolog.Logger) iter.Seq[db.Entry]
}

var datasets = []dataset{
	{"places", placesURL, parsePlaces},
	{"zctas", zctasURL, parseZCTAs},
}

func main() {
	dbPath := flag.String("db", "data/clima.db", "sqlite gazetteer to write")
	dataDir := flag.String("data", "data", "directory for downloaded archives")
	flag.Parse()

	log := logging.New("import-geo", logging.Version(), zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *dbPath, *dataDir, log); err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
}

func run(ctx context.Context, dbPath, dataDir string, log zerolog.Logger) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	database, err := db.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer database.Close()

	client := &http.Client{
		Timeout:   10 * time.Minute,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	for _, ds := range datasets {
		if err := processDataset(ctx, client, database, dataDir, ds, log); err != nil {
			return fmt.Errorf("failed to process %s: %w", ds.name, err)
		}
	}
	return nil
}

func processDataset(ctx context.Context, client *http.Client, database *db.DB, dataDir string, ds dataset, log zerolog.Logger) error {
	log = log.With().Str("dataset", ds.name).Logger()
	zipPath := filepath.Join(dataDir, ds.name+".zip")

	if _, err := os.Stat(zipPath); errors.Is(err, os.ErrNotExist) {
		log.Info().Str("url", ds.url).Msg("downloading")
		if err := downloadFile(ctx, client, ds.url, zipPath); err != nil {
			return err
		}
	} else {
		log.Info().Str("path", zipPath).Msg("using existing archive")
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, ".txt") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		n, err := database.Import(ctx, ds.parse(rc, log))
		if err != nil {
			return err
		}
		log.Info().Int("rows", n).Msg("import finished")
		return nil
	}
	return fmt.Errorf("no txt file found in %s", zipPath)
}

func downloadFile(ctx context.Context, client *http.Client, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	// Write beside the target so an interrupted download is never reused
	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// records yields the rows of a tab separated gazetteer file after its header.
// Malformed lines are skipped.
func records(r io.Reader, minFields int) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		reader := csv.NewReader(r)
		reader.Comma = '\t'
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		if _, err := reader.Read(); err != nil {
			return
		}

		for {
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil || len(record) < minFields {
				continue
			}
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
			if !yield(record) {
				return
			}
		}
	}
}

// parsePlaces reads 2023_Gaz_place_national.txt:
// USPS(0) GEOID(1) ANSICODE(2) NAME(3) LSAD(4) FUNCSTAT(5) ALAND(6) AWATER(7) ALAND_SQMI(8) AWATER_SQMI(9) INTPTLAT(10) INTPTLONG(11)
func parsePlaces(r io.Reader, log zerolog.Logger) iter.Seq[db.Entry] {
	return func(yield func(db.Entry) bool) {
		for record := range records(r, 12) {
			name := cleanPlaceName(record[3])
			lat, lon, err := parseAndValidateCoordinates(record[10], record[11])
			if err != nil {
				log.Warn().Err(err).Str("place", name).Msg("skipping place")
				continue
			}

			e := db.Entry{Place: weather.Place{
				Name:    name,
				State:   record[0],
				Country: "US",
				Lat:     lat,
				Lon:     lon,
			}}
			if !yield(e) {
				return
			}
		}
	}
}

// parseZCTAs reads 2023_Gaz_zcta_national.txt:
// GEOID(0) ALAND(1) AWATER(2) ALAND_SQMI(3) AWATER_SQMI(4) INTPTLAT(5) INTPTLONG(6)
func parseZCTAs(r io.Reader, log zerolog.Logger) iter.Seq[db.Entry] {
	return func(yield func(db.Entry) bool) {
		for record := range records(r, 7) {
			zipCode := record[0]
			lat, lon, err := parseAndValidateCoordinates(record[5], record[6])
			if err != nil {
				log.Warn().Err(err).Str("zip", zipCode).Msg("skipping zip")
				continue
			}

			e := db.Entry{
				Place: weather.Place{Name: zipCode, Country: "US", Lat: lat, Lon: lon},
				Zip:   zipCode,
			}
			if !yield(e) {
				return
			}
		}
	}
}

func cleanPlaceName(name string) string {
	suffixes := []string{" city", " town", " village", " CDP", " borough"}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return name[:len(name)-len(s)]
		}
	}
	return name
}

// parseAndValidateCoordinates parses and validates latitude and longitude strings
func parseAndValidateCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude out of range: %f", lat)
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude out of range: %f", lon)
	}

	return lat, lon, nil
}
