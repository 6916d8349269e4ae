// Command genmock generates the mock place report fixture used by the
// integration tests. Reports deliberately cover the three enrichment shapes:
// coordinates only, name only, and both.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/place_reports.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/quailmap/place-enrich/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/place_reports.json", "output path for the fixture")
	flag.Parse()

	reports := []domain.RawPlaceReport{
		{ID: "place-001", Name: "Trafalgar Square", Lat: "51.50809", Lon: "-0.12806", Language: "en", Source: "field-survey"},
		{ID: "place-002", Name: "10 Downing Street", Language: "en", Source: "field-survey"},
		{ID: "place-003", Lat: "48.85837", Lon: "2.29448", Language: "fr", Source: "import"},
		{ID: "place-004", Name: "Brandenburger Tor", Lat: "52.51628", Lon: "13.37770", Language: "de", Source: "import"},
		{ID: "place-005", Name: "Hyde Park Corner", Language: "en", Source: "field-survey"},
		{ID: "place-006", Lat: "41.89021", Lon: "12.49223", Language: "it", Source: "import"},
		{Name: "Grand Place, Brussels", Language: "en", Source: "crowdsourced"},
		{ID: "place-008", Name: "  Plaza Mayor  ", Lat: "40.41554", Lon: "-3.70740", Language: "es", Source: "crowdsourced"},
	}

	if err := writeJSON(*out, reports); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d place reports: %s", len(reports), *out)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
