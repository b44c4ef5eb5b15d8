package selection

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/rshade/dexter/internal/pokeapi"
)

// MimeType is the content type of exported files.
const MimeType = "text/csv;charset=utf-8;"

// Header is the CSV header row.
//
//nolint:gochecknoglobals // Fixed header row.
var Header = []string{"ID", "Name", "Description", "Details URL"}

// Export is a rendered CSV file.
type Export struct {
	Content  string
	Filename string
	MimeType string
}

// Exporter renders items as CSV with details links under baseURL.
type Exporter struct {
	baseURL string
}

// NewExporter creates an Exporter. An empty baseURL uses the public API.
func NewExporter(baseURL string) *Exporter {
	if baseURL == "" {
		baseURL = pokeapi.DefaultBaseURL
	}
	return &Exporter{baseURL: strings.TrimRight(baseURL, "/")}
}

// Export renders items. The file is named "{n}_items.csv"; rows carry the
// item's types as "Type: a,b" and its details URL.
func (e *Exporter) Export(items []Item) (Export, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return Export{}, fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		row := []string{
			strconv.Itoa(it.ID),
			it.Name,
			"Type: " + strings.Join(it.Types, ","),
			e.DetailsURL(it.ID),
		}
		if err := w.Write(row); err != nil {
			return Export{}, fmt.Errorf("write csv row %d: %w", it.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Export{}, fmt.Errorf("flush csv: %w", err)
	}

	return Export{
		Content:  strings.TrimSuffix(buf.String(), "\n"),
		Filename: fmt.Sprintf("%d_items.csv", len(items)),
		MimeType: MimeType,
	}, nil
}

// DetailsURL is the API URL of the Pokémon with id.
func (e *Exporter) DetailsURL(id int) string {
	return fmt.Sprintf("%s/pokemon/%d/", e.baseURL, id)
}
