// Package export serializes an ordered expense list into the downloadable
// CSV document (gastos_exportados.csv).
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gastos-app/gastos-gateway/internal/domain"
)

// Filename and ContentType describe the artifact handed to the browser.
const (
	Filename    = "gastos_exportados.csv"
	ContentType = "text/csv; charset=utf-8"
)

// dateLayout renders dates day-first, the es-AR calendar convention the
// original export used.
const dateLayout = "02/01/2006"

var header = []string{"Fecha", "Categoría", "Monto"}

// WriteCSV streams the header row plus one row per record, in input order.
// Fields containing commas, quotes or newlines are quoted per RFC 4180.
// Output is deterministic for a given input; an empty input yields only the
// header line.
func WriteCSV(w io.Writer, records []domain.Expense) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			formatDate(r),
			r.Category,
			fmt.Sprintf("%.2f", r.Amount),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV renders the document in memory.
func EncodeCSV(records []domain.Expense) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(r domain.Expense) string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format(dateLayout)
}
