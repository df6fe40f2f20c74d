package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// WriteJSON serialises report verbatim. pretty indents with two spaces.
// HTML characters are not escaped so tag values stay readable.
func WriteJSON(w io.Writer, report *models.Report, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
