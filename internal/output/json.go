package output

import (
	"encoding/json"
	"io"

	"github.com/garagon/perfscan/internal/scanner"
)

// JSONFormatter outputs the whole result: every category and every counter.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, result *scanner.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
