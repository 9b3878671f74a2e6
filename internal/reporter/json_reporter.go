package reporter

import (
	"encoding/json"
	"os"

	"github.com/roomkangali/gqlbola/internal/model"
)

// WriteJSON writes the full ScanResult as indented JSON to path, mirroring
// the teacher's JSON reporter shell.
func WriteJSON(path string, result model.ScanResult) error {
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
