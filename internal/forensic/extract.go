package forensic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse means the backend text did not parse as a
// structured value after fence-stripping. This is a hard failure:
// defaulting covers missing fields, never an unparsable document.
var ErrMalformedResponse = errors.New("the forensic engine returned an unreadable response format")

// ExtractRecord parses raw backend text into a Record. Only the known
// markdown fence markers are stripped; there is no partial-JSON repair.
// Pure: the same input always yields the same record or the same error.
func ExtractRecord(raw string) (Record, error) {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var rec Record
	if err := json.Unmarshal([]byte(clean), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return rec, nil
}
