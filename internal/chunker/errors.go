package chunker

import (
	"errors"
	"fmt"
)

// ErrConfig is returned when chunking parameters are invalid. It is never
// retried; the caller must fix the configuration.
var ErrConfig = errors.New("invalid chunking config")

// MalformedDocumentError is returned when a table block must be split to
// honor the size limit but contains no parseable row delimiters. The whole
// document fails; no partial chunk set is produced.
type MalformedDocumentError struct {
	DocumentID string
	TableID    string
	Reason     string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document %s: table %s: %s", e.DocumentID, e.TableID, e.Reason)
}
