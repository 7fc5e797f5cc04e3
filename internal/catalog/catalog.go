package catalog

import (
	"time"

	"github.com/google/uuid"
)

/*
The catalog is a record of what has been processed.
The catalog is a primitive for verifying, inventorying and auditing
conversion runs.
*/

// Catalog represents the catalog of records that have been processed
type Catalog struct {
	ID                   string    `json:"id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Source               string    `json:"source"`
	Target               string    `json:"target"`
	NumSourceRecords     int       `json:"num_source_records"`
	NumRecordsProcessed  int       `json:"num_records_processed"`
	NumRecordsSkipped    int       `json:"num_records_skipped"`
	NumNonNumericRecords int       `json:"num_non_numeric_records"`
	Success              bool      `json:"success"`
	Error                string    `json:"error,omitempty"`
}

func New(id uuid.UUID, source string, target string) *Catalog {
	return &Catalog{
		ID:        id.String(),
		StartTime: time.Now().UTC(),
		Source:    source,
		Target:    target,
	}
}

// Finish stamps the end time and records the outcome of the run.
func (c *Catalog) Finish(err error) {
	c.EndTime = time.Now().UTC()
	c.Success = err == nil
	if err != nil {
		c.Error = err.Error()
	}
}

func (c *Catalog) Duration() time.Duration {
	if c.EndTime.IsZero() {
		return 0
	}
	return c.EndTime.Sub(c.StartTime)
}
