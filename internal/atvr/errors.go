package atvr

import "fmt"

// UpstreamFetchError is a transport failure, non-200 status or malformed
// envelope from the catalog service.
type UpstreamFetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("atvr %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("atvr %s: %v", e.Op, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }
