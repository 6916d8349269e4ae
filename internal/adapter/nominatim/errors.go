package nominatim

import "fmt"

// StatusError reports a non-2xx HTTP status from the geocoding backend.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nominatim: unexpected status %d", e.Code)
}

// ProviderError reports an application-level error embedded in a 200 response
// body, such as a malformed query.
type ProviderError struct {
	Reason string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("nominatim: provider error: %s", e.Reason)
}
