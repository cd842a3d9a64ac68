package ports

import "net/http"

// HTTPClient is the minimal transport seam between the adapter and the
// network. Connection handling, TLS and any retry policy live behind it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
