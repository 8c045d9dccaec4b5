package api

// AskRequest is the body of POST /ask
type AskRequest struct {
	Question string `json:"question"`
}

// RefreshResponse is the body of POST /refresh
type RefreshResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse reports whether a dataset snapshot is loaded
type HealthResponse struct {
	Status    string `json:"status"`
	Loaded    bool   `json:"snapshotLoaded"`
	SwappedAt string `json:"snapshotSwappedAt,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
