package models

// SearchResponse is the response for POST /api/v1/search.
//
// A search that finds nothing is still a success with an empty Places list;
// Error is populated only for request-level failures (bad input, auth,
// rate limiting).
type SearchResponse struct {
	Success bool   `json:"success"`
	Query   string `json:"query,omitempty"`

	// Count is len(Places), included for convenience.
	Count int `json:"count"`

	// Places holds one record per successfully extracted place, in
	// processing order.
	Places []PlaceRecord `json:"places"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
