package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status         string `json:"status"`
	StoreKeys      int    `json:"store_keys"`
	StoreCapacity  int    `json:"store_capacity"`
	StoreEvictions uint64 `json:"store_evictions"`
	WSClients      int    `json:"ws_clients"`
}

// errorResponse is a generic JSON error body for non-envelope failures.
type errorResponse struct {
	Error string `json:"error"`
}
