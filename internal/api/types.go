// internal/api/types.go
package api

import (
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/types"
)

// ColorizeRequest is the body of POST /v1/colorize.
type ColorizeRequest struct {
	Text string `json:"text"`
	// Multicolor defaults to true when omitted.
	Multicolor *bool `json:"multicolor,omitempty"`
}

// ColorizeResponse carries the ANSI-colored text.
type ColorizeResponse struct {
	Output string `json:"output"`
}

type (
	ScoresResponse   = service.WordScores
	SpectrumResponse = service.SpectrumResult
	StatsResponse    = types.StoreStats
)

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
