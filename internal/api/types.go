// Package api holds the HTTP API types and routing for the halation server.
package api

import "time"

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Defines values for OutputFormat.
const (
	Jpeg OutputFormat = "jpeg"
	Png  OutputFormat = "png"
)

// Defines values for ErrorCode.
const (
	INTERNALERROR    ErrorCode = "INTERNAL_ERROR"
	INVALIDPARAMETER ErrorCode = "INVALID_PARAMETER"
	MALFORMEDIMAGE   ErrorCode = "MALFORMED_IMAGE"
	PAYLOADTOOLARGE  ErrorCode = "PAYLOAD_TOO_LARGE"
	TIMEOUT          ErrorCode = "TIMEOUT"
	UNSUPPORTEDIMAGE ErrorCode = "UNSUPPORTED_IMAGE"
	VALIDATIONERROR  ErrorCode = "VALIDATION_ERROR"
)

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// OutputFormat defines model for the format query parameter.
type OutputFormat string

// ErrorCode defines model for ErrorResponse.Error.
type ErrorCode string

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Uptime    *int                 `json:"uptime,omitempty"`
	Version   *string              `json:"version,omitempty"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error     ErrorCode               `json:"error"`
	Message   string                  `json:"message"`
	RequestId *string                 `json:"request_id,omitempty"`
	Details   *map[string]interface{} `json:"details,omitempty"`
}

// CreateHalationParams defines parameters for CreateHalation.
type CreateHalationParams struct {
	// R red channel of the tint, 0-255
	R *int `form:"r,omitempty" json:"r,omitempty"`
	// G green channel of the tint, 0-255
	G *int `form:"g,omitempty" json:"g,omitempty"`
	// B blue channel of the tint, 0-255
	B *int `form:"b,omitempty" json:"b,omitempty"`
	// Tint hex color, overrides r, g and b
	Tint *string `form:"tint,omitempty" json:"tint,omitempty"`
	// Threshold brightness cutoff, 0-255
	Threshold *int `form:"threshold,omitempty" json:"threshold,omitempty"`
	// Radius Gaussian blur radius in pixels
	Radius *float64 `form:"radius,omitempty" json:"radius,omitempty"`
	// MaskScale blur the mask at this fraction of the image size
	MaskScale *float64 `form:"mask_scale,omitempty" json:"mask_scale,omitempty"`
	// Format of the response image, defaults to the upload's format
	Format *OutputFormat `form:"format,omitempty" json:"format,omitempty"`
	// Quality of JPEG output, 1-100
	Quality *int `form:"quality,omitempty" json:"quality,omitempty"`
}
