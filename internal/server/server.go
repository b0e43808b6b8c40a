package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kiesman99/halation/internal/api"
	"github.com/kiesman99/halation/internal/imagefile"
	"github.com/kiesman99/halation/internal/render"
	"github.com/kiesman99/halation/pkg/halation"
)

// DefaultMaxUpload is the largest accepted request body
const DefaultMaxUpload = 32 << 20

// Server implements the ServerInterface from the api package
type Server struct {
	startTime time.Time
	version   string
	maxUpload int64
	defaults  halation.Options
	renderer  *render.Renderer
}

// NewServer creates a new server instance. defaults fill in parameters a
// request leaves out.
func NewServer(version string, defaults halation.Options, maxUpload int64) *Server {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &Server{
		startTime: time.Now(),
		version:   version,
		maxUpload: maxUpload,
		defaults:  defaults,
		renderer:  render.NewRenderer(),
	}
}

// NewRouter mounts s under /api/v1 with the standard middleware stack
func NewRouter(s *Server, timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))

	// CORS middleware for API access
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		api.HandlerWithOptions(s, api.ChiServerOptions{
			BaseRouter:       r,
			ErrorHandlerFunc: s.handleParamError,
		})
	})

	// Short health path
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v1/health", http.StatusMovedPermanently)
	})

	return r
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// CreateHalation applies the halation to the uploaded image
func (s *Server) CreateHalation(w http.ResponseWriter, r *http.Request, params api.CreateHalationParams) {
	requestID := requestIDFrom(r)

	req, err := s.convertToRequest(&params)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.VALIDATIONERROR, err.Error(), &requestID, nil)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, api.PAYLOADTOOLARGE,
				"Image exceeds the upload limit", &requestID, map[string]interface{}{
					"limit_bytes": s.maxUpload,
				})
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, api.MALFORMEDIMAGE,
			"Failed to read request body", &requestID, nil)
		return
	}

	result, err := s.renderer.Render(r.Context(), data, req)
	if err != nil {
		s.handleRenderError(w, err, &requestID)
		return
	}

	w.Header().Set("Content-Type", imagefile.ContentType(result.Format))
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.ImageData)))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.ImageData); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// convertToRequest validates params and merges them over the defaults
func (s *Server) convertToRequest(params *api.CreateHalationParams) (*render.Request, error) {
	req := &render.Request{
		Halation: s.defaults,
		Format:   -1,
		Quality:  render.DefaultQuality,
	}

	channels := []struct {
		name  string
		value *int
		dest  *uint8
	}{
		{"r", params.R, &req.Halation.Tint.R},
		{"g", params.G, &req.Halation.Tint.G},
		{"b", params.B, &req.Halation.Tint.B},
		{"threshold", params.Threshold, &req.Halation.Threshold},
	}
	for _, c := range channels {
		if c.value == nil {
			continue
		}
		if *c.value < 0 || *c.value > 255 {
			return nil, fmt.Errorf("%s must be between 0 and 255", c.name)
		}
		*c.dest = uint8(*c.value)
	}

	if params.Tint != nil {
		tint, err := halation.ParseTint(*params.Tint)
		if err != nil {
			return nil, err
		}
		req.Halation.Tint = tint
	}

	if params.Radius != nil {
		if math.IsNaN(*params.Radius) || math.IsInf(*params.Radius, 0) || *params.Radius < 0 {
			return nil, fmt.Errorf("radius must be a finite, non-negative number")
		}
		req.Halation.Radius = *params.Radius
	}

	if params.MaskScale != nil {
		if math.IsNaN(*params.MaskScale) || *params.MaskScale <= 0 || *params.MaskScale > 1 {
			return nil, fmt.Errorf("mask_scale must be in (0, 1]")
		}
		req.Halation.MaskScale = *params.MaskScale
	}

	if params.Format != nil {
		switch *params.Format {
		case api.Png:
			req.Format = imaging.PNG
		case api.Jpeg:
			req.Format = imaging.JPEG
		default:
			return nil, fmt.Errorf("invalid format: %s", *params.Format)
		}
	}

	if params.Quality != nil {
		if *params.Quality < 1 || *params.Quality > 100 {
			return nil, fmt.Errorf("quality must be between 1 and 100")
		}
		req.Quality = *params.Quality
	}

	return req, nil
}

// handleRenderError maps pipeline errors to API error responses
func (s *Server) handleRenderError(w http.ResponseWriter, err error, requestID *string) {
	switch {
	case errors.Is(err, imagefile.ErrUnrecognizedFormat):
		s.writeErrorResponse(w, http.StatusUnsupportedMediaType, api.UNSUPPORTEDIMAGE,
			"Body must be a PNG or JPEG image", requestID, nil)
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, api.TIMEOUT,
			"Processing timed out", requestID, nil)
	case errors.Is(err, halation.ErrMalformedBuffer), isDecodeError(err):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, api.MALFORMEDIMAGE,
			err.Error(), requestID, nil)
	case errors.Is(err, halation.ErrInvalidRadius), errors.Is(err, halation.ErrInvalidScale):
		s.writeErrorResponse(w, http.StatusBadRequest, api.VALIDATIONERROR, err.Error(), requestID, nil)
	default:
		log.Printf("Render failed: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, api.INTERNALERROR,
			"Internal server error", requestID, nil)
	}
}

// handleParamError reports query parameters that could not be parsed
func (s *Server) handleParamError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestIDFrom(r)
	var details map[string]interface{}

	var paramErr *api.InvalidParamFormatError
	if errors.As(err, &paramErr) {
		details = map[string]interface{}{"parameter": paramErr.ParamName}
	}

	s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDPARAMETER, err.Error(), &requestID, details)
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode api.ErrorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// isDecodeError reports whether err came from decoding a recognised but broken image
func isDecodeError(err error) bool {
	var decodeErr *imagefile.DecodeError
	return errors.As(err, &decodeErr)
}

// requestIDFrom returns the chi request ID, or a generated one
func requestIDFrom(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}
