package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/somanole/bmicalc/internal/bmi"
	"github.com/somanole/bmicalc/internal/logging"
	"github.com/somanole/bmicalc/internal/telemetry"
)

var (
	errMalformedBody    = errors.New("malformed request body")
	errUnsupportedMedia = errors.New("unsupported content type")
)

// CalculateResponse is the success body of POST /calculate-bmi.
type CalculateResponse struct {
	Success        bool   `json:"success"`
	BMI            string `json:"bmi"`
	Category       string `json:"category"`
	Color          string `json:"color"`
	Message        string `json:"message"`
	Interpretation string `json:"interpretation"`
}

// ErrorResponse is the failure body of every JSON endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// NewCalculateResponse converts a classification result to its wire form.
func NewCalculateResponse(res bmi.Result) CalculateResponse {
	return CalculateResponse{
		Success:        true,
		BMI:            res.BMI(),
		Category:       res.Category.String(),
		Color:          res.Color,
		Message:        res.Message(),
		Interpretation: res.Interpretation,
	}
}

// numberField accepts a JSON number or a numeric string and keeps the raw
// text so JSON and form input go through the same parser.
type numberField struct {
	raw     string
	invalid bool
}

func (n *numberField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = numberField{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = numberField{raw: s}
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			*n = numberField{invalid: true}
			return nil
		}
		*n = numberField{raw: num.String()}
	}
	return nil
}

func (n numberField) missing() bool {
	return !n.invalid && strings.TrimSpace(n.raw) == ""
}

type calculateRequest struct {
	Weight numberField `json:"weight"`
	Height numberField `json:"height"`
}

func (req calculateRequest) measurement() (bmi.Measurement, error) {
	if req.Weight.missing() || req.Height.missing() {
		return bmi.Measurement{}, bmi.ErrMissing
	}
	if req.Weight.invalid || req.Height.invalid {
		return bmi.Measurement{}, bmi.ErrNotNumeric
	}
	return bmi.ParseMeasurement(req.Weight.raw, req.Height.raw)
}

// decodeMeasurement reads a JSON or form payload and validates it.
func decodeMeasurement(r *http.Request) (bmi.Measurement, error) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return bmi.Measurement{}, fmt.Errorf("%w: %s", errUnsupportedMedia, ct)
		}
		mediaType = mt
	}

	var req calculateRequest
	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return bmi.Measurement{}, err
			}
			if errors.Is(err, io.EOF) {
				return bmi.Measurement{}, bmi.ErrMissing
			}
			return bmi.Measurement{}, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 10); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return bmi.Measurement{}, err
			}
			return bmi.Measurement{}, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
		req.Weight = numberField{raw: r.PostFormValue("weight")}
		req.Height = numberField{raw: r.PostFormValue("height")}
	default:
		return bmi.Measurement{}, fmt.Errorf("%w: %s", errUnsupportedMedia, mediaType)
	}

	return req.measurement()
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	start := time.Now()
	ctx, span := s.telemetry.StartCalculation(r.Context(), RequestIDFrom(r.Context()))
	defer span.End()
	logger := logging.FromContext(ctx)

	m, err := decodeMeasurement(r)
	if err != nil {
		status, msg, code := rejection(err)
		logger.Info("calculation rejected", zap.Int("status", status), zap.String("code", code), zap.Error(err))
		s.telemetry.RecordRequestMetrics(ctx, telemetry.OutcomeInvalid, "", msSince(start))
		writeError(w, r, status, msg, code)
		return
	}

	res := s.classify(m)
	body := NewCalculateResponse(res)

	logger.Debug("bmi calculated",
		zap.String("category", body.Category),
		zap.String("bmi", body.BMI),
	)
	s.telemetry.RecordRequestMetrics(ctx, telemetry.OutcomeOK, body.Category, msSince(start))
	writeJSON(w, r, http.StatusOK, body)
}

// rejection maps a decode/validation error to status, public message and code.
func rejection(err error) (int, string, string) {
	var (
		verr     *bmi.ValidationError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message, string(verr.Code)
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "Request body too large", "body_too_large"
	case errors.Is(err, errUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "Content-Type must be application/json or form data", "unsupported_media_type"
	default:
		return http.StatusBadRequest, "Invalid request body", "invalid_body"
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}

// writeJSON encodes data as the response body. The status line is already
// sent when encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		ierr := &bmi.InternalError{Cause: fmt.Errorf("encode response: %w", err)}
		logging.FromContext(r.Context()).Error("failed to write response",
			zap.Error(ierr),
			zap.NamedError("cause", ierr.Cause),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	writeJSON(w, r, status, ErrorResponse{Success: false, Error: message, Code: code})
}
