package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/somanole/bmicalc/internal/bmi"
	"github.com/somanole/bmicalc/internal/logging"
)

func postCalculate(t *testing.T, srv *Server, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/calculate-bmi", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestCalculateJSONSuccess(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	rr := postCalculate(t, srv, "application/json", `{"weight":70,"height":1.75}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got CalculateResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))

	want := CalculateResponse{
		Success:        true,
		BMI:            "22.86",
		Category:       "Normal weight",
		Color:          "#2ecc71",
		Message:        "Your BMI is 22.86 (Normal weight)",
		Interpretation: bmi.Normal.Interpretation(),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculateAcceptsStringsAndForms(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	cases := []struct {
		name        string
		contentType string
		body        string
		wantBMI     string
		wantCat     string
	}{
		{name: "json strings", contentType: "application/json", body: `{"weight":"120","height":"1.80"}`, wantBMI: "37.04", wantCat: "Obese"},
		{name: "json with charset", contentType: "application/json; charset=utf-8", body: `{"weight":120,"height":1.8}`, wantBMI: "37.04", wantCat: "Obese"},
		{name: "no content type", contentType: "", body: `{"weight":70,"height":1.75}`, wantBMI: "22.86", wantCat: "Normal weight"},
		{
			name:        "urlencoded form",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"weight": {"70"}, "height": {"1.75"}}.Encode(),
			wantBMI:     "22.86",
			wantCat:     "Normal weight",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postCalculate(t, srv, tc.contentType, tc.body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var got CalculateResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			assert.True(t, got.Success)
			assert.Equal(t, tc.wantBMI, got.BMI)
			assert.Equal(t, tc.wantCat, got.Category)
		})
	}
}

func TestCalculateValidationErrors(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	cases := []struct {
		name string
		body string
		want *bmi.ValidationError
	}{
		{name: "empty body", body: ``, want: bmi.ErrMissing},
		{name: "missing height", body: `{"weight":70}`, want: bmi.ErrMissing},
		{name: "null weight", body: `{"weight":null,"height":1.75}`, want: bmi.ErrMissing},
		{name: "text weight", body: `{"weight":"heavy","height":1.75}`, want: bmi.ErrNotNumeric},
		{name: "boolean height", body: `{"weight":70,"height":true}`, want: bmi.ErrNotNumeric},
		{name: "zero weight", body: `{"weight":0,"height":1.75}`, want: bmi.ErrWeightNotPositive},
		{name: "negative weight", body: `{"weight":-5,"height":1.75}`, want: bmi.ErrWeightNotPositive},
		{name: "zero height", body: `{"weight":70,"height":0}`, want: bmi.ErrHeightNotPositive},
		{name: "height over guard", body: `{"weight":70,"height":3.01}`, want: bmi.ErrHeightTooLarge},
		{name: "height in centimeters", body: `{"weight":70,"height":175}`, want: bmi.ErrHeightTooLarge},
		{name: "hex float weight", body: `{"weight":"0x1.18p6","height":"1.75"}`, want: bmi.ErrNotNumeric},
		{name: "vanishing height", body: `{"weight":70,"height":1e-200}`, want: bmi.ErrOutOfRange},
		{name: "huge weight tiny height", body: `{"weight":1e308,"height":0.001}`, want: bmi.ErrOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postCalculate(t, srv, "application/json", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)

			resp := decodeError(t, rr)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.want.Message, resp.Error)
			assert.Equal(t, string(tc.want.Code), resp.Code)
		})
	}
}

func TestCalculateFormValidation(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	rr := postCalculate(t, srv, "application/x-www-form-urlencoded", "weight=70")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(bmi.CodeMissing), decodeError(t, rr).Code)
}

func TestCalculateMalformedJSON(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	rr := postCalculate(t, srv, "application/json", `{"weight":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_body", decodeError(t, rr).Code)
}

func TestCalculateUnsupportedMediaType(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	rr := postCalculate(t, srv, "text/plain", "70 1.75")
	require.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	assert.Equal(t, "unsupported_media_type", decodeError(t, rr).Code)
}

func TestCalculateRejectsGet(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/calculate-bmi", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestCalculatePanicBecomesInternalError(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	srv.classify = func(bmi.Measurement) bmi.Result {
		panic("lookup table corrupted")
	}

	rr := postCalculate(t, srv, "application/json", `{"weight":70,"height":1.75}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	resp := decodeError(t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, bmi.InternalMessage, resp.Error)
	assert.NotContains(t, rr.Body.String(), "corrupted")
}

func TestCalculatePanicLogsInternalError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	srv := New(newTestConfig(t), zap.New(core), nil)
	srv.classify = func(bmi.Measurement) bmi.Result {
		panic("lookup table corrupted")
	}

	rr := postCalculate(t, srv, "application/json", `{"weight":70,"height":1.75}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	entries := logs.FilterMessage("handler panic").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, bmi.InternalMessage, fields["error"])
	assert.Contains(t, fields["cause"], "panic: lookup table corrupted")
	assert.NotEmpty(t, fields["request_id"])
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	req := httptest.NewRequest(http.MethodPost, "/calculate-bmi", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), zap.New(core)))
	rr := httptest.NewRecorder()

	writeJSON(rr, req, http.StatusOK, map[string]float64{"bmi": math.Inf(1)})

	entries := logs.FilterMessage("failed to write response").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, bmi.InternalMessage, fields["error"])
	assert.Contains(t, fields["cause"], "unsupported value")
}

func TestIndexAndStaticRoutes(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	for _, path := range []string{"/", "/static/app.js"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}
