package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyai/verdict/internal/config"
	"github.com/fakeyai/verdict/internal/forensic"
	"github.com/fakeyai/verdict/internal/gateway"
)

func testServer(gw gateway.Client, report *forensic.MockTextClient) *Server {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	return &Server{
		Analyzer: &forensic.Analyzer{
			Gateway: gw,
			Report:  report,
			Models:  cfg.Models,
			Prompts: cfg.Prompts,
			Norm:    forensic.NewNormalizer(),
		},
		Config: cfg,
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(gateway.ErrMissingCredential))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(fmt.Errorf("wrapped: %w", gateway.ErrBackendUnavailable)))
	assert.Equal(t, http.StatusBadGateway, statusFor(forensic.ErrMalformedResponse))
	assert.Equal(t, http.StatusBadGateway, statusFor(gateway.ErrNoMediaReturned))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("anything else")))
}

func TestAnalyzeTextEndpoint(t *testing.T) {
	gw := &forensic.MockGateway{Reply: forensic.TextReply(`{"aiProbability": 77, "verdictLabel": "AI_GENERATED"}`)}
	r := testServer(gw, nil).SetupRouter()

	body, _ := json.Marshal(map[string]string{"text": "suspicious paragraph", "mode": "AI_DETECT"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/text", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result forensic.TextAnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 77, result.AIProbability)
	assert.Equal(t, "AI_GENERATED", result.VerdictLabel)
}

func TestAnalyzeTextEndpointRejectsUnknownMode(t *testing.T) {
	r := testServer(&forensic.MockGateway{}, nil).SetupRouter()

	body, _ := json.Marshal(map[string]string{"text": "x", "mode": "SOMETHING_ELSE"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/text", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeMediaEndpoint(t *testing.T) {
	gw := &forensic.MockGateway{Reply: forensic.TextReply(`{"verdict": "REAL", "deepfakeProbability": 10, "confidence": 95}`)}
	r := testServer(gw, nil).SetupRouter()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("kind", "image"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result forensic.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, forensic.VerdictReal, result.Verdict)
	assert.Equal(t, "photo.jpg", result.FileMetadata.Name)
	assert.NotEmpty(t, result.ID)
}

func TestAnalyzeMediaEndpointMissingFile(t *testing.T) {
	r := testServer(&forensic.MockGateway{}, nil).SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/media", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeMediaEndpointBackendDown(t *testing.T) {
	gw := &forensic.MockGateway{Err: gateway.ErrBackendUnavailable}
	r := testServer(gw, nil).SetupRouter()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "photo.jpg")
	_, _ = fw.Write([]byte{1})
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCertificateEndpoint(t *testing.T) {
	report := &forensic.MockTextClient{Response: "FORENSIC CERTIFICATE\n..."}
	r := testServer(&forensic.MockGateway{}, report).SetupRouter()

	body, _ := json.Marshal(forensic.AnalysisResult{ID: "abc", Verdict: forensic.VerdictLikelyFake})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/certificate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FORENSIC CERTIFICATE\n...", resp["certificate"])
}
