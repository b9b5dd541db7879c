package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/fakeyai/verdict/internal/config"
	"github.com/fakeyai/verdict/internal/forensic"
	"github.com/fakeyai/verdict/internal/gateway"
	"github.com/fakeyai/verdict/internal/llm"
)

type Server struct {
	Analyzer *forensic.Analyzer
	Gateway  *gateway.Gemini
	Config   *config.Config
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using built-in defaults", cfgPath, err)
		cfg = config.Default()
	}

	// Env vars win over the config file.
	if envProvider := os.Getenv("LLM_PROVIDER"); envProvider != "" {
		cfg.LLM.Provider = envProvider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if envAPIKey := os.Getenv("LLM_API_KEY"); envAPIKey != "" {
		cfg.LLM.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("LLM_BASE_URL"); envBaseURL != "" {
		cfg.LLM.BaseURL = envBaseURL
	}

	report, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize report client: %v", err)
	}

	g := gateway.NewGemini()

	return &Server{
		Analyzer: forensic.NewAnalyzer(g, report, cfg),
		Gateway:  g,
		Config:   cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	api.POST("/analyze/media", s.AnalyzeMedia)
	api.POST("/analyze/text", s.AnalyzeText)
	api.POST("/trace", s.TraceSource)
	api.POST("/transcribe", s.Transcribe)
	api.POST("/certificate", s.Certificate)
	api.POST("/generate/image", s.GenerateImage)
	api.POST("/generate/video", s.GenerateVideo)

	r.GET("/ws/assistant", s.Assistant)

	return r
}

// statusFor maps the engine's error taxonomy onto HTTP. Credential and
// transport problems are service-level; a backend that answered but
// answered unusably is a bad gateway.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gateway.ErrMissingCredential),
		errors.Is(err, gateway.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, forensic.ErrMalformedResponse),
		errors.Is(err, gateway.ErrNoMediaReturned):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	log.Printf("%s: %v", c.FullPath(), err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func readUpload(c *gin.Context) ([]byte, forensic.FileMetadata, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return nil, forensic.FileMetadata{}, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
		return nil, forensic.FileMetadata{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
		return nil, forensic.FileMetadata{}, false
	}

	meta := forensic.FileMetadata{
		Name:       header.Filename,
		Size:       header.Size,
		MIMEType:   header.Header.Get("Content-Type"),
		CapturedAt: c.PostForm("captured_at"),
	}
	return data, meta, true
}

func (s *Server) AnalyzeMedia(c *gin.Context) {
	data, meta, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := s.Analyzer.AnalyzeMedia(c.Request.Context(), forensic.AnalysisRequest{
		Data:     data,
		Kind:     forensic.MediaKind(c.DefaultPostForm("kind", string(forensic.MediaImage))),
		MIMEType: meta.MIMEType,
		Metadata: meta,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type analyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
	Mode string `json:"mode"`
}

func (s *Server) AnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	mode := forensic.TextMode(req.Mode)
	if mode == "" {
		mode = forensic.ModeAIDetect
	}
	if mode != forensic.ModeAIDetect && mode != forensic.ModeFactCheck {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode"})
		return
	}

	result, err := s.Analyzer.AnalyzeText(c.Request.Context(), req.Text, mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) TraceSource(c *gin.Context) {
	data, meta, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := s.Analyzer.TraceSource(c.Request.Context(), data, meta.MIMEType)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) Transcribe(c *gin.Context) {
	data, meta, ok := readUpload(c)
	if !ok {
		return
	}

	text, err := s.Analyzer.Transcribe(c.Request.Context(), data, meta.MIMEType)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) Certificate(c *gin.Context) {
	var result forensic.AnalysisResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report, err := s.Analyzer.GenerateCertificate(c.Request.Context(), &result)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificate": report})
}

type generateImageRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	AspectRatio string `json:"aspectRatio"`
}

func (s *Server) GenerateImage(c *gin.Context) {
	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "1:1"
	}

	data, mimeType, err := s.Gateway.GenerateImage(c.Request.Context(), s.Config.Models.Image, req.Prompt, req.AspectRatio)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mimeType": mimeType, "data": data})
}

type generateVideoRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func (s *Server) GenerateVideo(c *gin.Context) {
	var req generateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	uri, err := s.Gateway.GenerateVideo(c.Request.Context(), s.Config.Models.Video, req.Prompt)
	if err != nil {
		s.fail(c, err)
		return
	}
	data, err := s.Gateway.Download(c.Request.Context(), uri)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "video/mp4", data)
}
