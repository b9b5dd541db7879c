package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini talks to the Generative Language REST API directly. The
// official Go SDK predates search grounding and long-running video
// operations, so the wire format is spoken by hand.
type Gemini struct {
	HTTPClient *http.Client
	BaseURL    string
	Credential CredentialFunc
	// Sleep is the wait primitive of the video poll loop. Injected so
	// tests can run the state machine without real delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewGemini builds a gateway with the environment credential resolver
// and a context-aware sleeper.
func NewGemini() *Gemini {
	return &Gemini{
		HTTPClient: http.DefaultClient,
		BaseURL:    defaultBaseURL,
		Credential: EnvCredential,
		Sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type apiBlob struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type apiPart struct {
	Text       string   `json:"text,omitempty"`
	InlineData *apiBlob `json:"inline_data,omitempty"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

type apiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type apiGenerationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ImageConfig      *apiImageConfig `json:"imageConfig,omitempty"`
}

type apiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type apiGenerateRequest struct {
	Contents          []apiContent         `json:"contents"`
	SystemInstruction *apiContent          `json:"systemInstruction,omitempty"`
	Tools             []apiTool            `json:"tools,omitempty"`
	GenerationConfig  *apiGenerationConfig `json:"generationConfig,omitempty"`
}

func encodeParts(parts []Part) []apiPart {
	out := make([]apiPart, 0, len(parts))
	for _, p := range parts {
		if p.Data != nil {
			out = append(out, apiPart{InlineData: &apiBlob{
				MIMEType: p.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		out = append(out, apiPart{Text: p.Text})
	}
	return out
}

func buildRequestBody(req Request, history []apiContent) apiGenerateRequest {
	body := apiGenerateRequest{
		Contents: append(history, apiContent{Role: "user", Parts: encodeParts(req.Parts)}),
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &apiContent{Parts: []apiPart{{Text: req.SystemInstruction}}}
	}
	if req.EnableSearch {
		body.Tools = []apiTool{{GoogleSearch: &struct{}{}}}
	}
	if req.ResponseMIMEType != "" || req.ImageAspectRatio != "" {
		cfg := &apiGenerationConfig{ResponseMIMEType: req.ResponseMIMEType}
		if req.ImageAspectRatio != "" {
			cfg.ImageConfig = &apiImageConfig{AspectRatio: req.ImageAspectRatio}
		}
		body.GenerationConfig = cfg
	}
	return body
}

// Submit performs one generateContent round-trip. The credential is
// resolved first; a missing key fails before any network I/O. Transport
// and non-200 failures surface as ErrBackendUnavailable, unretried.
func (g *Gemini) Submit(ctx context.Context, req Request) (*RawReply, error) {
	reply, err := g.generate(ctx, req, nil)
	return reply, err
}

func (g *Gemini) generate(ctx context.Context, req Request, history []apiContent) (*RawReply, error) {
	key, err := g.Credential()
	if err != nil {
		return nil, err
	}

	bodyBytes, err := json.Marshal(buildRequestBody(req, history))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.BaseURL, req.Model, key)
	respBody, err := g.post(ctx, url, bodyBytes)
	if err != nil {
		return nil, err
	}

	var reply RawReply
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, fmt.Errorf("%w: undecodable reply envelope: %v", ErrBackendUnavailable, err)
	}
	return &reply, nil
}

func (g *Gemini) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req)
}

func (g *Gemini) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return g.do(req)
}

func (g *Gemini) do(req *http.Request) ([]byte, error) {
	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ErrBackendUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrBackendUnavailable, resp.StatusCode, string(body))
	}
	return body, nil
}

// GenerateImage asks an image-generation model for one picture and
// returns its bytes and MIME type. A reply without an inline payload is
// ErrNoMediaReturned.
func (g *Gemini) GenerateImage(ctx context.Context, model, prompt, aspectRatio string) ([]byte, string, error) {
	reply, err := g.Submit(ctx, Request{
		Model:            model,
		Parts:            []Part{TextPart(prompt)},
		ImageAspectRatio: aspectRatio,
	})
	if err != nil {
		return nil, "", err
	}
	data, mimeType, ok := reply.InlineData()
	if !ok {
		return nil, "", fmt.Errorf("%w: image", ErrNoMediaReturned)
	}
	return data, mimeType, nil
}

// ChatSession is a stateful multi-turn conversation. The transcript
// lives in the session; each Send replays it so the backend sees the
// whole exchange. Not safe for concurrent use.
type ChatSession struct {
	g       *Gemini
	model   string
	system  string
	search  bool
	history []apiContent
}

func (g *Gemini) StartChat(model, systemInstruction string, enableSearch bool) *ChatSession {
	return &ChatSession{
		g:      g,
		model:  model,
		system: systemInstruction,
		search: enableSearch,
	}
}

// Send submits one user turn and returns the model's reply verbatim.
// Conversational text has no fixed schema, so nothing is normalized.
func (s *ChatSession) Send(ctx context.Context, message string) (string, error) {
	reply, err := s.g.generate(ctx, Request{
		Model:             s.model,
		Parts:             []Part{TextPart(message)},
		SystemInstruction: s.system,
		EnableSearch:      s.search,
	}, s.history)
	if err != nil {
		return "", err
	}
	text := reply.Text()
	s.history = append(s.history,
		apiContent{Role: "user", Parts: []apiPart{{Text: message}}},
		apiContent{Role: "model", Parts: []apiPart{{Text: text}}},
	)
	return text, nil
}
