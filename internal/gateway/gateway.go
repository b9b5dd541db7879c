package gateway

import (
	"context"
	"errors"
	"os"
)

var (
	// ErrMissingCredential means no usable API key was configured. Checked
	// at call time, before any network attempt, and never retried.
	ErrMissingCredential = errors.New("no API key configured")

	// ErrBackendUnavailable wraps transport failures reaching the
	// inference backend. Retrying is the caller's decision.
	ErrBackendUnavailable = errors.New("inference backend unavailable")

	// ErrNoMediaReturned means a generation call completed but carried no
	// usable output payload.
	ErrNoMediaReturned = errors.New("no media returned by model")
)

// Client is the boundary every orchestrator talks through: one request,
// one raw reply. The backend is modeled as a producer of untyped text
// plus candidate metadata, never as a typed API.
type Client interface {
	Submit(ctx context.Context, req Request) (*RawReply, error)
}

// Part is one content unit of a request: either text or an inline
// binary blob with its MIME type.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

func TextPart(s string) Part {
	return Part{Text: s}
}

func BlobPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// Request describes one backend round-trip.
type Request struct {
	Model             string
	Parts             []Part
	SystemInstruction string
	// ResponseMIMEType hints the reply format ("application/json" for a
	// structured reply). Empty means plain text.
	ResponseMIMEType string
	// EnableSearch turns on the backend's web-grounding tool; grounded
	// replies carry citation chunks on their candidates.
	EnableSearch bool
	// ImageAspectRatio applies to image-generation models only.
	ImageAspectRatio string
}

// WebSource is the web attribution of a grounding chunk.
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks"`
}

type ReplyPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type Content struct {
	Role  string      `json:"role,omitempty"`
	Parts []ReplyPart `json:"parts"`
}

type Candidate struct {
	Content           Content            `json:"content"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// RawReply is the untrusted output of one backend call. Consumed
// immediately by the extractor and citation collector, never mutated.
type RawReply struct {
	Candidates []Candidate `json:"candidates"`
}

// Text returns the concatenated text parts of the first candidate, or
// the empty string when the reply carries none.
func (r *RawReply) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// InlineData returns the first inline binary payload of the first
// candidate, for generation models that answer with media.
func (r *RawReply) InlineData() ([]byte, string, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return nil, "", false
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData.Data, p.InlineData.MIMEType, true
		}
	}
	return nil, "", false
}

// CredentialFunc resolves the backend API key. Resolution happens per
// call so an unrelated startup path never fails on a missing key.
type CredentialFunc func() (string, error)

// EnvCredential reads the API_KEY environment slot. An empty value or
// the literal sentinel "undefined" counts as absent.
func EnvCredential() (string, error) {
	key := os.Getenv("API_KEY")
	if key == "" || key == "undefined" {
		return "", ErrMissingCredential
	}
	return key, nil
}
