package forensic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fakeyai/verdict/internal/config"
	"github.com/fakeyai/verdict/internal/gateway"
	"github.com/fakeyai/verdict/internal/llm"
)

const certificateFallback = "Forensic report generation failed."

// Conversation is one open assistant session. Turns go out verbatim and
// replies come back verbatim; conversational text has no schema to
// normalize.
type Conversation interface {
	Send(ctx context.Context, message string) (string, error)
}

// Analyzer composes the gateway, extractor, citation collector and
// normalizer into the use-case orchestrators. Each method fixes its
// model, instruction, tool set and normalizer mode; the Analyzer itself
// holds no per-call state, so concurrent calls are independent.
type Analyzer struct {
	Gateway gateway.Client
	// Report writes certificates; plain text in, plain text out, so it
	// runs on whichever provider the config selects.
	Report   llm.TextClient
	OpenChat func(model, systemInstruction string, enableSearch bool) Conversation
	Models   config.ModelsConfig
	Prompts  config.PromptsConfig
	Norm     *Normalizer
}

func NewAnalyzer(g *gateway.Gemini, report llm.TextClient, cfg *config.Config) *Analyzer {
	return &Analyzer{
		Gateway: g,
		Report:  report,
		OpenChat: func(model, systemInstruction string, enableSearch bool) Conversation {
			return g.StartChat(model, systemInstruction, enableSearch)
		},
		Models:  cfg.Models,
		Prompts: cfg.Prompts,
		Norm:    NewNormalizer(),
	}
}

// AnalyzeMedia runs the forensic pass over one uploaded file and returns
// a schema-complete result regardless of how much the backend answered.
func (a *Analyzer) AnalyzeMedia(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	reply, err := a.Gateway.Submit(ctx, gateway.Request{
		Model: a.Models.Media,
		Parts: []gateway.Part{
			gateway.BlobPart(req.MIMEType, req.Data),
			gateway.TextPart(a.Prompts.Media),
		},
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("media analysis: %w", err)
	}

	rec, err := ExtractRecord(reply.Text())
	if err != nil {
		return nil, err
	}

	result := a.Norm.NormalizeMedia(rec, req.Metadata)
	return &result, nil
}

// AnalyzeText runs either AI detection or a grounded fact-check over the
// given text.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string, mode TextMode) (*TextAnalysisResult, error) {
	model := a.Models.Text
	instruction := a.Prompts.AIDetect
	factCheck := mode == ModeFactCheck
	if factCheck {
		model = a.Models.FactCheck
		instruction = a.Prompts.FactCheck
	}

	reply, err := a.Gateway.Submit(ctx, gateway.Request{
		Model:             model,
		Parts:             []gateway.Part{gateway.TextPart(text)},
		SystemInstruction: instruction,
		ResponseMIMEType:  "application/json",
		EnableSearch:      factCheck,
	})
	if err != nil {
		return nil, fmt.Errorf("text analysis: %w", err)
	}

	rec, err := ExtractRecord(reply.Text())
	if err != nil {
		return nil, err
	}

	var sources []Citation
	if factCheck {
		sources = CollectCitations(reply.Candidates)
	}
	result := a.Norm.NormalizeText(rec, mode, sources)
	return &result, nil
}

// TraceSource asks the backend to locate the original context of an
// image via web grounding.
func (a *Analyzer) TraceSource(ctx context.Context, imageData []byte, mimeType string) (*SourceTraceResult, error) {
	reply, err := a.Gateway.Submit(ctx, gateway.Request{
		Model: a.Models.Trace,
		Parts: []gateway.Part{
			gateway.BlobPart(mimeType, imageData),
			gateway.TextPart(a.Prompts.Trace),
		},
		ResponseMIMEType: "application/json",
		EnableSearch:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("source trace: %w", err)
	}

	rec, err := ExtractRecord(reply.Text())
	if err != nil {
		return nil, err
	}

	result := a.Norm.NormalizeTrace(rec, CollectCitations(reply.Candidates))
	return &result, nil
}

// Transcribe returns the backend's transcription verbatim. An empty
// reply is an empty string, not an error and not a default: any
// non-empty transcription is by definition backend-authored.
func (a *Analyzer) Transcribe(ctx context.Context, audioData []byte, mimeType string) (string, error) {
	reply, err := a.Gateway.Submit(ctx, gateway.Request{
		Model: a.Models.Transcribe,
		Parts: []gateway.Part{
			gateway.BlobPart(mimeType, audioData),
			gateway.TextPart(a.Prompts.Transcribe),
		},
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return reply.Text(), nil
}

// GenerateCertificate renders a previously normalized result as a formal
// report through the configured text provider.
func (a *Analyzer) GenerateCertificate(ctx context.Context, result *AnalysisResult) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("serialize result: %w", err)
	}

	text, err := a.Report.Generate(ctx, fmt.Sprintf(a.Prompts.Certificate, data))
	if err != nil {
		return "", fmt.Errorf("certificate generation: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return certificateFallback, nil
	}
	return text, nil
}

// StartAssistant opens a grounded conversational session with the
// forensic-assistant persona.
func (a *Analyzer) StartAssistant() Conversation {
	return a.OpenChat(a.Models.Chat, a.Prompts.Assistant, true)
}
