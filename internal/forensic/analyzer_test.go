package forensic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyai/verdict/internal/config"
	"github.com/fakeyai/verdict/internal/gateway"
)

func testAnalyzer(gw gateway.Client, report *MockTextClient) *Analyzer {
	cfg := config.Default()
	return &Analyzer{
		Gateway: gw,
		Report:  report,
		Models:  cfg.Models,
		Prompts: cfg.Prompts,
		Norm:    NewNormalizer(),
	}
}

func TestAnalyzeMedia(t *testing.T) {
	mock := &MockGateway{Reply: TextReply("```json\n" +
		`{"verdict": "REAL", "deepfakeProbability": 12, "confidence": 94, "summary": "Sensor noise intact."}` +
		"\n```")}
	a := testAnalyzer(mock, nil)

	req := AnalysisRequest{
		Data:     []byte{0xff, 0xd8},
		Kind:     MediaImage,
		MIMEType: "image/jpeg",
		Metadata: FileMetadata{Name: "photo.jpg", Size: 2, MIMEType: "image/jpeg"},
	}
	result, err := a.AnalyzeMedia(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, VerdictReal, result.Verdict)
	assert.Equal(t, 12, result.DeepfakeProbability)
	assert.Equal(t, ConfidenceHigh, result.ConfidenceLevel)
	assert.Equal(t, "Sensor noise intact.", result.Summary)
	assert.Equal(t, req.Metadata, result.FileMetadata)

	// The orchestrator fixes model, payload order and the JSON hint.
	assert.Equal(t, a.Models.Media, mock.LastRequest.Model)
	assert.Equal(t, "application/json", mock.LastRequest.ResponseMIMEType)
	assert.False(t, mock.LastRequest.EnableSearch)
	require.Len(t, mock.LastRequest.Parts, 2)
	assert.Equal(t, []byte{0xff, 0xd8}, mock.LastRequest.Parts[0].Data)
	assert.Equal(t, a.Prompts.Media, mock.LastRequest.Parts[1].Text)
}

func TestAnalyzeMediaMalformedReply(t *testing.T) {
	mock := &MockGateway{Reply: TextReply("I could not produce JSON, sorry.")}
	a := testAnalyzer(mock, nil)

	result, err := a.AnalyzeMedia(context.Background(), AnalysisRequest{Data: []byte{1}, MIMEType: "image/png"})

	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Nil(t, result)
}

func TestAnalyzeMediaGatewayError(t *testing.T) {
	mock := &MockGateway{Err: gateway.ErrMissingCredential}
	a := testAnalyzer(mock, nil)

	_, err := a.AnalyzeMedia(context.Background(), AnalysisRequest{Data: []byte{1}, MIMEType: "image/png"})

	assert.ErrorIs(t, err, gateway.ErrMissingCredential)
}

func TestAnalyzeTextAIDetect(t *testing.T) {
	mock := &MockGateway{Reply: TextReply(`{"aiProbability": 91, "verdictLabel": "AI_GENERATED", "aiSignals": ["templated phrasing"]}`)}
	a := testAnalyzer(mock, nil)

	result, err := a.AnalyzeText(context.Background(), "some suspicious text", ModeAIDetect)

	require.NoError(t, err)
	assert.Equal(t, 91, result.AIProbability)
	assert.Equal(t, "AI_GENERATED", result.VerdictLabel)
	assert.Equal(t, []string{"templated phrasing"}, result.AISignals)
	assert.Empty(t, result.Sources)

	assert.Equal(t, a.Models.Text, mock.LastRequest.Model)
	assert.Equal(t, a.Prompts.AIDetect, mock.LastRequest.SystemInstruction)
	assert.False(t, mock.LastRequest.EnableSearch)
}

func TestAnalyzeTextFactCheck(t *testing.T) {
	reply := TextReply(`{"summary": "Checked.", "claims": [{"claim": "X", "status": "FALSE", "sourceUrl": "https://s.example", "category": "politics"}]}`)
	reply.Candidates[0].GroundingMetadata = &gateway.GroundingMetadata{
		GroundingChunks: []gateway.GroundingChunk{
			{Web: &gateway.WebSource{URI: "https://s.example"}},
		},
	}
	mock := &MockGateway{Reply: reply}
	a := testAnalyzer(mock, nil)

	result, err := a.AnalyzeText(context.Background(), "claim text", ModeFactCheck)

	require.NoError(t, err)
	assert.Equal(t, a.Models.FactCheck, mock.LastRequest.Model)
	assert.True(t, mock.LastRequest.EnableSearch)
	require.Len(t, result.Claims, 1)
	assert.Equal(t, "FALSE", result.Claims[0].Status)
	assert.Equal(t, []Citation{{Title: "Verified Source", URL: "https://s.example"}}, result.Sources)
}

func TestTraceSource(t *testing.T) {
	reply := TextReply(`{"summary": "Stock photo.", "originalEvent": "2021 launch", "manipulationDetected": false, "confidence": 64}`)
	reply.Candidates[0].GroundingMetadata = &gateway.GroundingMetadata{
		GroundingChunks: []gateway.GroundingChunk{
			{Web: &gateway.WebSource{Title: "Agency", URI: "https://agency.example"}},
		},
	}
	mock := &MockGateway{Reply: reply}
	a := testAnalyzer(mock, nil)

	result, err := a.TraceSource(context.Background(), []byte{0x89}, "image/png")

	require.NoError(t, err)
	assert.True(t, mock.LastRequest.EnableSearch)
	assert.Equal(t, "2021 launch", result.OriginalEvent)
	assert.Equal(t, 64, result.Confidence)
	assert.Equal(t, []Citation{{Title: "Agency", URL: "https://agency.example"}}, result.Sources)
}

func TestTranscribeVerbatim(t *testing.T) {
	mock := &MockGateway{Reply: TextReply("  hello there\nsecond line ")}
	a := testAnalyzer(mock, nil)

	text, err := a.Transcribe(context.Background(), []byte{1, 2}, "audio/wav")

	require.NoError(t, err)
	// Verbatim: no trimming, no defaults.
	assert.Equal(t, "  hello there\nsecond line ", text)
	assert.Empty(t, mock.LastRequest.ResponseMIMEType)
}

func TestTranscribeEmptyReply(t *testing.T) {
	mock := &MockGateway{Reply: &gateway.RawReply{}}
	a := testAnalyzer(mock, nil)

	text, err := a.Transcribe(context.Background(), []byte{1}, "audio/wav")

	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestGenerateCertificate(t *testing.T) {
	report := &MockTextClient{Response: "CERTIFICATE OF ANALYSIS ..."}
	a := testAnalyzer(&MockGateway{}, report)

	result := &AnalysisResult{ID: "abc", Verdict: VerdictReal, FileMetadata: FileMetadata{Name: "clip.mp4"}}
	text, err := a.GenerateCertificate(context.Background(), result)

	require.NoError(t, err)
	assert.Equal(t, "CERTIFICATE OF ANALYSIS ...", text)
	// The serialized result rides inside the prompt.
	assert.Contains(t, report.LastPrompt, `"clip.mp4"`)
	assert.Contains(t, report.LastPrompt, `"REAL"`)
}

func TestGenerateCertificateEmptyReply(t *testing.T) {
	a := testAnalyzer(&MockGateway{}, &MockTextClient{Response: "   \n"})

	text, err := a.GenerateCertificate(context.Background(), &AnalysisResult{})

	require.NoError(t, err)
	assert.Equal(t, "Forensic report generation failed.", text)
}

type mockConversation struct {
	sent []string
}

func (m *mockConversation) Send(ctx context.Context, message string) (string, error) {
	m.sent = append(m.sent, message)
	return "reply to " + message, nil
}

func TestStartAssistant(t *testing.T) {
	a := testAnalyzer(&MockGateway{}, nil)
	conv := &mockConversation{}
	var gotModel, gotSystem string
	var gotSearch bool
	a.OpenChat = func(model, systemInstruction string, enableSearch bool) Conversation {
		gotModel, gotSystem, gotSearch = model, systemInstruction, enableSearch
		return conv
	}

	session := a.StartAssistant()
	reply, err := session.Send(context.Background(), "what does a 70% score mean?")

	require.NoError(t, err)
	assert.Equal(t, "reply to what does a 70% score mean?", reply)
	assert.Equal(t, a.Models.Chat, gotModel)
	assert.Equal(t, a.Prompts.Assistant, gotSystem)
	assert.True(t, gotSearch)
}
