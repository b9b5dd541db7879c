package forensic

import (
	"context"

	"github.com/fakeyai/verdict/internal/gateway"
)

// MockGateway records the last request and returns a canned reply.
type MockGateway struct {
	Reply       *gateway.RawReply
	Err         error
	LastRequest gateway.Request
}

func (m *MockGateway) Submit(ctx context.Context, req gateway.Request) (*gateway.RawReply, error) {
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Reply, nil
}

// TextReply builds a RawReply carrying a single text part.
func TextReply(text string) *gateway.RawReply {
	return &gateway.RawReply{
		Candidates: []gateway.Candidate{
			{Content: gateway.Content{Parts: []gateway.ReplyPart{{Text: text}}}},
		},
	}
}

type MockTextClient struct {
	Response   string
	Err        error
	LastPrompt string
}

func (m *MockTextClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
