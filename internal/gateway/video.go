package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// pollInterval is the fixed wait between status checks of a
// long-running video operation. There is no attempt cap; callers
// needing bounded latency cancel the context.
const pollInterval = 10 * time.Second

type OperationState int

const (
	StateSubmitted OperationState = iota
	StatePolling
	StateDone
	StateFailed
)

func (s OperationState) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// VideoOperation tracks one long-running generation job through
// submitted → polling → done | failed.
type VideoOperation struct {
	Name  string
	State OperationState
	// URI is the download link of the finished video, set on StateDone.
	// It must be re-authenticated via Download before retrieval.
	URI string
}

type apiOperation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Response *struct {
		GenerateVideoResponse *struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
}

// SubmitVideo starts a video generation job and returns it in
// StateSubmitted without waiting.
func (g *Gemini) SubmitVideo(ctx context.Context, model, prompt string) (*VideoOperation, error) {
	key, err := g.Credential()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{
		"instances": []any{
			map[string]string{"prompt": prompt},
		},
		"parameters": map[string]any{
			"sampleCount": 1,
			"resolution":  "720p",
			"aspectRatio": "16:9",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:predictLongRunning?key=%s", g.BaseURL, model, key)
	respBody, err := g.post(ctx, url, body)
	if err != nil {
		return nil, err
	}

	var op apiOperation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, fmt.Errorf("%w: undecodable operation: %v", ErrBackendUnavailable, err)
	}
	if op.Name == "" {
		return nil, fmt.Errorf("%w: operation has no name", ErrBackendUnavailable)
	}
	return &VideoOperation{Name: op.Name, State: StateSubmitted}, nil
}

// PollVideo performs one status check and advances the operation's
// state. It is a no-op once the operation is done or failed.
func (g *Gemini) PollVideo(ctx context.Context, op *VideoOperation) error {
	if op.State == StateDone || op.State == StateFailed {
		return nil
	}
	op.State = StatePolling

	key, err := g.Credential()
	if err != nil {
		return err
	}

	respBody, err := g.get(ctx, fmt.Sprintf("%s/%s?key=%s", g.BaseURL, op.Name, key))
	if err != nil {
		return err
	}

	var status apiOperation
	if err := json.Unmarshal(respBody, &status); err != nil {
		return fmt.Errorf("%w: undecodable operation status: %v", ErrBackendUnavailable, err)
	}
	if !status.Done {
		return nil
	}

	if status.Error != nil {
		op.State = StateFailed
		return fmt.Errorf("%w: video generation failed: %s", ErrNoMediaReturned, status.Error.Message)
	}
	uri := ""
	if status.Response != nil && status.Response.GenerateVideoResponse != nil &&
		len(status.Response.GenerateVideoResponse.GeneratedSamples) > 0 {
		uri = status.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI
	}
	if uri == "" {
		op.State = StateFailed
		return fmt.Errorf("%w: video", ErrNoMediaReturned)
	}
	op.State = StateDone
	op.URI = uri
	return nil
}

// GenerateVideo submits a job and drives the poll loop until the video
// is ready, sleeping a fixed interval between checks. Returns the
// download URI.
func (g *Gemini) GenerateVideo(ctx context.Context, model, prompt string) (string, error) {
	op, err := g.SubmitVideo(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	for {
		if err := g.Sleep(ctx, pollInterval); err != nil {
			return "", err
		}
		if err := g.PollVideo(ctx, op); err != nil {
			return "", err
		}
		if op.State == StateDone {
			return op.URI, nil
		}
	}
}

// Download fetches a generated media resource, re-authenticating the
// URI with the same credential as a query parameter.
func (g *Gemini) Download(ctx context.Context, uri string) ([]byte, error) {
	key, err := g.Credential()
	if err != nil {
		return nil, err
	}
	return g.get(ctx, fmt.Sprintf("%s&key=%s", uri, key))
}
