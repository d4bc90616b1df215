// Package llm is the external-model collaborator: one request/response
// completion call per turn, with an optional cheap availability probe.
package llm

import (
	"context"
	"errors"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrUnavailable is returned by probes when the provider cannot serve.
	ErrUnavailable = errors.New("llm: provider unavailable")
	// ErrEmptyResponse is returned when the provider answered with no text.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Message is one chat message sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// Request is a provider-neutral completion request. A negative Temperature
// leaves the provider default.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

type Response struct {
	Text       string
	Usage      Usage
	StopReason string
}

// Client completes a chat request.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Prober is implemented by clients that can check availability without
// generating.
type Prober interface {
	Available(ctx context.Context) error
}

// Probe checks c when it supports probing and reports available otherwise.
func Probe(ctx context.Context, c Client) error {
	if c == nil {
		return ErrUnavailable
	}
	p, ok := c.(Prober)
	if !ok {
		return nil
	}
	return p.Available(ctx)
}

// Generate sends a single prompt with system instructions and returns the
// reply text.
func Generate(ctx context.Context, c Client, prompt, system string, maxTokens int32, temperature float32) (string, error) {
	if c == nil {
		return "", ErrUnavailable
	}
	req := Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if strings.TrimSpace(system) != "" {
		req.System = []string{system}
	}
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
