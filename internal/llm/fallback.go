package llm

import (
	"context"
	"log/slog"
)

// FallbackClient wraps a primary client with a fallback provider. If the
// primary fails, the same request is sent to the fallback once.
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *slog.Logger
}

// NewFallbackClient creates a fallback-enabled client. A nil fallback makes
// it a plain passthrough.
func NewFallbackClient(primary, fallback Client, logger *slog.Logger) *FallbackClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackClient{primary: primary, fallback: fallback, logger: logger}
}

// Available reports available when either provider is.
func (c *FallbackClient) Available(ctx context.Context) error {
	err := Probe(ctx, c.primary)
	if err == nil || c.fallback == nil {
		return err
	}
	return Probe(ctx, c.fallback)
}

// Complete implements Client.
func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	c.logger.Warn("llm: primary provider failed",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)
	if c.fallback == nil || ctx.Err() != nil {
		return Response{}, err
	}

	// The fallback has its own default model.
	req.Model = ""
	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("llm: fallback provider also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}
	return fallbackResp, nil
}
