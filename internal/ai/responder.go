package ai

import (
	"context"
	"errors"
	"log/slog"

	"mindsupport/internal/middleware"
	"mindsupport/internal/observability"
)

// Responder produces the assistant side of a chat exchange. Model API
// failures never propagate: the canned table answers instead.
type Responder struct {
	client Client
}

// NewResponder wraps the given client. A nil client always falls back.
func NewResponder(client Client) *Responder {
	return &Responder{client: client}
}

// Respond returns the assistant reply for message. The returned bool
// reports whether the reply came from the model API (as opposed to the
// fallback table).
func (r *Responder) Respond(ctx context.Context, message string, history []Message) (string, bool) {
	if r.client == nil {
		observability.AIFallbackTotal.WithLabelValues("no_client").Inc()
		return FallbackResponse(message), false
	}

	reply, err := r.client.Generate(ctx, message, history)
	if err == nil {
		return reply, true
	}

	reason := "error"
	switch {
	case errors.Is(err, ErrNotConfigured):
		reason = "not_configured"
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	}
	if reason != "not_configured" {
		middleware.Logger.WarnContext(ctx, "model API unavailable, using fallback",
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
	}
	observability.AIFallbackTotal.WithLabelValues(reason).Inc()

	return FallbackResponse(message), false
}
