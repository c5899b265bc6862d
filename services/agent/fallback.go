package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrProvidersExhausted is returned when every credential/model pair in the
// chain failed with a retryable error.
var ErrProvidersExhausted = errors.New("all provider credentials exhausted")

// attempt is one credential/model pair in the ordered fallback list.
type attempt struct {
	credential string
	model      string
}

// FallbackChain tries an ordered list of credential/model pairs: every
// credential with the primary model first, then the first credential with the
// fallback model. A retryable failure moves to the next pair; anything else
// aborts immediately.
type FallbackChain struct {
	provider Provider
	attempts []attempt
	timeout  time.Duration
	logger   *zap.Logger
}

// NewFallbackChain builds the attempt list from the configured credentials
// and models.
func NewFallbackChain(provider Provider, credentials []string, primaryModel, fallbackModel string, timeout time.Duration, logger *zap.Logger) *FallbackChain {
	var attempts []attempt
	for _, cred := range credentials {
		attempts = append(attempts, attempt{credential: cred, model: primaryModel})
	}
	if fallbackModel != "" && fallbackModel != primaryModel && len(credentials) > 0 {
		attempts = append(attempts, attempt{credential: credentials[0], model: fallbackModel})
	}
	return &FallbackChain{
		provider: provider,
		attempts: attempts,
		timeout:  timeout,
		logger:   logger,
	}
}

// Invoke walks the attempt list until one call succeeds. The caller never
// sees which pair answered; transparent fallback is the point.
func (f *FallbackChain) Invoke(ctx context.Context, system string, transcript []ChatMessage, tools []*Tool) (*ProviderResponse, error) {
	if len(f.attempts) == 0 {
		return nil, fmt.Errorf("%w: no credentials configured", ErrProvidersExhausted)
	}

	var lastErr error
	for i, att := range f.attempts {
		cctx := ctx
		var cancel context.CancelFunc
		if f.timeout > 0 {
			cctx, cancel = context.WithTimeout(ctx, f.timeout)
		}
		resp, err := f.provider.Invoke(cctx, system, transcript, tools, att.credential, att.model)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return resp, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
		f.logger.Warn("provider attempt failed, falling back",
			zap.Int("attempt", i+1),
			zap.Int("total", len(f.attempts)),
			zap.String("model", att.model),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("%w: last error: %v", ErrProvidersExhausted, lastErr)
}
