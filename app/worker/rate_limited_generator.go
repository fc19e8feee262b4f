package worker

import (
	"context"
	"time"

	"github.com/amirphl/mailwright/app/services"
	"golang.org/x/time/rate"
)

// RateLimitedGenerator bounds the request rate one worker process sends to the model provider
type RateLimitedGenerator struct {
	next    services.TextGenerator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator wraps next with a token bucket of rps requests per second.
// A non-positive rps disables the limit.
func NewRateLimitedGenerator(next services.TextGenerator, rps float64, burst int) *RateLimitedGenerator {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedGenerator{next: next, limiter: rate.NewLimiter(limit, burst)}
}

// Model returns the wrapped generator's model
func (g *RateLimitedGenerator) Model() string {
	return g.next.Model()
}

// Generate waits for a token, then calls the wrapped generator. The wait counts
// against ctx, so a job whose soft limit expires in the queue fails with it.
func (g *RateLimitedGenerator) Generate(ctx context.Context, req services.GenerationRequest) (*services.GenerationResult, error) {
	started := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// the limiter refuses up front when the deadline is closer than the next token
		if _, ok := ctx.Deadline(); ok {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}
	rateLimitWaitSeconds.Observe(time.Since(started).Seconds())
	return g.next.Generate(ctx, req)
}
