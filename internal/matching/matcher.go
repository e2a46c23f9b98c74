package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
)

// Result holds the matches and the strategy that produced them.
type Result struct {
	Strategy string
	Matches  []Match
}

// Matcher runs strategies in order until one succeeds.
type Matcher struct {
	strategies []Strategy
	logger     *zap.Logger
}

func NewMatcher(logger *zap.Logger, strategies ...Strategy) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{strategies: strategies, logger: logger}
}

// Match returns the first successful strategy result. When every strategy fails
// the errors are joined. Quota exhaustion and context cancellation stop the run early.
func (m *Matcher) Match(ctx context.Context, req Request) (*Result, error) {
	req.TargetRole = strings.TrimSpace(req.TargetRole)
	req.Location = strings.TrimSpace(req.Location)
	if req.TargetRole == "" {
		return nil, errors.New("target role is required")
	}
	if len(m.strategies) == 0 {
		return nil, errors.New("no matching strategies configured")
	}

	var errs []error
	for _, strategy := range m.strategies {
		matches, err := strategy.Match(ctx, req)
		if err == nil {
			m.logger.Info("matching strategy succeeded",
				zap.String("strategy", strategy.Name()),
				zap.Int("matches", len(matches)),
			)
			return &Result{Strategy: strategy.Name(), Matches: matches}, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", strategy.Name(), err))
		m.logger.Warn("matching strategy failed",
			zap.String("strategy", strategy.Name()),
			zap.Stringer("kind", ai.Classify(err)),
			zap.Error(err),
		)

		if ctx.Err() != nil || ai.Classify(err) == ai.KindQuota {
			break
		}
	}

	return nil, errors.Join(errs...)
}
