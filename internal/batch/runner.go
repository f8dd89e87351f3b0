// Package batch drives analyses across a repository list, one at a time,
// gated by the ledger so resumed runs skip finished work.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/repolens/repolens/internal/agent"
	"github.com/repolens/repolens/internal/config"
	"github.com/repolens/repolens/internal/ghcli"
	"github.com/repolens/repolens/internal/inspect"
	"github.com/repolens/repolens/internal/ledger"
	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/observability"
	"github.com/repolens/repolens/internal/tools"
)

// errorDescription is written when anything unexpected escapes an analysis.
const errorDescription = "Error during processing"

// Runner processes a batch of repositories.
type Runner struct {
	cfg      *config.Config
	gh       ghcli.Runner
	ghClient *ghcli.Client
	provider llm.Provider
	ledger   *ledger.Ledger
	logger   *zap.Logger
	metrics  *observability.Metrics
	observer agent.Observer
}

// NewRunner wires a batch runner from its collaborators.
func NewRunner(cfg *config.Config, gh ghcli.Runner, provider llm.Provider, led *ledger.Ledger, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		gh:       gh,
		ghClient: ghcli.NewClient(gh),
		provider: provider,
		ledger:   led,
		logger:   logger,
		observer: agent.NopObserver{},
	}
}

// SetMetrics installs collectors for batch accounting.
func (r *Runner) SetMetrics(m *observability.Metrics) {
	r.metrics = m
}

// SetObserver installs a per-analysis progress observer.
func (r *Runner) SetObserver(obs agent.Observer) {
	if obs != nil {
		r.observer = obs
	}
}

// Run fetches the repository list and analyzes every repository that lacks a
// ledger row. Each repository produces exactly one row; a failure inside one
// analysis is recorded and never aborts the batch.
func (r *Runner) Run(ctx context.Context) error {
	repos, err := r.ghClient.SearchRepos(ctx, r.cfg.GitHub.Owner, r.cfg.GitHub.RepoLimit)
	if err != nil {
		return fmt.Errorf("list repositories: %w", err)
	}
	r.logger.Info("fetched repository list", zap.Int("count", len(repos)))

	if len(repos) == 0 {
		return nil
	}

	done, err := r.ledger.Completed()
	if err != nil {
		r.logger.Warn("could not read existing ledger, starting fresh", zap.Error(err))
		done = make(map[string]struct{})
	}
	r.logger.Info("resuming batch", zap.Int("already_processed", len(done)))

	if err := r.ledger.EnsureHeader(); err != nil {
		return err
	}

	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, ok := done[repo.Name]; ok {
			r.logger.Info("skipping repository",
				zap.Int("index", i+1), zap.Int("total", len(repos)), zap.String("repo", repo.Name))
			continue
		}

		r.logger.Info("processing repository",
			zap.Int("index", i+1), zap.Int("total", len(repos)), zap.String("repo", repo.Name))

		start := time.Now()
		desc := r.analyzeOne(ctx, repo)

		// An interrupted analysis must not leave a row: the repository gets
		// re-analyzed on the next run instead of being skipped forever.
		if err := ctx.Err(); err != nil {
			r.logger.Warn("batch interrupted, repository left unrecorded",
				zap.String("repo", repo.Name))
			return err
		}

		r.metrics.RecordRepo(outcome(desc), time.Since(start))

		if err := r.ledger.Append(repo.Name, desc); err != nil {
			return fmt.Errorf("record %s: %w", repo.Name, err)
		}
	}

	r.logger.Info("batch complete", zap.String("output", r.ledger.Path()))
	return nil
}

// analyzeOne runs a single analysis and converts any panic into the generic
// error description so the batch always advances.
func (r *Runner) analyzeOne(ctx context.Context, repo ghcli.Repo) (desc string) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("analysis panicked",
				zap.String("repo", repo.Name), zap.Any("panic", p))
			desc = errorDescription
		}
	}()

	inspector := inspect.New(repo.FullName, r.gh, r.cfg.Agent.MaxFiles, r.cfg.Agent.MaxFileBytes)
	registry := tools.NewRegistry(inspector)

	analyzer := agent.New(r.provider, registry, agent.Config{
		Model:       r.cfg.Model.Name,
		Think:       r.cfg.Model.Think,
		MaxTurns:    r.cfg.Agent.MaxTurns,
		TurnTimeout: r.cfg.Agent.TurnTimeout,
	}, r.logger)
	analyzer.SetObserver(r.observer)
	analyzer.SetMetrics(r.metrics)

	return analyzer.Analyze(ctx, repo.Name)
}

func outcome(desc string) string {
	switch desc {
	case agent.FailedDescription:
		return "exhausted"
	case errorDescription:
		return "error"
	default:
		return "ok"
	}
}
