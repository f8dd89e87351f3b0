package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repolens/repolens/internal/batch"
	"github.com/repolens/repolens/internal/ghcli"
	"github.com/repolens/repolens/internal/ledger"
	"github.com/repolens/repolens/internal/llm/ollama"
	"github.com/repolens/repolens/internal/logging"
	"github.com/repolens/repolens/internal/observability"
)

// NewRunCmd wires the batch analysis command.
func NewRunCmd(opts *Options) *cobra.Command {
	var (
		outputPath    string
		modelOverride string
		owner         string
		limit         int
		quiet         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze repositories and append one-line descriptions to the CSV ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if outputPath != "" {
				cfg.Output.Path = outputPath
			}
			if modelOverride != "" {
				cfg.Model.Name = modelOverride
			}
			if owner != "" {
				cfg.GitHub.Owner = owner
			}
			if limit > 0 {
				cfg.GitHub.RepoLimit = limit
			}

			logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort

			metrics := observability.NewMetrics()
			if cfg.Metrics.Enabled {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
				go func() {
					if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
						logger.Warn("metrics listener stopped", zap.Error(err))
					}
				}()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gh := ghcli.NewCLI(cfg.GitHub.Binary, cfg.GitHub.Timeout)
			provider := ollama.NewProvider("ollama", cfg.Ollama.BaseURL, cfg.Ollama.Timeout)
			led := ledger.New(cfg.Output.Path)

			runner := batch.NewRunner(cfg, gh, provider, led, logger)
			runner.SetMetrics(metrics)
			if !quiet {
				runner.SetObserver(newPrinter(cmd.OutOrStdout()))
			}

			return runner.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Override output CSV path")
	cmd.Flags().StringVar(&modelOverride, "model", "", "Override model name for this run")
	cmd.Flags().StringVar(&owner, "owner", "", "Override repository owner filter")
	cmd.Flags().IntVar(&limit, "limit", 0, "Override repository limit")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress live model output")
	return cmd
}
