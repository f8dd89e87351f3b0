package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repolens/repolens/internal/ghcli"
	"github.com/repolens/repolens/internal/llm/ollama"
)

// NewDoctorCmd returns a health-check command validating config and the two
// external collaborators: the gh binary and the Ollama server.
func NewDoctorCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, gh authentication, and Ollama reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK. Model: %s, output: %s\n", cfg.Model.Name, cfg.Output.Path)

			var failed bool

			gh := ghcli.NewClient(ghcli.NewCLI(cfg.GitHub.Binary, cfg.GitHub.Timeout))
			if err := gh.AuthStatus(cmd.Context()); err != nil {
				failed = true
				fmt.Fprintf(out, "GitHub CLI: FAIL (%v)\n", err)
			} else {
				fmt.Fprintln(out, "GitHub CLI: OK")
			}

			provider := ollama.NewProvider("ollama", cfg.Ollama.BaseURL, cfg.Ollama.Timeout)
			if err := provider.Ping(cmd.Context()); err != nil {
				failed = true
				fmt.Fprintf(out, "Ollama (%s): FAIL (%v)\n", cfg.Ollama.BaseURL, err)
			} else {
				fmt.Fprintf(out, "Ollama (%s): OK\n", cfg.Ollama.BaseURL)
			}

			if failed {
				return fmt.Errorf("environment checks failed")
			}
			return nil
		},
	}
}
