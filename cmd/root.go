// Package cmd implements the omniagent command line interface.
package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/omniagent"
	"github.com/hupe1980/omniagent/internal/config"
)

// Execute runs the root command against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "omniagent",
		Short:         "Agent runtime: routing orchestration, workflows and a tool pipeline",
		Long:          "omniagent routes messages to a local LLM, remote agents or tools, chains them into sequential workflows and runs tools through a permissioned, cached, concurrency-bounded pipeline.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newOrchestrateCmd(opts),
		newWorkflowCmd(opts),
		newToolCmd(opts),
	)

	return rootCmd
}

// runtime loads the config and builds a Runtime. Callers must Close it.
func (o *rootOptions) runtime(ctx context.Context) (*omniagent.Runtime, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	return omniagent.New(ctx, cfg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
