package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/omniagent/orchestration"
)

type orchestrateOutput struct {
	Result string              `json:"result"`
	Task   *orchestration.Task `json:"task,omitempty"`
}

func newOrchestrateCmd(root *rootOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "orchestrate <message>",
		Short: "Route a message and run the resulting task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			message := strings.Join(args, " ")
			var result string
			if sessionID != "" {
				result, err = rt.OrchestrateSession(cmd.Context(), sessionID, message)
			} else {
				result, err = rt.Orchestrate(cmd.Context(), message)
			}
			if err != nil {
				return err
			}

			out := orchestrateOutput{Result: result}
			if tasks := rt.Orchestrator().Tasks(); len(tasks) > 0 {
				out.Task = &tasks[len(tasks)-1]
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id whose conversation buffer records the exchange")

	return cmd
}
