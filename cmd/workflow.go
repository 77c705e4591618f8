package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/omniagent/workflow"
)

type workflowOutput struct {
	ID      string            `json:"id"`
	Status  workflow.Status   `json:"status"`
	Output  string            `json:"output,omitempty"`
	Results map[string]string `json:"results"`
	Error   string            `json:"error,omitempty"`
}

func newWorkflowCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Validate and run YAML workflow definitions",
	}
	cmd.AddCommand(newWorkflowRunCmd(root), newWorkflowValidateCmd())
	return cmd
}

func newWorkflowRunCmd(root *rootOptions) *cobra.Command {
	var (
		file  string
		input string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a workflow definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := workflow.LoadFile(file)
			if err != nil {
				return err
			}

			rt, err := root.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.RegisterWorkflow(wf); err != nil {
				return err
			}
			output, runErr := rt.ExecuteWorkflow(cmd.Context(), wf.ID, input)

			state, err := rt.Workflows().Get(wf.ID)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), workflowOutput{
				ID:      state.ID,
				Status:  state.Status,
				Output:  output,
				Results: state.Results,
				Error:   state.Error,
			}); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "workflow definition (YAML)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "initial input of the first step")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newWorkflowValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a workflow definition without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := workflow.LoadFile(file)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), wf)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "workflow definition (YAML)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
