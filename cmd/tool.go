package cmd

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/omniagent/tool"
)

type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

func newToolCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Inspect and execute registered tools",
	}
	cmd.AddCommand(newToolListCmd(root), newToolRunCmd(root))
	return cmd
}

func newToolListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := root.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			tools := rt.Tools().Tools()
			out := make([]toolInfo, 0, len(tools))
			for _, t := range tools {
				info := toolInfo{Name: t.Name(), Description: t.Description()}
				if p, ok := t.(interface{ Parameters() map[string]any }); ok {
					info.Parameters = p.Parameters()
				}
				out = append(out, info)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newToolRunCmd(root *rootOptions) *cobra.Command {
	var (
		params      string
		execCtx     tool.ExecutionContext
		permissions []string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Execute a tool through the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			execCtx.Permissions = permissions
			execCtx.Timeout = timeout
			res, runErr := rt.Tools().ExecuteToolJSON(cmd.Context(), args[0], json.RawMessage(params), execCtx)
			if res != nil {
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&params, "params", "p", "{}", "tool parameters as a JSON object")
	cmd.Flags().StringVar(&execCtx.UserID, "user", "", "caller user id")
	cmd.Flags().StringVar(&execCtx.SessionID, "session", "", "caller session id")
	cmd.Flags().StringSliceVar(&permissions, "permission", nil, "granted permission (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound on the tool invocation")

	return cmd
}
