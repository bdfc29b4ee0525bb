package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/hosts/tui"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var attempts int
	cmd := &cobra.Command{
		Use:   "run <definition>",
		Short: "Fill in a form interactively and print the submitted values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			def, l, err := opts.load(ctx, args[0])
			if err != nil {
				return err
			}
			c, elements, err := def.NewController(ctx, l, nil, form.WithLogger(logger))
			if err != nil {
				return err
			}
			defer c.Close()

			host := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
				tui.WithLogger(logger),
				tui.WithMaxAttempts(attempts),
			)
			values, err := host.Run(ctx, def, c, elements)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(values)
		},
	}
	cmd.Flags().IntVar(&attempts, "attempts", 3, "how often an invalid form is re-prompted")
	return cmd
}
