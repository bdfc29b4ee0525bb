package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/validate"
)

var errInvalid = errors.New("formstate: form is invalid")

type checkReport struct {
	Valid  bool            `json:"valid"`
	Values map[string]any  `json:"values,omitempty"`
	Errors validate.Errors `json:"errors,omitempty"`
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <definition> <values.json|->",
		Short: "Submit a values file against a definition and report the errors",
		Args:  cobra.ExactArgs(2),
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
			values, err := readValues(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			c, _, err := def.NewController(ctx, l, nil, form.WithLogger(logger))
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.SetValues(values); err != nil {
				return err
			}

			report := checkReport{}
			err = c.Submit(ctx, func(_ context.Context, submitted map[string]any) error {
				report.Valid, report.Values = true, submitted
				return nil
			})
			if err != nil {
				return err
			}
			if !report.Valid {
				report.Errors = c.Errors()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("%w: %d field error(s)", errInvalid, len(report.Errors))
			}
			return nil
		},
	}
}

func readValues(stdin io.Reader, location string) (map[string]any, error) {
	var (
		raw []byte
		err error
	)
	if location == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("formstate: read values: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("formstate: decode values: %w", err)
	}
	return values, nil
}
