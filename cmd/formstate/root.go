package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/internal/loader"
	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/trigger"
)

type globalOptions struct {
	logLevel  string
	mode      string
	allowHTTP bool
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "formstate",
		Short:         "Drive declarative forms through validation and submit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.mode, "mode", "", "override the definition's validation mode (onChange, onBlur, onSubmit)")
	flags.BoolVar(&opts.allowHTTP, "allow-http", false, "allow definitions and schemas to be fetched over HTTP")
	flags.DurationVar(&opts.timeout, "http-timeout", 10*time.Second, "timeout for HTTP fetches")

	root.AddCommand(newRunCmd(opts), newCheckCmd(opts), newServeCmd(opts))
	return root
}

func (o *globalOptions) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

func (o *globalOptions) loader() schema.Loader {
	return loader.New(schema.LoaderOptions{AllowHTTP: o.allowHTTP, RequestTimeout: o.timeout})
}

// load reads the definition at location and applies the --mode override.
func (o *globalOptions) load(ctx context.Context, location string) (*definition.Form, schema.Loader, error) {
	src, err := schema.ParseSource(location)
	if err != nil {
		return nil, nil, err
	}
	l := o.loader()
	def, err := definition.Load(ctx, l, src)
	if err != nil {
		return nil, nil, err
	}
	if o.mode != "" {
		def.Mode = string(trigger.ParseMode(o.mode))
	}
	return def, l, nil
}
