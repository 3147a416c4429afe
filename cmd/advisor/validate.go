package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/advisor/internal/demo/bank"
)

type validateOptions struct {
	strict bool
}

func newValidateCmd(flags *rootFlags) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration and the plugin graph it produces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, flags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on any dependency problem regardless of the configured policy")

	return cmd
}

func runValidate(cmd *cobra.Command, flags *rootFlags, opts *validateOptions) error {
	const operation = "validate configuration"

	cfg, err := loadConfig(operation, flags.configPath)
	if err != nil {
		return err
	}

	a, err := newApp(operation, cfg, appOptions{
		verbose:     flags.verbose,
		strict:      opts.strict,
		logOutput:   cmd.ErrOrStderr(),
		traceOutput: io.Discard,
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(cmd.Context()) }()

	if _, err := bank.Weave(a.registry); err != nil {
		return newCommandError(operation, "weaving the demo type", err, "Check the class and method globs of every advisor.")
	}

	out := cmd.OutOrStdout()
	unicode := supportsUnicode(out)
	infos := a.registry.Describe()
	inactive := 0
	for _, info := range infos {
		if info.Disabled == nil {
			continue
		}
		inactive++
		fmt.Fprintf(out, "%s %s: %v\n", warnMark(unicode), info.Metadata.Name, info.Disabled)
	}

	fmt.Fprintf(out, "%s %s is valid: %d plugins, %d inactive\n", okMark(unicode), flags.configPath, len(infos), inactive)
	return nil
}

func okMark(unicode bool) string {
	if unicode {
		return "✓"
	}
	return "[OK]"
}

func warnMark(unicode bool) string {
	if unicode {
		return "⚠"
	}
	return "[!!]"
}
