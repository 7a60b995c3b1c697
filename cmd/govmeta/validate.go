// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/govmeta/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files|globs...]",
	Short: "Check local metadata files against the extraction rules",
	Long: `Validate extracts each file and reports ok or the first structured
error (kind, field and path). Arguments may be plain paths or glob patterns
with ** support, e.g. "drafts/**/*.jsonld".

With --watch, the matching directories are watched and files are
re-validated whenever they change. Stop with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	addFetchFlags(validateCmd.Flags())
	validateCmd.Flags().Bool("watch", false, "re-validate files when they change")
	validateCmd.Flags().Duration("debounce", validate.DefaultDebounce, "how long to collect changes before re-validating")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, fetchFlags); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newFetchClient(cfg.Fetch)

	ctx, cancel := signalContext()
	defer cancel()

	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		debounce, _ := cmd.Flags().GetDuration("debounce")
		w, err := validate.NewWatcher(args, client, os.Stdout, log.With("component", "watch"), debounce)
		if err != nil {
			return err
		}
		if files, err := validate.Expand(args); err == nil && len(files) > 0 {
			validate.Files(ctx, client, files, os.Stdout)
		}
		fmt.Fprintln(os.Stderr, "Watching for changes (Ctrl-C to stop)")
		return w.Run(ctx)
	}

	files, err := validate.Expand(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched %v", args)
	}

	summary := validate.Files(ctx, client, files, os.Stdout)
	if summary.Invalid > 0 {
		return fmt.Errorf("%d file(s) invalid", summary.Invalid)
	}
	return nil
}
