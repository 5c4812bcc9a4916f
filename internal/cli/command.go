package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fendrel/codeloom/internal/cliconfig"
	"github.com/fendrel/codeloom/internal/lang"
)

// NewCommand builds the cobra command codeloom and each per-language front
// end share. When fixedLang is non-empty, the language is baked in (the
// per-language binaries: codeloom-go, codeloom-python, ...) and no --lang
// flag is offered; when empty, --lang is required (the universal codeloom
// binary), mirroring the teacher's own split between cmd/morfx's single
// --lang flag and the language-specific wiring a fixed front end would do.
func NewCommand(fixedLang string) *cobra.Command {
	var (
		langFlag     string
		replace      string
		hasReplace   bool
		where        []string
		recursive    bool
		limit        int
		onlyMatching bool
		dryRun       bool
		confirm      bool
		detail       bool
		onParseError cliconfig.OnParseError
	)

	use := "codeloom PATTERN FILE [FILE...]"
	if fixedLang != "" {
		use = "codeloom-" + fixedLang + " PATTERN FILE [FILE...]"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: "Structural, AST-aware search and rewrite for source code",
		Long: "codeloom matches a tree-sitter pattern against a file's syntax tree " +
			"and, given --replace, rewrites every match in place.",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliconfig.Load(".codeloom.yaml")
			if err != nil {
				return fmt.Errorf("codeloom: loading config: %w", err)
			}

			l := fixedLang
			if l == "" {
				l = langFlag
			}
			if l == "" {
				return fmt.Errorf("codeloom: --lang is required (supported: %s)", joinSupported())
			}

			opts := Options{
				Lang:         l,
				Pattern:      args[0],
				Files:        args[1:],
				Where:        where,
				Recursive:    recursive,
				Limit:        limit,
				OnlyMatching: onlyMatching,
				DryRun:       dryRun,
				Confirm:      confirm,
				Detail:       detail,
				OnParseError: onParseError,
			}
			if !cmd.Flags().Changed("recursive") {
				opts.Recursive = cfg.Recursive
			}
			if !cmd.Flags().Changed("confirm") {
				opts.Confirm = cfg.Confirm
			}
			if !cmd.Flags().Changed("detail") {
				opts.Detail = cfg.Detail
			}
			if !cmd.Flags().Changed("limit") {
				opts.Limit = cfg.Limit
			}
			if !cmd.Flags().Changed("on-parse-error") {
				opts.OnParseError = cfg.OnParseError
			}
			if hasReplace {
				opts.Replace = &replace
			}

			return Run(opts)
		},
	}

	flags := cmd.Flags()
	if fixedLang == "" {
		flags.StringVarP(&langFlag, "lang", "l", "", fmt.Sprintf("target language (%s)", joinSupported()))
	}
	flags.StringVarP(&replace, "replace", "r", "", "replacement pattern; rewrites every match in place")
	flags.StringArrayVar(&where, "where", nil, "post-match predicate script (repeatable)")
	flags.BoolVar(&recursive, "recursive", false, "recurse into matched subtrees for nested matches")
	flags.IntVar(&limit, "limit", 0, "cap matches per file (0 means unlimited)")
	flags.BoolVar(&onlyMatching, "only-matching", false, "print only the matched (or replacement) text")
	flags.BoolVar(&dryRun, "dry-run", false, "report changes without writing files")
	flags.BoolVar(&confirm, "confirm", false, "prompt before each replacement")
	flags.BoolVar(&detail, "detail", false, "annotate matches with bound metavariables")
	flags.Var(newOnParseErrorValue(cliconfig.OnParseErrorIgnore, &onParseError), "on-parse-error", "policy on parse errors: ignore, warn, or error")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		hasReplace = flags.Changed("replace")
		return nil
	}

	return cmd
}

var _ pflag.Value = (*onParseErrorValue)(nil)

func joinSupported() string {
	s := lang.Supported()
	out := ""
	for i, name := range s {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}
