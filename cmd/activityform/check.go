package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	activityform "github.com/goliatone/go-activityform"
	"github.com/goliatone/go-activityform/pkg/formdata"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Reconstruct and validate a urlencoded form body without submitting it",
		Long: `Reads an application/x-www-form-urlencoded body from file ("-" for stdin),
rebuilds the nested form and prints the validation report as JSON.
Exits non-zero when the form would be rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.readConfig(false)
			if err != nil {
				return err
			}

			var raw []byte
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = afero.ReadFile(a.fs, args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			entries, err := formdata.ParseURLEncoded(strings.TrimSpace(string(raw)))
			if err != nil {
				return err
			}

			v, err := newValidator(cmd.Context(), a.fs, cfg)
			if err != nil {
				return err
			}
			report := activityform.Check(cmd.Context(), v, entries, buildOptions(cfg)...)
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.OK() {
				return errRejected
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
