package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	activityform "github.com/goliatone/go-activityform"
	"github.com/goliatone/go-activityform/internal/logger"
	"github.com/goliatone/go-activityform/internal/prompt"
	"github.com/goliatone/go-activityform/pkg/backend"
	"github.com/goliatone/go-activityform/pkg/submission"
)

func newPromptCmd(a *app) *cobra.Command {
	var (
		submit     bool
		credential string
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill in an activity form interactively",
		Long: `Asks for each activity field on the terminal. Without --submit the answers
are validated and the report is printed. With --submit they are sent to the
backend using --credential or ACTIVITYFORM_CREDENTIAL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.readConfig(submit)
			if err != nil {
				return err
			}

			driver := a.driver
			if driver == nil {
				driver = prompt.NewSurveyDriver(cmd.OutOrStdout())
			}
			entries, err := prompt.Collect(ctx, driver)
			if err != nil {
				return err
			}

			v, err := newValidator(ctx, a.fs, cfg)
			if err != nil {
				return err
			}

			if !submit {
				report := activityform.Check(ctx, v, entries, buildOptions(cfg)...)
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if !report.OK() {
					return errRejected
				}
				return nil
			}

			if credential == "" {
				credential, _ = a.lookup("ACTIVITYFORM_CREDENTIAL")
			}
			client, err := backend.New(cfg.Backend.BaseURL, backend.WithTimeout(cfg.Backend.Timeout.Std()))
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Service, cfg.Env, "stderr")
			if err != nil {
				return err
			}
			defer log.SafeSync()

			orch, err := activityform.NewOrchestrator(v, client, submissionOptions(cfg, submission.WithLogger(log))...)
			if err != nil {
				return err
			}
			out := orch.Submit(ctx, strings.TrimSpace(credential), entries)
			if err := writeJSON(cmd.OutOrStdout(), submission.Respond(out, submission.DefaultMessages())); err != nil {
				return err
			}
			switch out.State {
			case submission.StateSucceeded:
				return nil
			case submission.StateRejected:
				return errRejected
			default:
				return fmt.Errorf("submission %s: %w", out.State, out.Err)
			}
		},
	}

	cmd.Flags().BoolVar(&submit, "submit", false, "send the answers to the backend")
	cmd.Flags().StringVar(&credential, "credential", "", "session credential used with --submit")
	return cmd
}
