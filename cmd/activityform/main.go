package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-activityform/internal/config"
	"github.com/goliatone/go-activityform/internal/prompt"
)

// errRejected makes the process exit non-zero after the report is printed.
var errRejected = errors.New("form rejected")

// app carries what every command shares. Tests swap the filesystem,
// environment and prompt driver.
type app struct {
	fs         afero.Fs
	lookup     config.LookupFunc
	driver     prompt.Driver
	configPath string
}

func newApp() *app {
	return &app{
		fs:     afero.NewOsFs(),
		lookup: os.LookupEnv,
	}
}

func main() {
	if err := newRootCmd(newApp()).ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "activityform <command>",
		Short:         "Receive, validate and forward activity creation forms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newPromptCmd(a))
	return cmd
}

// readConfig loads the config file and environment. Commands that talk to
// the backend validate the result.
func (a *app) readConfig(validate bool) (config.Config, error) {
	if validate {
		return config.Load(a.fs, a.configPath, a.lookup)
	}
	return config.Read(a.fs, a.configPath, a.lookup)
}
