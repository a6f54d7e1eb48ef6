// Command bibliothek records builds in the download catalog.
//
// Usage:
//
//	bibliothek insert-build --projectName paper --projectFriendlyName Paper \
//	    --versionGroupName 1.20 --versionName 1.20.1 --buildNumber 10 \
//	    --repositoryPath ./paper --storagePath /srv/storage \
//	    --download application:/tmp/paper.jar:<sha256>
//	bibliothek promote-build --build <id> --promoted=true
//	bibliothek fetch --project paper --version 1.20.1 --build 10
//	bibliothek version
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PaperMC/bibliothek/config"
	cerrors "github.com/PaperMC/bibliothek/errors"
)

// Set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Exit codes.
const (
	exitOK                 = 0
	exitUsage              = 1
	exitValidation         = 2
	exitNotFound           = 3
	exitStorageUnavailable = 4
	exitArtifactCopy       = 5
	exitSourceControl      = 6
)

// errUsage marks command line mistakes that have already been reported.
var errUsage = errors.New("usage error")

// commandError is a failure of a command that parsed its flags.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// action adapts a command body so its failures are told apart from flag
// and argument errors.
func action(fn func(cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := fn(cmd); err != nil {
			return &commandError{err: err}
		}
		return nil
	}
}

// cli holds the flags shared by every command.
type cli struct {
	configPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra reads os.Args when given nil.
		args = []string{}
	}

	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var failed *commandError
	switch {
	case errors.As(err, &failed):
		fmt.Fprintf(stderr, "%s: %v\n", cerrors.CodeOf(failed.err), failed.err)
	case errors.Is(err, errUsage):
	default:
		fmt.Fprintf(stderr, "Error: %v\nRun '%s --help' for usage.\n", err, root.Name())
	}
	return exitCode(err)
}

func exitCode(err error) int {
	if errors.Is(err, errUsage) {
		return exitUsage
	}
	switch cerrors.CodeOf(err) {
	case cerrors.CodeInvalidInput:
		return exitValidation
	case cerrors.CodeNotFound:
		return exitNotFound
	case cerrors.CodeStorageUnavailable:
		return exitStorageUnavailable
	case cerrors.CodeArtifactCopyFailed:
		return exitArtifactCopy
	case cerrors.CodeSourceControlFailed:
		return exitSourceControl
	default:
		return exitUsage
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "bibliothek",
		Short:         "Record builds, their changelogs and their artifacts in the download catalog",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
			return errUsage
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "path to the config file")

	root.AddCommand(
		newInsertBuildCommand(c),
		newPromoteBuildCommand(c),
		newFetchCommand(c),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bibliothek %s (%s)\n", Version, GitCommit)
		},
	}
}

// mustRequire marks flags required. Only misspelled names fail.
func mustRequire(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
