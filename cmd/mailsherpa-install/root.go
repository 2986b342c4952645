package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/customeros/mailsherpa-installer/internal/binary"
	"github.com/customeros/mailsherpa-installer/internal/logging"
	"github.com/customeros/mailsherpa-installer/internal/platform"
)

// options are the flags of the root command. None is required.
type options struct {
	verbose bool
	debug   bool
	baseURL string
	osName  string
	arch    string
}

// run executes the installer and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args == nil {
		args = []string{}
	}

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stdout, "An error occurred: %v\n", err)
		return binary.ExitCode(err)
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mailsherpa-install",
		Short: "Download and install the mailsherpa binary for this platform",
		Long: `Download and install the mailsherpa binary for this platform.

The archive for the detected platform (macos, linux-arm64 or linux-amd64) is
downloaded from https://mailsherpa.sh into the current directory, extracted,
and the binary renamed to ./mailsherpa. The archive is removed afterwards.

Exit status:
  0  success
  1  unexpected error
  2  unsupported platform
  3  download failed
  4  extraction failed
  5  rename failed
  6  cleanup failed`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return install(cmd.Context(), opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.BoolVar(&opts.verbose, "verbose", false, "Show verbose output (info level logs)")
	flags.BoolVar(&opts.debug, "debug", false, "Show debug output, including the detected platform and Linux distribution")
	flags.StringVar(&opts.baseURL, "base-url", binary.DefaultBaseURL, "Where release archives are downloaded from")
	flags.StringVar(&opts.osName, "os", "", "Override the detected operating system")
	flags.StringVar(&opts.arch, "arch", "", "Override the detected machine architecture")
	_ = flags.MarkHidden("base-url")
	_ = flags.MarkHidden("os")
	_ = flags.MarkHidden("arch")

	return cmd
}

func install(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	logger, err := logging.New(logLevel(opts), stderr)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	workDir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "get working directory")
	}

	mgr, err := binary.NewManager(binary.Config{
		WorkDir:  workDir,
		BaseURL:  opts.baseURL,
		Detector: detector(opts),
		Out:      stdout,
		Progress: progressWriter(stderr),
		Logger:   logger,
	})
	if err != nil {
		return errors.Wrap(err, "create binary manager")
	}

	_, err = mgr.Install(ctx)
	if err != nil {
		logger.Info("installation failed", "kind", binary.KindOf(err).String(), "error", err)
	}
	return err
}

func logLevel(opts *options) string {
	switch {
	case opts.debug:
		return logging.LevelDebug
	case opts.verbose:
		return logging.LevelInfo
	default:
		return logging.LevelError
	}
}

// detector uses the host unless --os or --arch is given. A missing half of
// the override is filled from the host.
func detector(opts *options) platform.Detector {
	if opts.osName == "" && opts.arch == "" {
		return platform.NewDetector()
	}
	return &overrideDetector{osName: opts.osName, arch: opts.arch, host: platform.NewDetector()}
}

type overrideDetector struct {
	osName string
	arch   string
	host   platform.Detector
}

func (d *overrideDetector) Detect(ctx context.Context) (*platform.Info, error) {
	osName, arch := d.osName, d.arch
	if osName == "" || arch == "" {
		info, err := d.host.Detect(ctx)
		if err != nil {
			var unsupported *platform.UnsupportedError
			if !errors.As(err, &unsupported) {
				return nil, err
			}
			info = &platform.Info{OS: unsupported.OS, ArchRaw: unsupported.Arch}
		}
		if osName == "" {
			osName = info.OS
		}
		if arch == "" {
			arch = info.ArchRaw
		}
	}
	return platform.StaticDetector{OS: osName, Arch: arch}.Detect(ctx)
}

// progressWriter returns stderr when it is a terminal, nil otherwise.
func progressWriter(stderr io.Writer) io.Writer {
	f, ok := stderr.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return stderr
	}
	return nil
}
