package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	consumerun "github.com/rzbill/qconsumer/internal/cmd/consume"
	workerrun "github.com/rzbill/qconsumer/internal/cmd/worker"
	cfgpkg "github.com/rzbill/qconsumer/internal/config"
	"github.com/rzbill/qconsumer/internal/consumer"
	"github.com/rzbill/qconsumer/internal/orchestrator"
	logpkg "github.com/rzbill/qconsumer/pkg/log"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return 0
	}
	var exit exitCode
	if errors.As(err, &exit) {
		return int(exit)
	}
	fmt.Fprintln(stderr, err)
	var ce *orchestrator.ConfigurationError
	if errors.As(err, &ce) {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return 1
}

// exitCode carries a status that has already been reported to the user.
type exitCode int

func (c exitCode) Error() string { return "exit status " + strconv.Itoa(int(c)) }

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qconsumer",
		Short:         "Consume messages from a shared queue device",
		Long:          "qconsumer drains a shared queue device with a bounded number of concurrent workers, each consuming at most one message.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:     "help [command]",
		Aliases: []string{"h"},
		Short:   "Help about any command",
		Run: func(c *cobra.Command, args []string) {
			target, _, err := c.Root().Find(args)
			if target == nil || err != nil {
				c.Printf("Unknown help topic %q\n", args)
				_ = c.Root().Usage()
				return
			}
			_ = target.Help()
		},
	})
	rootCmd.AddCommand(newConsumeCommand(), newWorkerCommand())
	return rootCmd
}

func newConsumeCommand() *cobra.Command {
	consumeCmd := &cobra.Command{
		Use:     "consume [concurrency]",
		Aliases: []string{"p"},
		Short:   fmt.Sprintf("Consume with 1..%d concurrent workers", orchestrator.MaxConcurrency),
		Long: "Consume with the given number of concurrent workers. Without an argument the\n" +
			"concurrency comes from the config file or QCON_CONCURRENCY (default 1).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 0
			if len(args) == 1 {
				var err error
				if n, err = strconv.Atoi(args[0]); err != nil {
					return &orchestrator.ConfigurationError{Reason: fmt.Sprintf("Invalid value (%s) for concurrency", args[0])}
				}
				if err := orchestrator.Validate(n); err != nil {
					return err
				}
			}
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Concurrency = n
			}

			res, err := consumerun.Run(cmd.Context(), consumerun.Options{Config: cfg, Out: cmd.OutOrStdout()})
			if err != nil {
				var ce *orchestrator.ConfigurationError
				if errors.As(err, &ce) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "consume failed: %v\n", err)
				return exitCode(1)
			}
			if !res.OK() {
				return exitCode(1)
			}
			return nil
		},
	}
	f := consumeCmd.Flags()
	f.String("config", "", "Path to a JSON config file")
	f.String("device", "", "Device path or pebble://<dir>?queue=<name> (default "+cfgpkg.DefaultDevice+")")
	f.String("isolation", "", "Worker isolation: process|goroutine (default process)")
	f.String("probe-request", "", "ioctl request number for the element size query (e.g. 0x6b01)")
	f.String("fsync", "", "Fsync mode for pebble devices: always|interval|never")
	f.Int("fsync-interval-ms", 0, "When --fsync=interval, group-commit window in ms (default 5)")
	f.String("log-level", "", "Log level: debug|info|warn|error")
	f.String("log-format", "", "Log format: text|json (default text)")
	f.String("metrics-textfile", "", "Write Prometheus metrics to this file after the run")
	return consumeCmd
}

// resolveConfig layers defaults, the config file, QCON_* variables and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	f := cmd.Flags()
	path, _ := f.GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("config: %v", err)}
	}
	cfgpkg.FromEnv(&cfg)

	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("device", &cfg.Device)
	str("isolation", &cfg.Isolation)
	str("fsync", &cfg.Fsync)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	str("metrics-textfile", &cfg.MetricsTextfile)
	if f.Changed("fsync-interval-ms") {
		cfg.FsyncIntervalMs, _ = f.GetInt("fsync-interval-ms")
	}
	if f.Changed("probe-request") {
		v, _ := f.GetString("probe-request")
		req, err := parseRequest(v)
		if err != nil {
			return cfgpkg.Config{}, &orchestrator.ConfigurationError{Reason: err.Error()}
		}
		cfg.ProbeRequest = req
	}
	return cfg, nil
}

func parseRequest(v string) (uint, error) {
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --probe-request %q", v)
	}
	return uint(n), nil
}

func newWorkerCommand() *cobra.Command {
	workerCmd := &cobra.Command{
		Use:    "worker",
		Short:  "Run one consume attempt on an inherited device descriptor",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fd, _ := cmd.Flags().GetInt("fd")
			worker, _ := cmd.Flags().GetInt("worker")
			rawReq, _ := cmd.Flags().GetString("probe-request")
			var req uint
			if rawReq != "" {
				var err error
				if req, err = parseRequest(rawReq); err != nil {
					return err
				}
			}

			logger, err := workerrun.LoggerFromEnv()
			if err != nil {
				logger = logpkg.NewLogger()
				logger.Warn("worker log settings ignored", logpkg.Err(err))
			}

			out, err := workerrun.Run(context.Background(), workerrun.Options{
				FD:           fd,
				Worker:       worker,
				ProbeRequest: req,
				Out:          cmd.OutOrStdout(),
				Logger:       logger,
			})
			if err != nil {
				logger.Error("worker report failed", logpkg.Err(err))
				return exitCode(1)
			}
			if code := workerrun.ExitCode(out); code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}
	workerCmd.Flags().Int("fd", consumer.InheritedFD, "Inherited device descriptor")
	workerCmd.Flags().Int("worker", 0, "Worker index assigned by the parent")
	workerCmd.Flags().String("probe-request", "", "ioctl request number for the element size query")
	return workerCmd
}
