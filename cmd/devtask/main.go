package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"devtask/internal/command"
	"devtask/internal/config"
	"devtask/internal/exitcodes"
	"devtask/internal/history"
	"devtask/internal/logging"
	"devtask/internal/metrics"
	"devtask/internal/runner"
	"devtask/internal/scheduler"
	"devtask/internal/task"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (default: devtask.yaml in the task root)")
	root := flag.String("root", ".", "Task root directory (ignored when -config is given)")
	dryRun := flag.Bool("dry-run", false, "Announce what would run or be removed without doing it")
	quiet := flag.Bool("quiet", false, "Suppress per-path removal announcements")
	list := flag.Bool("list", false, "List available tasks and exit")
	watch := flag.Bool("watch", false, "Run the clean cycle periodically instead of one-shot tasks")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitcodes.InvalidConfig)
	}

	registry, err := task.Standard(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitcodes.RuntimeError)
	}

	if *list {
		printTasks(registry)
		os.Exit(exitcodes.Success)
	}

	names := flag.Args()
	if len(names) == 0 && !*watch {
		fmt.Fprintln(os.Stderr, "Usage: devtask [flags] TASK [TASK...]")
		fmt.Fprintln(os.Stderr, "")
		printTasks(registry)
		os.Exit(exitcodes.InvalidConfig)
	}

	logger := logging.NewWithConfig(cfg)

	if *dryRun {
		logger.Println("DRY RUN MODE: no commands will run, no files will be removed")
	}

	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		metrics.StartServer(cfg.PrometheusAddress(), logger)
	}

	opts := []runner.Option{}
	if *dryRun {
		opts = append(opts, runner.DryRun())
	}
	if *quiet {
		opts = append(opts, runner.Quiet())
	}

	// Task runs still work when the history database cannot be opened
	// (read-only checkouts, CI sandboxes); history is best-effort.
	db, err := history.New(cfg.DatabasePath)
	if err != nil {
		logger.Printf("WARNING: history disabled: %v", err)
	} else {
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: failed to close history database: %v", err)
			}
		}()
		opts = append(opts, runner.WithHistory(db))
	}

	r := runner.New(cfg, registry, logger, opts...)

	if *watch {
		if err := runWatch(cfg, r, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("ERROR: watch mode failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		logger.Println("devtask stopped")
		return
	}

	if err := r.Run(context.Background(), names...); err != nil {
		var unknown *runner.UnknownTaskError
		if errors.As(err, &unknown) {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", unknown)
			os.Exit(exitcodes.UnknownTask)
		}
		// External tool failures propagate the tool's exit status
		// unmodified; the tool's output is the entire error signal.
		os.Exit(command.ExitCode(err, exitcodes.RuntimeError))
	}
}

func runWatch(cfg *config.Config, r *runner.Runner, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	logger.Println("starting watch mode...")
	return scheduler.Run(ctx, cfg, r, logger)
}

func loadConfig(configPath, root string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	candidate := filepath.Join(root, config.DefaultFileName)
	if _, err := os.Stat(candidate); err == nil {
		return config.Load(candidate)
	}
	return config.Default(root)
}

func printTasks(registry *task.Registry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Available tasks:")
	for _, name := range registry.Names() {
		t, _ := registry.Get(name)
		fmt.Fprintf(w, "  %s\t%s\n", name, t.Summary)
	}
	w.Flush()
}
