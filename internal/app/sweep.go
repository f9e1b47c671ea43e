package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/pdfdesk/internal/cli"
)

func runSweep(args []string) int {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	olderThan := fs.Duration("older-than", 0, "Override UPLOAD_RETENTION for this run")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *olderThan < 0 {
		fmt.Fprintln(os.Stderr, "--older-than must be >= 0")
		return 2
	}

	cfg, logger, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *olderThan > 0 {
		cfg.UploadRetention = *olderThan
	}
	if cfg.UploadRetention <= 0 {
		fmt.Fprintln(os.Stderr, "UPLOAD_RETENTION is 0; nothing to sweep (use --older-than)")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := newRuntime(ctx, cfg, logger, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer rt.Close()

	result, err := rt.sweeper().RunOnce(ctx)
	fmt.Printf(
		"sweep dir=%s retention=%s removed=%d bytes=%d scratch_removed=%d\n",
		rt.store.Root(),
		cfg.UploadRetention,
		len(result.Removed),
		result.RemovedBytes,
		result.ScratchRemoved,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep incomplete: %v\n", err)
		return 1
	}
	return 0
}
