package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danmuck/ssrpctl/internal/config"
	"github.com/danmuck/ssrpctl/internal/observability"
	"github.com/danmuck/ssrpctl/internal/protocol/ssrp"
	"github.com/rs/zerolog"
)

func main() {
	logger := observability.InitLogger("ssrpctl")
	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "ssrpctl: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	targetsPath string
	host        string
	port        int
	timeout     time.Duration
	browse      bool
	raw         bool
	instances   []string
}

func parseFlags(args []string, out io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("ssrpctl", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.configPath, "config", "", "client config path (toml)")
	fs.StringVar(&opts.targetsPath, "targets", "", "targets inventory path (toml); sweeps every target")
	fs.StringVar(&opts.host, "host", "", "browser host (overrides config)")
	fs.IntVar(&opts.port, "port", 0, "browser port (overrides config)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "receive timeout (overrides config)")
	fs.BoolVar(&opts.browse, "browse", false, "list every instance on the host")
	fs.BoolVar(&opts.raw, "raw", false, "print the payload text instead of key=value lines")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.instances = fs.Args()
	return opts, nil
}

func run(ctx context.Context, args []string, out io.Writer, logger zerolog.Logger) error {
	opts, err := parseFlags(args, out)
	if err != nil {
		return err
	}

	cfg := config.DefaultClientConfig()
	if opts.configPath != "" {
		cfg, err = config.LoadClientConfig(opts.configPath)
		if err != nil {
			return err
		}
		logger.Info().Str("path", opts.configPath).Msg("loaded client config")
	}
	applyOverrides(&cfg, opts)
	if err := config.ValidateClientConfig(cfg); err != nil {
		return err
	}

	if opts.targetsPath != "" {
		targets, err := config.LoadTargetsConfig(opts.targetsPath)
		if err != nil {
			return err
		}
		return sweep(ctx, cfg, targets, out, opts.raw, logger)
	}

	q := query{Host: cfg.Host, Port: cfg.Port, Instances: cfg.Instances, Browse: opts.browse}
	if !q.Browse && len(q.Instances) == 0 {
		return errors.New("no instance named; pass instance names or -browse")
	}
	report, err := resolveTarget(ctx, cfg, q, opts.raw, logger)
	if report != nil {
		printReport(out, report, opts.raw)
	}
	return err
}

func applyOverrides(cfg *config.ClientConfig, opts options) {
	if opts.host != "" {
		cfg.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Port = opts.port
	}
	if opts.timeout > 0 {
		cfg.Transport.ReadTimeout = opts.timeout
	}
	if len(opts.instances) > 0 {
		cfg.Instances = opts.instances
	}
	// One-shot runs never repeat a lookup.
	if opts.targetsPath == "" {
		cfg.Resolver.CacheTTL = 0
	}
	if cfg.Transport.BufferSize == 0 {
		cfg.Transport.BufferSize = ssrp.MaxResponseSize
	}
}
