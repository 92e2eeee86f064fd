package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/eggcracker/internal/app"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "eggcracker: %v\n", err)
		os.Exit(2)
	}
	app.SetupLogging(os.Stderr, cfg.Verbose, cfg.LogFormat)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

// loadConfig resolves configuration with precedence flags > env > config
// file > dotenv files > defaults.
func loadConfig(args []string) (app.Config, error) {
	fs := flag.NewFlagSet("eggcracker", flag.ContinueOnError)
	var (
		configPath    string
		envFiles      string
		addr          string
		allowlist     string
		maxChars      int
		timeout       string
		userAgent     string
		maxBodyBytes  int64
		maxRedirects  int
		maxConcurrent int
		allowPrivate  bool
		rateLimit     float64
		rateBurst     int
		verbose       bool
		logFormat     string
	)
	fs.StringVar(&configPath, "config", os.Getenv("EGGCRACKER_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&envFiles, "env", ".env,.env.local", "Comma-separated dotenv files to load (missing files are skipped)")
	fs.StringVar(&addr, "addr", app.DefaultAddr, "Listen address")
	fs.StringVar(&allowlist, "allowlist", "", "Comma-separated allowed source domains; empty allows all")
	fs.IntVar(&maxChars, "max-chars", 0, "Excerpt character budget (default 2500)")
	fs.StringVar(&timeout, "timeout", "", "Upstream fetch timeout in seconds (default 15)")
	fs.StringVar(&userAgent, "user-agent", "", "User-Agent for upstream requests")
	fs.Int64Var(&maxBodyBytes, "max-body-bytes", 0, "Maximum upstream response size in bytes (default 5 MiB)")
	fs.IntVar(&maxRedirects, "max-redirects", 0, "Maximum redirects to follow (default 10)")
	fs.IntVar(&maxConcurrent, "max-concurrent", 0, "Maximum concurrent upstream fetches; 0 is unlimited")
	fs.BoolVar(&allowPrivate, "allow-private-hosts", false, "Allow fetching loopback and private network addresses")
	fs.Float64Var(&rateLimit, "rate-limit", 0, "Per-client /read requests per second; 0 disables")
	fs.IntVar(&rateBurst, "rate-burst", 0, "Per-client burst for -rate-limit")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	fs.StringVar(&logFormat, "log-format", "", "Log output: console or json")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}

	if err := app.LoadEnvFiles(app.SplitList(envFiles)...); err != nil {
		return app.Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := app.DefaultConfig()
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.ApplyEnvOverrides(&cfg); err != nil {
		return app.Config{}, fmt.Errorf("environment: %w", err)
	}

	// Only flags given on the command line override lower sources.
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = addr
		case "allowlist":
			cfg.Allowlist = app.SplitList(allowlist)
		case "max-chars":
			cfg.MaxChars = maxChars
		case "timeout":
			d, err := app.ParseSeconds(timeout)
			if err != nil {
				flagErr = fmt.Errorf("-timeout: %w", err)
				return
			}
			cfg.Timeout = d
		case "user-agent":
			cfg.UserAgent = userAgent
		case "max-body-bytes":
			cfg.MaxBodyBytes = maxBodyBytes
		case "max-redirects":
			cfg.MaxRedirects = maxRedirects
		case "max-concurrent":
			cfg.MaxConcurrent = maxConcurrent
		case "allow-private-hosts":
			cfg.AllowPrivateHosts = allowPrivate
		case "rate-limit":
			cfg.RateLimit = rateLimit
		case "rate-burst":
			cfg.RateBurst = rateBurst
		case "v":
			cfg.Verbose = verbose
		case "log-format":
			cfg.LogFormat = logFormat
		}
	})
	if flagErr != nil {
		return app.Config{}, flagErr
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func run(cfg app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	start := time.Now()
	err = a.Run(ctx)
	log.Info().Dur("uptime", time.Since(start)).Msg("stopped")
	return err
}
