package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	logAdapter "github.com/netbatch/netbatchd/internal/adapters/log"
	"github.com/netbatch/netbatchd/internal/cliconfig"
	"github.com/netbatch/netbatchd/pkg/batcher"
	"github.com/netbatch/netbatchd/plugins/domainrules"
	"github.com/netbatch/netbatchd/plugins/retention"
)

const helpBanner = `
 _   _      _   ___       _       _
| \ | | ___| |_| __ )__ _| |_ ___| |__
|  \| |/ _ \ __|  _ \ / _` + "`" + ` | __/ __| '_ \
| |\  |  __/ |_| |_) | (_| | || (__| | | |
|_| \_|\___|\__|____/ \__,_|\__\___|_| |_|
`

const helpDescription = `
Batch outbound HTTP requests on a schedule that favors WiFi and charging,
so a mobile app spends fewer radio wake-ups on requests that can wait.

Highlights:
  - Requests classify into immediate, soon, deferrable, or bulk priority.
  - Drains are gated by network type, charging state, and queue pressure.
  - Durable SQLite-backed queue survives process restarts.
  - Hot-reloadable domain rules and background retention via plugins.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  netbatchd --store-path ~/.netbatch/queue.db --preset battery_saver
  netbatchd --config $HOME/.netbatch/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath, rulesPath, logFile string

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "netbatchd",
		Short:   "Energy-aware batcher for outbound HTTP requests",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if logFile != "" {
				log = zerolog.New(&lumberjack.Logger{
					Filename:   logFile,
					MaxSize:    100,
					MaxBackups: 5,
					MaxAge:     28,
				}).With().Timestamp().Logger()
			}

			log.Info().Interface("config", cfg).Msg("configuration")

			zerologAdapter := logAdapter.NewZerologAdapterWithLogger(log)

			opts := []batcher.Option{
				batcher.WithLogger(zerologAdapter),
				retention.WithDefaultRetention(),
			}
			if rulesPath != "" {
				opts = append(opts, domainrules.WithDomainRules(domainrules.Config{Path: rulesPath}))
			}

			b, err := batcher.New(cfg.ToBatcherConfig(), opts...)
			if err != nil {
				return fmt.Errorf("create batcher: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := b.Start(ctx); err != nil {
				return fmt.Errorf("start batcher: %w", err)
			}

			doneCh := make(chan struct{})
			go func() {
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						status := b.Status()
						if status == batcher.StateStopped || status == batcher.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			select {
			case <-sigCh:
				log.Info().Msg("received signal, stopping...")
			case <-doneCh:
				if b.Status() == batcher.StateCrashed {
					log.Error().Msg("netbatchd crashed")
				}
			}

			if err := b.Stop(); err != nil {
				return fmt.Errorf("stop batcher: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.netbatch/config.toml)")
	root.Flags().StringVar(&rulesPath, "rules", "", "path to hot-reloadable domain classification rules TOML file")
	root.Flags().StringVar(&logFile, "log-file", "", "write rotated JSON logs to this path instead of the console")
	root.Flags().StringVar(&cfg.Preset, "preset", cfg.Preset, "tuning preset: balanced, battery_saver, or minimal")
	root.Flags().StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "path to the durable SQLite request queue")

	root.Flags().DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "HTTP client timeout")
	root.Flags().DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "device state poll interval")
	root.Flags().DurationVar(&cfg.MaxDeferralTime, "max-deferral-time", cfg.MaxDeferralTime, "maximum time a queued request may wait before it is dropped as expired")
	root.Flags().DurationVar(&cfg.MinBatchInterval, "min-batch-interval", cfg.MinBatchInterval, "minimum time between drains")
	root.Flags().DurationVar(&cfg.PiggybackWindow, "piggyback-window", cfg.PiggybackWindow, "window after user network activity during which a drain may piggyback")

	root.Flags().IntVar(&cfg.MaxQueueSize, "max-queue-size", cfg.MaxQueueSize, "queue depth that forces a drain")
	root.Flags().IntVar(&cfg.MaxPayloadSize, "max-payload-size", cfg.MaxPayloadSize, "queue byte size that forces a drain")
	root.Flags().IntVar(&cfg.MaxBatchSize, "max-batch-size", cfg.MaxBatchSize, "maximum requests sent per drain")

	root.Flags().BoolVar(&cfg.PreferWiFi, "prefer-wifi", cfg.PreferWiFi, "prefer draining on WiFi over cellular")
	root.Flags().BoolVar(&cfg.PreferCharging, "prefer-charging", cfg.PreferCharging, "prefer draining while charging")
	root.Flags().BoolVar(&cfg.PiggybackOnUserRequests, "piggyback-on-user-requests", cfg.PiggybackOnUserRequests, "consider a drain whenever the host reports its own network activity")
	root.Flags().BoolVar(&cfg.FlushOnBackground, "flush-on-background", cfg.FlushOnBackground, "run one forced drain when the batcher stops")
	root.Flags().BoolVar(&cfg.AllowCellular, "allow-cellular", cfg.AllowCellular, "allow draining over cellular")
	root.Flags().BoolVar(&cfg.RequireWiFiForBulk, "require-wifi-for-bulk", cfg.RequireWiFiForBulk, "only drain bulk-priority requests on WiFi")
	root.Flags().BoolVar(&cfg.EnableLogging, "enable-logging", cfg.EnableLogging, "enable structured logging")
	root.Flags().BoolVar(&cfg.EnableMetrics, "enable-metrics", cfg.EnableMetrics, "enable statistics aggregation")

	root.Flags().StringSliceVar(&cfg.ImmediateDomains, "immediate-domains", cfg.ImmediateDomains, "comma-separated domains always classified as immediate")
	root.Flags().StringSliceVar(&cfg.DeferrableDomains, "deferrable-domains", cfg.DeferrableDomains, "comma-separated domains always classified as deferrable")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("netbatchd")
		os.Exit(1)
	}
}
