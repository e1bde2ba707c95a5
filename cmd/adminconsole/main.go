// Package main provides the adminconsole binary: a command-line front end
// over the resilient session and data-access core.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/docuvault/go-admin-core/backingstore"
	"github.com/docuvault/go-admin-core/backingstore/postgres"
	"github.com/docuvault/go-admin-core/console"
	"github.com/docuvault/go-admin-core/internal/config"
	"github.com/docuvault/go-admin-core/resolver"
	"github.com/docuvault/go-admin-core/resolver/remote"
	"github.com/docuvault/go-admin-core/seed"
	"github.com/docuvault/go-admin-core/session"
	"github.com/docuvault/go-admin-core/session/kvstore"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		endpoint   string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "adminconsole",
		Short:         "Document management admin console core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "override the primary endpoint URL")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	build := func(ctx context.Context) (*console.Client, func(), error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		if endpoint != "" {
			cfg.Endpoint = endpoint
		}
		return buildClient(ctx, cfg, verbose)
	}

	var remember bool
	login := &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Authenticate and start a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			displayAppname("docuvault")
			sess, err := client.Login(cmd.Context(), args[0], args[1], remember)
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s) until %s\n", sess.Identity.Name, sess.Identity.Role, sess.Expiry.Format("15:04:05"))
			return nil
		},
	}
	login.Flags().BoolVar(&remember, "remember", false, "persist the session for later restore")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeFn, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if _, err := client.Restore(cmd.Context()); err != nil {
				return err
			}
			client.Logout(cmd.Context())
			fmt.Println("logged out")
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the restored session identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeFn, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			sess, err := client.Restore(cmd.Context())
			if err != nil {
				return err
			}
			if sess == nil {
				fmt.Println("no active session")
				return nil
			}
			fmt.Printf("%s <%s> role=%s department=%s\n", sess.Identity.Name, sess.Identity.Email, sess.Identity.Role, sess.Identity.Department)
			return nil
		},
	}

	root.AddCommand(login, logout, whoami)
	root.AddCommand(
		dataCommand(build, "get", "Fetch a resource", false),
		dataCommand(build, "post", "Create a resource", true),
		dataCommand(build, "put", "Update a resource", true),
		dataCommand(build, "delete", "Delete a resource", false),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root.SetContext(ctx)
	cobra.OnFinalize(stop)
	return root
}

func dataCommand(build func(context.Context) (*console.Client, func(), error), verb, short string, hasBody bool) *cobra.Command {
	use := verb + " <path>"
	expected := 1
	if hasBody {
		use = verb + " <path> <json-body>"
		expected = 2
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(expected),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if _, err := client.Restore(cmd.Context()); err != nil {
				return err
			}

			var body map[string]any
			if hasBody {
				if err := json.Unmarshal([]byte(args[1]), &body); err != nil {
					return fmt.Errorf("body must be a JSON object: %w", err)
				}
			}

			var result *resolver.Result
			switch verb {
			case "get":
				result, err = client.Get(cmd.Context(), args[0])
			case "post":
				result, err = client.Post(cmd.Context(), args[0], body)
			case "put":
				result, err = client.Put(cmd.Context(), args[0], body)
			case "delete":
				result, err = client.Delete(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			var data any
			if err := result.Decode(&data); err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			if !result.Durable {
				fmt.Fprintf(os.Stderr, "warning: served from the %s tier, not durable\n", result.Tier)
			}
			return nil
		},
	}
}

func buildClient(ctx context.Context, cfg *config.Config, verbose bool) (*console.Client, func(), error) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	seeds := seed.NewProvider(seed.WithLogger(logger))
	collections := seeds.Collections()

	caller, err := remote.NewHTTPCaller(cfg.Endpoint, remote.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	primary, err := remote.NewStrategy(caller)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var store backingstore.Store
	if cfg.PostgresURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		pgStore, err := postgres.NewStore(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		store = pgStore
		cleanup = pool.Close
	} else {
		memStore := backingstore.NewMemoryStore(collections)
		for _, collection := range collections {
			records, err := seeds.Seed(collection)
			if err == nil {
				memStore.Load(collection, records)
			}
		}
		store = memStore
	}

	translator, err := backingstore.NewTranslator(store, collections, backingstore.WithTranslatorLogger(logger))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	synthetic, err := seed.NewStrategy(seeds)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	res, err := resolver.New(primary, translator, synthetic,
		resolver.WithTimeout(cfg.RequestTimeout.Std()),
		resolver.WithLogger(logger),
		resolver.WithMetrics(resolver.NewMetrics(registry)),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var kv kvstore.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		kv, err = kvstore.NewRedisStore(redisClient, cfg.AppName+":")
	} else {
		kv, err = kvstore.NewFileStore(cfg.StorageDir)
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	manager, err := session.NewManager(res, kv, seeds,
		session.WithManagerLogger(logger),
		session.WithRenewInterval(cfg.RenewInterval.Std()),
		session.WithRenewThreshold(cfg.RenewThreshold.Std()),
		session.WithSessionTTL(cfg.SessionTTL.Std()),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	client, err := console.New(manager, res)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closeFn := func() {
		client.Close()
		if verbose {
			dumpCounters(logger, registry)
		}
		cleanup()
	}
	return client, closeFn, nil
}

// dumpCounters logs the resolver counters on exit so a verbose run shows
// which tiers actually served.
func dumpCounters(logger zerolog.Logger, gatherer prometheus.Gatherer) {
	families, err := gatherer.Gather()
	if err != nil {
		logger.Debug().Err(err).Msg("metrics gather failed")
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			counter := metric.GetCounter()
			if counter == nil {
				continue
			}
			event := logger.Debug().Str("metric", family.GetName()).Float64("value", counter.GetValue())
			for _, label := range metric.GetLabel() {
				event = event.Str(label.GetName(), label.GetValue())
			}
			event.Msg("resolver counter")
		}
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
