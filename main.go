package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/musclegram/musclegram/api"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	app := cli.App{
		Name:  "musclegram",
		Usage: "workout sharing api server",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "db-url",
			EnvVars:  []string{"DATABASE_URL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "listen",
			EnvVars: []string{"MUSCLEGRAM_LISTEN"},
			Value:   ":4444",
		},
		&cli.StringFlag{
			Name:  "metrics-listen",
			Value: ":4445",
		},
		&cli.IntFlag{
			Name:  "max-db-connections",
			Value: runtime.NumCPU(),
		},
		&cli.StringFlag{
			Name:    "jwt-secret",
			EnvVars: []string{"MUSCLEGRAM_JWT_SECRET"},
		},
		&cli.StringFlag{
			Name:    "jaeger-url",
			EnvVars: []string{"JAEGER_URL"},
		},
		&cli.IntFlag{
			Name:  "feed-limit",
			Value: backend.DefaultFeedLimit,
		},
		&cli.DurationFlag{
			Name:  "cache-ttl",
			Value: 5 * time.Minute,
		},
	}
	app.Action = run

	app.RunAndExitOnError()
}

func run(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if url := cctx.String("jaeger-url"); url != "" {
		shutdown, err := setupTracing(url)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	db, err := setupDatabase(ctx, cctx.String("db-url"), cctx.Int("max-db-connections"))
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	bus := events.NewBus()
	defer bus.Close()

	b, err := backend.NewBackend(db, bus, backend.Config{
		FeedLimit: cctx.Int("feed-limit"),
		CacheTTL:  cctx.Duration("cache-ttl"),
	})
	if err != nil {
		return err
	}

	hydrator, err := hydration.NewHydrator(b)
	if err != nil {
		return err
	}
	if err := hydrator.Watch(ctx, bus); err != nil {
		return err
	}

	srv := api.NewServer(b, hydrator, bus, api.Config{
		JWTSecret: cctx.String("jwt-secret"),
	})
	if cctx.String("jwt-secret") == "" {
		slog.Warn("no jwt secret set, bearer tokens will not be verified")
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cctx.String("metrics-listen"), nil); err != nil {
			slog.Error("metrics listener failed", "error", err)
		}
	}()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start(cctx.String("listen"))
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// setupDatabase runs gorm over a pgx pool.
func setupDatabase(ctx context.Context, url string, maxConns int) (*gorm.DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}

	if maxConns < 8 {
		maxConns = 8
	}
	cfg.MaxConns = int32(maxConns)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return gorm.Open(postgres.New(postgres.Config{
		Conn: stdlib.OpenDBFromPool(pool),
	}), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		}),
	})
}

func setupTracing(url string) (func(context.Context) error, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "musclegram"))),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
