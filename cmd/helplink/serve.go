package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helplink/internal/db"
	"helplink/internal/engine"
	"helplink/internal/metrics"
	"helplink/internal/seed"
	"helplink/internal/server"
	"helplink/internal/stats"
	"helplink/internal/storage"
	"helplink/internal/store/memory"
	"helplink/internal/store/postgres"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "Run against a seeded in-memory store instead of postgres",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if config.IssuerURL == "" {
		return fmt.Errorf("set ISSUER_URL")
	}

	m := metrics.New()

	var (
		needs       engine.NeedStore
		responses   engine.ResponseStore
		regions     engine.RegionStore
		users       engine.UserStore
		statsSource stats.Source
	)

	if cCtx.Bool("dev") {
		logger.Warn("running with the in-memory store, all data is lost on exit")

		mem := memory.New()
		needs = mem.Needs()
		responses = mem.Responses()
		regions = mem.Regions()
		users = mem.Users()
		statsSource = mem

		if err := seed.SeedRegions(ctx, regions); err != nil {
			return fmt.Errorf("seed regions: %w", err)
		}
		if err := seed.SeedUsers(ctx, users); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	} else {
		if config.DatabaseURL == "" {
			return fmt.Errorf("set DATABASE_URL")
		}

		pool, err := db.Connect(ctx, config)
		if err != nil {
			return err
		}
		defer pool.Close()

		needs = postgres.NewNeedRepository(pool)
		responses = postgres.NewResponseRepository(pool)
		regions = postgres.NewRegionRepository(pool)
		users = postgres.NewUserRepository(pool)
		statsSource = postgres.NewStatsRepository(pool)
	}

	var media *storage.MediaStore
	if config.MediaVerifyRef {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		media = storage.NewMediaStore(s3.NewFromConfig(awsConfig), config)
	} else {
		media = storage.NewMediaStore(nil, config)
	}

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initilaize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.IssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register jwk with cache: %w", err)
	}

	eng := engine.New(needs, responses, regions, users, logger, m)
	statsSvc := stats.New(statsSource)

	srv, err := server.New(
		config,
		logger,
		eng,
		statsSvc,
		media,
		m,
		jwkCache,
		jwksURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
