package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/identity/internal/config"
	mongoInfra "github.com/fastygo/identity/internal/infrastructure/mongodb"
	"github.com/fastygo/identity/pkg/logger"
	"github.com/fastygo/identity/repository/mongodb"
	"github.com/fastygo/identity/usecase/account"
)

var rootCmd = &cobra.Command{
	Use:           "identityd",
	Short:         "MongoDB-backed identity store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app is what every subcommand needs: settings, a logger and, once
// opened, the client plus both stores.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *mongo.Client
	users  *mongodb.UserStore
	roles  *mongodb.RoleStore
}

func newRuntime() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Fields: map[string]string{
			"app": cfg.AppName,
			"env": cfg.Environment,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return &app{cfg: cfg, logger: zapLogger}, nil
}

// open connects to MongoDB and builds both stores concurrently. Each store
// blocks until its indexes exist.
func (rt *app) open(ctx context.Context) error {
	client, err := mongoInfra.NewClient(ctx, rt.cfg.Mongo, rt.logger)
	if err != nil {
		return fmt.Errorf("mongodb connection failed: %w", err)
	}
	rt.client = client
	db := client.Database(rt.cfg.Mongo.Database)

	opts := []mongodb.Option{
		mongodb.WithLogger(rt.logger),
		mongodb.WithBootstrapTimeout(rt.cfg.Mongo.BootstrapTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := mongodb.NewUserStore(gctx, db, rt.cfg.Mongo.UserCollection, opts...)
		if err != nil {
			return fmt.Errorf("user store: %w", err)
		}
		rt.users = users
		return nil
	})
	g.Go(func() error {
		roles, err := mongodb.NewRoleStore(gctx, db, rt.cfg.Mongo.RoleCollection, opts...)
		if err != nil {
			return fmt.Errorf("role store: %w", err)
		}
		rt.roles = roles
		return nil
	})
	return g.Wait()
}

func (rt *app) close(ctx context.Context) {
	if err := mongoInfra.Close(ctx, rt.client, rt.logger); err != nil {
		rt.logger.Warn("mongodb disconnect failed", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

// withAccounts runs fn against freshly opened stores and always disconnects.
func withAccounts(cmd *cobra.Command, fn func(ctx context.Context, accounts *account.UseCase) error) error {
	return withStores(cmd, func(ctx context.Context, rt *app) error {
		return fn(ctx, account.New(rt.users, rt.roles, rt.logger))
	})
}

func withStores(cmd *cobra.Command, fn func(ctx context.Context, rt *app) error) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := rt.open(ctx); err != nil {
		rt.close(context.WithoutCancel(ctx))
		return err
	}
	defer rt.close(context.WithoutCancel(ctx))
	return fn(ctx, rt)
}
