package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/identity/api/handler"
	mongoInfra "github.com/fastygo/identity/internal/infrastructure/mongodb"
	"github.com/fastygo/identity/internal/infrastructure/monitor"
	"github.com/fastygo/identity/internal/middleware"
	"github.com/fastygo/identity/internal/router"
	"github.com/fastygo/identity/internal/services/lifecycle"
	"github.com/fastygo/identity/pkg/httpcontext"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Bootstrap the stores and serve the health endpoint until signalled",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		appCtx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		manager := lifecycle.New(rt.cfg.Context.ShutdownTimeout, rt.logger)
		manager.Listen(cancel)

		if err := rt.open(appCtx); err != nil {
			if rt.client != nil {
				_ = mongoInfra.Close(context.Background(), rt.client, rt.logger)
			}
			return err
		}
		manager.Register("mongodb", func(ctx context.Context) error {
			return mongoInfra.Close(ctx, rt.client, rt.logger)
		})

		mon := monitor.New(mongoInfra.Pinger{Client: rt.client}, rt.users, rt.roles, rt.cfg.Monitor.Interval, rt.logger)
		mon.Start()
		manager.Register("monitor", func(ctx context.Context) error {
			mon.Stop()
			return nil
		})

		ctxAdapter := httpcontext.NewAdapter(rt.cfg.Context.RequestTimeout)
		handlers := router.Handlers{
			Health: apiHandler.NewHealthHandler(mon, ctxAdapter, rt.logger),
		}
		r := router.New(handlers, middleware.AccessLog(rt.logger))

		server := &fasthttp.Server{
			Handler:      r.Handler,
			ReadTimeout:  rt.cfg.HTTP.ReadTimeout,
			WriteTimeout: rt.cfg.HTTP.WriteTimeout,
			IdleTimeout:  rt.cfg.HTTP.IdleTimeout,
			Name:         rt.cfg.AppName,
		}

		serveErr := make(chan error, 1)
		go func() {
			rt.logger.Info("server started", zap.String("address", rt.cfg.Address()))
			serveErr <- server.ListenAndServe(rt.cfg.Address())
		}()
		manager.Register("http_server", func(ctx context.Context) error {
			return server.ShutdownWithContext(ctx)
		})

		var runErr error
		select {
		case <-appCtx.Done():
		case err := <-serveErr:
			if err != nil {
				rt.logger.Error("server crashed", zap.Error(err))
				runErr = err
			}
		}

		if err := manager.Shutdown(context.Background()); err != nil {
			rt.logger.Error("graceful shutdown error", zap.Error(err))
			runErr = errors.Join(runErr, err)
		}
		return runErr
	},
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the user and role indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(cmd, func(ctx context.Context, rt *app) error {
			cmd.Printf("indexes ready: %s=%t %s=%t\n",
				rt.cfg.Mongo.UserCollection, rt.users.Ready(),
				rt.cfg.Mongo.RoleCollection, rt.roles.Ready())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bootstrapCmd)
}
