// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

// Command taskhub runs the task coordination service.
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

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/multitechword/taskhub"
	"github.com/multitechword/taskhub/auth"
	"github.com/multitechword/taskhub/config"
	"github.com/multitechword/taskhub/files"
	"github.com/multitechword/taskhub/hub"
	"github.com/multitechword/taskhub/server"
	"github.com/multitechword/taskhub/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskhub",
		Short:         "Task assignment and messaging coordination service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newCreateAdminCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}

	storage, err := files.NewStorage(cfg.UploadDir, logger)
	if err != nil {
		return err
	}

	identities := store.NewDatabaseIdentityStore(db)
	tasks := store.NewDatabaseTaskStore(db)
	messages := store.NewDatabaseMessageStore(db)

	gate := auth.NewGate(identities, []byte(cfg.JWTSecret), auth.WithTokenTTL(cfg.TokenTTL))

	// One hub instance, constructed here and passed by reference into the
	// coordinator and the realtime endpoints.
	notifications := hub.New(hub.WithLogger(logger))

	coordinator := server.NewCoordinator(
		gate, identities, tasks, messages, notifications, storage, logger,
		server.WithStrictTransitions(cfg.StrictTransitions),
	)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(coordinator, storage, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newCreateAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an Administrator identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			identity := &taskhub.Identity{
				ID:           uuid.NewString(),
				Name:         name,
				Email:        taskhub.NormalizeEmail(email),
				Role:         taskhub.RoleAdministrator,
				PasswordHash: hash,
				CreatedAt:    time.Now(),
			}
			if err := store.NewDatabaseIdentityStore(db).Create(cmd.Context(), identity); err != nil {
				return err
			}

			fmt.Printf("created administrator %s (%s)\n", identity.Name, identity.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "administrator name")
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}
