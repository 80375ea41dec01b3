package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"medcompanion-server/internal/app"
	"medcompanion-server/internal/config"
	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "medcompanion",
		Short:        "Medical companion API and agent tool server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(toolCmd())
	rootCmd.AddCommand(tokenCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env when present, then the environment
func loadConfig() (*config.Config, *logger.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("error loading .env file: %w", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithComponent("server").WithField("port", cfg.Port).Info("server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.WithComponent("server").Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the agent tools and their arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, t := range a.Registry.List() {
				fmt.Printf("%-28s %s\n", t.Name, t.Description)
				for _, p := range t.Params {
					req := ""
					if p.Required {
						req = " (required)"
					}
					fmt.Printf("%-28s   %s: %s%s\n", "", p.Name, p.Type, req)
				}
			}
			return nil
		},
	}
}

func toolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tool <name> [json-args]",
		Short: "Invoke one agent tool locally and print the result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			var raw []byte
			if len(args) == 2 {
				raw = []byte(args[1])
			}
			res, err := a.Registry.Invoke(cmd.Context(), args[0], raw)
			if err != nil {
				names := make([]string, 0)
				for _, t := range a.Registry.List() {
					names = append(names, t.Name)
				}
				sort.Strings(names)
				return fmt.Errorf("%w (available: %v)", err, names)
			}

			out, err := json.MarshalIndent(res, "", "    ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the tool routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Tools.JWTSecret == "" {
				return fmt.Errorf("TOOLS_JWT_SECRET is not set, tool routes are unauthenticated")
			}

			ttl := time.Duration(cfg.Tools.JWTExpirationMinutes) * time.Minute
			token, err := utils.GenerateToken(subject, cfg.Tools.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("subject", "agent", "Token subject")
	return cmd
}
