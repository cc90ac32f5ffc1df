package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/policyref/policyref/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI and JSON API",
	Long: `Serve starts an HTTP server with a single-page UI and a JSON
analysis endpoint (POST /analyze).

The OpenAI API key is read from the environment or a .env file in the
working directory when LLM commentary is enabled.

Example:
  policyref serve
  policyref serve --addr :8080 --llm`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5001", "listen address")

	// Shared with the analyze command
	serveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable render memoization")
	serveCmd.Flags().StringVar(&window, "window", "medium", "context window: minimal, medium or large")
	serveCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM commentary")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4", "LLM model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	// A local .env keeps the API key out of shell history
	if err := godotenv.Load(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Loaded .env")
	}

	cfg := buildConfig()
	cfg.Server.Addr = serveAddr
	if llmEnabled {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	srv := server.NewServer(p, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Fprintf(os.Stderr, "Received %v, shutting down\n", sig)
		return srv.Stop(context.Background())
	}
}
