package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbhargava/promptline/internal/persona"
	"github.com/kbhargava/promptline/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bundled demo backend",
	Long: `Starts a local backend implementing the same REST contract as the
hosted service, backed by SQLite. With OPENAI_API_KEY set, replies come
from the OpenAI API; otherwise a deterministic canned generator is used
so the client works fully offline.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	port := cfg.Serve.Port
	if servePort != 0 {
		port = servePort
	}

	dataDir := cfg.Serve.DataDir
	if dataDir == "" {
		dataDir, err = stateDir(cfg)
		if err != nil {
			return fmt.Errorf("resolving data directory: %w", err)
		}
	}
	dbPath := filepath.Join(dataDir, "promptline.db")

	store, err := server.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	var generator server.Generator
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		generator = server.NewOpenAIGenerator(apiKey, cfg.Serve.Model)
		fmt.Fprintf(os.Stderr, "Using OpenAI model %s\n", cfg.Serve.Model)
	} else {
		generator = server.CannedGenerator{}
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY not set; using canned replies")
	}

	srv := server.New(server.Config{
		Port:     port,
		AllowAll: cfg.Serve.AllowAllOrigins,
	}, store, generator, persona.NewMemoryStore(persona.Seed()))

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		srv.Shutdown(context.Background())
	}()

	fmt.Fprintf(os.Stderr, "promptline demo backend v%s starting on port %d\n", Version, port)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
