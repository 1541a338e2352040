// Command parley manages conversation sessions from the terminal: create
// sessions, send turns, inspect history, and drive the session lifecycle.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parley-labs/parley/engine"
	"github.com/parley-labs/parley/observability"
	"github.com/parley-labs/parley/persona"
)

var (
	configPath   string
	dataDir      string
	storeBackend string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Manage AI conversation sessions",
	Long: `parley manages stateful AI conversation sessions.

Sessions pair a client with a persona and accumulate an ordered message
history across turns. Each send appends the client message, assembles
bounded context, and commits the assistant reply.

Quick start:
  parley create --client C1 --persona dr_hayes
  parley send <session-id> "I feel anxious today"
  parley list
  parley transition <session-id> complete`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.parley)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Store backend: file or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// newEngine assembles an engine from the config file and flag overrides.
// Callers must Close it.
func newEngine() (*engine.Engine, error) {
	var cfg *engine.Config
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		c := engine.DefaultConfig()
		cfg = &c
	}

	if dataDir != "" {
		cfg.Store.Path = dataDir
	}
	if cfg.Store.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.Store.Path = filepath.Join(home, ".parley")
	}
	if storeBackend != "" {
		cfg.Store.Backend = storeBackend
	}
	if cfg.Store.Backend == "sqlite" && !looksLikeFile(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(cfg.Store.Path, "parley.db")
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	opts := []engine.Option{}
	if cfg.Personas.Path == "" && len(cfg.Personas.Inline) == 0 {
		// No catalog configured: read <data-dir>/personas if it exists, with a
		// built-in general-purpose persona as fallback.
		builtin := persona.NewStaticCatalog(persona.Descriptor{
			Name:         "assistant",
			DisplayName:  "Assistant",
			SystemPrompt: "You are a helpful, attentive assistant. Answer clearly and concisely.",
		})
		dir := filepath.Join(filepath.Dir(cfg.Store.Path), "personas")
		if cfg.Store.Backend != "sqlite" {
			dir = filepath.Join(cfg.Store.Path, "personas")
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			opts = append(opts, engine.WithPersonas(persona.Chain{persona.NewFileCatalog(dir), builtin}))
		} else {
			opts = append(opts, engine.WithPersonas(builtin))
		}
	}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("initialize logger: %w", err)
		}
		opts = append(opts, engine.WithObserver(observability.NewZapObserver(logger)))
	}

	return engine.New(cfg, opts...)
}

func looksLikeFile(path string) bool {
	return filepath.Ext(path) != ""
}
