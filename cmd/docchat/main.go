// Package main provides the docchat CLI entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docchat/internal/config"
	"docchat/internal/qa"
	"docchat/internal/router"
	"docchat/internal/service"
	"docchat/internal/story"
	"docchat/internal/tool"
	"docchat/internal/tui"
	"docchat/internal/zlog"
)

var (
	cfgPath string
	cfg     *config.AppConfig
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with local documents, backed by Wikipedia for short lookups",
		Long: `docchat indexes local text and PDF files and answers questions over them
with a local Ollama model.

Short queries (fewer than router.threshold words) are sent to Wikipedia,
longer ones are searched in the ingested documents.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			var err error
			used := cfgPath
			if cfgPath == "" {
				cfg, used, err = config.LoadDefault()
			} else {
				cfg, err = config.Load(cfgPath)
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := zlog.Init(zlog.Options{Level: cfg.Log.Level, Path: cfg.Log.Path}); err != nil {
				return err
			}
			zlog.Debug("config loaded", zap.String("path", used))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			zlog.Sync()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (default ./config.yaml, then ~/.config/docchat/config.yaml)")

	root.AddCommand(ingestCmd(), askCmd(), routeCmd(), lullabyCmd(), tuiCmd())
	return root
}

// openService builds the corpus service and ingests files when any are given.
func openService(ctx context.Context, files []string) (*service.RAGServiceImpl, string, func(), error) {
	svc, closer, err := newService(cfg)
	if err != nil {
		return nil, "", nil, err
	}
	done := func() {
		if err := closer.Close(); err != nil {
			zlog.Warn("close vector store", zap.Error(err))
		}
	}
	if len(files) == 0 {
		return svc, "", done, nil
	}
	summary, err := svc.IngestDocuments(ctx, files)
	if err != nil {
		done()
		return nil, "", nil, fmt.Errorf("ingest: %w", err)
	}
	return svc, summary, done, nil
}

// requireFiles rejects runs that would query an index this process cannot
// read: tf-idf vocabularies and the memory store live only in memory.
func requireFiles(files []string) error {
	if len(files) > 0 {
		return nil
	}
	if cfg.Embedder.Type == "tfidf" || cfg.VectorStore.Type == "memory" {
		return fmt.Errorf("--files is required with the %s embedder and %s vector store", cfg.Embedder.Type, cfg.VectorStore.Type)
	}
	return nil
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <files...>",
		Short: "Index documents into the configured vector store and print a summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, summary, done, err := openService(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer done()
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	var (
		files       []string
		showSources bool
		stuff       bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the documents with the local model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFiles(files); err != nil {
				return err
			}
			if stuff && len(files) == 0 {
				return errors.New("--stuff needs --files")
			}
			ctx := cmd.Context()
			svc, _, done, err := openService(ctx, files)
			if err != nil {
				return err
			}
			defer done()

			chain := &qa.Chain{LLM: newLLM(cfg, cfg.Ollama.Temperature), Retriever: svc, K: cfg.QA.TopK}
			question := strings.Join(args, " ")
			var ans qa.Answer
			if stuff {
				ans, err = chain.AskDocuments(ctx, svc.Documents(), question)
			} else {
				ans, err = chain.Ask(ctx, question)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ans.Text)
			if showSources {
				for i, src := range ans.Sources {
					fmt.Fprintf(out, "\n--- source %d: %s\n%s\n", i+1, src.Source, src.Text)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "files", "f", nil, "Documents or glob patterns to ingest first")
	cmd.Flags().BoolVar(&showSources, "show-sources", false, "Print the chunks the answer was based on")
	cmd.Flags().BoolVar(&stuff, "stuff", false, "Answer over whole documents instead of retrieved chunks")
	return cmd
}

func routeCmd() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "route <query>",
		Short: "Send a query to Wikipedia or the documents, whichever fits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, _, done, err := openService(ctx, files)
			if err != nil {
				return err
			}
			defer done()
			r, err := newRouter(cfg.Router, newWikipedia(cfg), svc)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			name := r.Decide(query)
			zlog.Info("routing query", zap.String("tool", name), zap.Int("words", len(strings.Fields(query))))
			res, err := r.Run(ctx, query)
			if err != nil {
				logRouteError(err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n%s\n", name, res)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "files", "f", nil, "Documents or glob patterns to ingest first")
	return cmd
}

func logRouteError(err error) {
	var unknown *tool.UnknownToolError
	var backend *router.BackendInvocationError
	switch {
	case errors.As(err, &unknown):
		zlog.Error("router chose an unregistered tool", zap.String("tool", unknown.Name))
	case errors.As(err, &backend):
		zlog.Error("tool failed", zap.String("tool", backend.Tool), zap.Error(backend.Cause))
	}
}

func lullabyCmd() *cobra.Command {
	var location, name, language string
	cmd := &cobra.Command{
		Use:   "lullaby",
		Short: "Write a short children's lullaby and translate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			chain := &story.Chain{LLM: newLLM(cfg, cfg.Story.Temperature), Words: cfg.Story.Words}
			l, err := chain.Run(cmd.Context(), location, name, language)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "English version:\n%s\n\n%s version:\n%s\n", l.Story, language, l.Translation)
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "Where the story is set")
	cmd.Flags().StringVar(&name, "name", "", "Name of the main character")
	cmd.Flags().StringVar(&language, "language", "", "Language to translate the story into")
	return cmd
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <files...>",
		Short: "Ingest documents and open the interactive view",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, summary, done, err := openService(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer done()
			r, err := newRouter(cfg.Router, newWikipedia(cfg), svc)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.New(r, summary)).Run()
			return err
		},
	}
}
