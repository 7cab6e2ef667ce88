package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studybuddy/internal/app"
	"studybuddy/internal/bootstrap"
)

const defaultIngestPattern = "data/**/*.{txt,md,pdf}"

var ingestReset bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [patterns...]",
	Short: "Index study files into the vector store",
	Long: `Index every file matching the glob patterns (default data/**/*.{txt,md,pdf}).
Documents are keyed by their relative path, so re-ingesting a file replaces
its chunks. With --reset the store is cleared first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{defaultIngestPattern}
		}
		files, err := collectFiles(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no supported files match %v", args)
		}
		return withApp(cmd, "ingest", func(ctx context.Context, a *bootstrap.App) error {
			return runIngest(ctx, cmd, a, files)
		})
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "clear the vector store before indexing")
	rootCmd.AddCommand(ingestCmd)
}

// collectFiles expands patterns, keeps supported files and returns them
// sorted without duplicates.
func collectFiles(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !app.SupportedExtension(m) {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func runIngest(ctx context.Context, cmd *cobra.Command, a *bootstrap.App, files []string) error {
	if ingestReset {
		if err := a.Store.DeleteAll(ctx); err != nil {
			return fmt.Errorf("reset vector store failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Vector store cleared.")
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionClearOnFinish(),
	)

	chunks, failed := 0, 0
	for _, path := range files {
		bar.Describe("Indexing " + filepath.Base(path))
		n, err := ingestFile(ctx, a.RAG, path)
		if err != nil {
			failed++
			log.Warn("ingest file failed", zap.String("file", path), zap.Error(err))
		}
		chunks += n
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %d files (%d failed).\n", chunks, len(files)-failed, failed)
	if failed == len(files) {
		return fmt.Errorf("all %d files failed to ingest", failed)
	}
	return nil
}

func ingestFile(ctx context.Context, rag *app.RAGService, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	doc, err := app.LoadDocument(path, f)
	if err != nil {
		return 0, err
	}
	doc.ID = filepath.ToSlash(filepath.Clean(path))

	res, err := rag.Ingest(ctx, []app.Document{doc})
	if err != nil {
		return 0, err
	}
	return res.ChunkCount, nil
}
