package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"chatview/internal/extract"
	"chatview/internal/filestore"
	"chatview/internal/models"
	"chatview/internal/service/importer"
	"chatview/internal/worker"
)

type importOptions struct {
	filesDir  string
	noExtract bool
	format    string
	output    string
	workers   int
	maxEntry  int64
	verbose   bool
}

func importCmd() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "chatview-import ARCHIVE",
		Short: "Parse an exported chat archive and print its messages",
		Long: `Reads a chat export ZIP, stores its attachments in a flat directory and
prints the chronologically ordered messages with summary stats.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.filesDir, "files-dir", "files", "Directory that receives extracted attachments")
	cmd.Flags().BoolVar(&opts.noExtract, "no-extract", false, "Parse the transcript without writing attachments")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Number of parallel extraction workers")
	cmd.Flags().Int64Var(&opts.maxEntry, "max-entry-mb", 256, "Largest attachment to extract, in MB")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log extraction progress to stderr")
	return cmd
}

func runImport(cmd *cobra.Command, archivePath string, opts *importOptions) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	}
	encode, err := encoderFor(opts.format)
	if err != nil {
		return err
	}

	var extractor *extract.Extractor
	if !opts.noExtract {
		store, err := filestore.New(opts.filesDir)
		if err != nil {
			return err
		}
		var pool *worker.Pool
		if opts.workers > 1 {
			pool = worker.NewPool(opts.workers, opts.workers*2)
			defer pool.Stop()
		}
		extractor = extract.New(store, pool).WithMaxEntrySize(opts.maxEntry << 20)
	}

	svc := importer.NewService(nil, extractor, "")
	result, err := svc.Import(cmd.Context(), importer.Upload{
		ArchiveName: filepath.Base(archivePath),
		Path:        archivePath,
		SkipExtract: opts.noExtract,
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", archivePath, err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := encode(w, result); err != nil {
		return fmt.Errorf("write %s output: %w", opts.format, err)
	}
	grammar := result.Stats.Grammar
	if grammar == "" {
		grammar = "no grammar matched"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d messages, %d files extracted, %d failed (%s, %s)\n",
		result.Stats.TotalMessages, result.Stats.ExtractedFiles, result.Stats.FailedFiles, result.Stats.ChatFileName, grammar)
	return nil
}

type encodeFunc func(io.Writer, *models.ImportResult) error

func encoderFor(format string) (encodeFunc, error) {
	switch format {
	case "json":
		return func(w io.Writer, r *models.ImportResult) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}, nil
	case "yaml", "yml":
		return func(w io.Writer, r *models.ImportResult) error {
			enc := yaml.NewEncoder(w)
			defer func() { _ = enc.Close() }()
			return enc.Encode(r)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml)", format)
	}
}
