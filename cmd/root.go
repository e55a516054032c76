// file: cmd/root.go
// version: 1.2.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/audiobook-curator/internal/codec"
	"github.com/jdfalk/audiobook-curator/internal/config"
	"github.com/jdfalk/audiobook-curator/internal/orchestrator"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audiobook-curator",
	Short: "Resolve and embed audiobook metadata",
	Long: `Audiobook Curator scans your audiobook files, resolves metadata from
embedded tags and online catalogs (Google Books, Open Library), and durably
embeds the result back into the files, cover art included.

Resolution falls back gracefully: local tags first, then the cache, then
provider searches scored against the filename. Writes are transactional --
a file is never left corrupted, even on failure.`,
}

// scanCmd lists the audio files the curator would process.
var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Discover audiobook files under library roots",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		roots := args
		if len(roots) == 0 {
			roots = cfg.LibraryRoots
		}
		if len(roots) == 0 {
			return fmt.Errorf("no library roots: pass paths or set library_roots")
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		files, err := a.scanner.Scan(cmd.Context(), roots)
		if err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
		for _, f := range files {
			fmt.Println(f)
		}
		fmt.Printf("Found %d audiobook files\n", len(files))
		return nil
	},
}

// resolveCmd resolves metadata without touching the files.
var resolveCmd = &cobra.Command{
	Use:   "resolve [roots...]",
	Short: "Resolve metadata for audiobook files (no writes)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args, false)
	},
}

// tagCmd resolves metadata and embeds it into the files.
var tagCmd = &cobra.Command{
	Use:   "tag [roots...]",
	Short: "Resolve metadata and write it into the audio files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args, true)
	},
}

// cacheCmd groups cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the metadata cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached query and file entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.Load())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Println("Cache cleared")
		return nil
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <file>",
	Short: "Drop the cached record for one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.Load())
		if err != nil {
			return err
		}
		defer a.close()

		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if err := a.store.Invalidate(abs); err != nil {
			return fmt.Errorf("failed to invalidate %s: %w", abs, err)
		}
		fmt.Printf("Invalidated %s\n", abs)
		return nil
	},
}

// runPipeline is the shared body of resolve and tag.
func runPipeline(cmd *cobra.Command, args []string, write bool) error {
	cfg := config.Load()
	roots := args
	if len(roots) == 0 {
		roots = cfg.LibraryRoots
	}
	if len(roots) == 0 {
		return fmt.Errorf("no library roots: pass paths or set library_roots")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	files, err := a.scanner.Scan(cmd.Context(), roots)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No audiobook files found")
		return nil
	}

	verb := "Resolving"
	if write {
		verb = "Tagging"
	}
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(verb),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	o := a.orchestrator()
	o.OnFile = func(out orchestrator.FileOutcome) {
		bar.Add(1)
	}

	summary, err := o.Run(cmd.Context(), files, write)
	if err != nil {
		return err
	}
	printSummary(summary, write)
	return nil
}

func printSummary(s *orchestrator.Summary, write bool) {
	fmt.Printf("Processed %d files: %d resolved (%d from cache), %d unresolved, %d failed\n",
		s.Total, s.Resolved, s.FromCache, s.Unresolved, s.Failed)
	if write {
		fmt.Printf("Persisted metadata into %d files\n", s.Persisted)
	}
	for _, out := range s.Outcomes {
		if out.Resolved && out.Err == nil && !out.Persisted {
			continue
		}
		if out.Err != nil {
			fmt.Printf("  %s: %v\n", out.Path, out.Err)
		}
	}
	if len(s.AuthErrors) > 0 {
		fmt.Println("Provider authentication problems (check credentials/quota):")
		for _, ae := range s.AuthErrors {
			fmt.Printf("  %v\n", ae)
		}
	}
}

// showCmd prints the metadata currently embedded in a file.
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the metadata embedded in an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cd := codec.New()
		rec, err := cd.Read(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Title:     %s\n", rec.DisplayTitle())
		if len(rec.Authors) > 0 {
			fmt.Printf("Authors:   %v\n", rec.Authors)
		}
		if rec.Narrator != "" {
			fmt.Printf("Narrator:  %s\n", rec.Narrator)
		}
		if rec.Series != "" {
			fmt.Printf("Series:    %s #%s\n", rec.Series, rec.SeriesPosition)
		}
		if rec.Publisher != "" {
			fmt.Printf("Publisher: %s\n", rec.Publisher)
		}
		if rec.PublishedDate != "" {
			fmt.Printf("Published: %s\n", rec.PublishedDate)
		}
		if isbn := rec.ISBN(); isbn != "" {
			fmt.Printf("ISBN:      %s\n", isbn)
		}
		if rec.AudioDuration > 0 {
			fmt.Printf("Duration:  %s\n", codec.FormatDuration(rec.AudioDuration))
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.audiobook-curator.yaml)")
	rootCmd.PersistentFlags().StringSlice("roots", nil, "library roots containing audiobooks")
	rootCmd.PersistentFlags().String("cache-dir", "", "metadata cache directory")
	rootCmd.PersistentFlags().String("cover-dir", "", "directory for downloaded cover images")
	rootCmd.PersistentFlags().Float64("threshold", 0, "fuzzy match acceptance threshold (0 uses the default)")
	rootCmd.PersistentFlags().Int("batch", 0, "files resolved in parallel per batch")
	rootCmd.PersistentFlags().Int("jobs", 0, "max concurrent file writes (0 derives from CPU/memory)")

	viper.BindPFlag("library_roots", rootCmd.PersistentFlags().Lookup("roots"))
	viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	viper.BindPFlag("cover_dir", rootCmd.PersistentFlags().Lookup("cover-dir"))
	viper.BindPFlag("match_threshold", rootCmd.PersistentFlags().Lookup("threshold"))
	viper.BindPFlag("batch_size", rootCmd.PersistentFlags().Lookup("batch"))
	viper.BindPFlag("parallel_jobs", rootCmd.PersistentFlags().Lookup("jobs"))

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(showCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	rootCmd.AddCommand(cacheCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".audiobook-curator")
	}

	viper.SetEnvPrefix("AUDIOBOOK_CURATOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
