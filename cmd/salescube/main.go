package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/salescube"
	"github.com/hupe1980/salescube/blobstore"
	"github.com/hupe1980/salescube/codec"
	"github.com/hupe1980/salescube/internal/resource"
)

var (
	source      string
	codecName   string
	logLevel    string
	jsonOutput  bool
	limit       int
	concurrency int
	ioLimit     int64
	cacheBlobs  int
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "salescube",
	Short: "Sales payload engine CLI",
	Long: `salescube loads the tables produced by the ETL worker, indexes them and
runs multi-dimensional filters against them.

Sources:
  ./dir                      local directory
  s3://bucket/prefix         Amazon S3 (default credential chain)
  minio://host:port/bucket   MinIO or any S3-compatible endpoint`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&source, "source", "s", ".", "Payload location (directory, s3://bucket/prefix or minio://endpoint/bucket/prefix)")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "", "Payload codec ("+strings.Join(codec.Names(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	rootCmd.PersistentFlags().IntVarP(&limit, "limit", "l", 40, "Maximum number of rows to display (0 for unlimited)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 4, "Maximum number of tables loaded in parallel")
	rootCmd.PersistentFlags().Int64Var(&ioLimit, "io-limit", 0, "Maximum read throughput in bytes per second (0 for unlimited)")
	rootCmd.PersistentFlags().IntVar(&cacheBlobs, "cache", 0, "Number of blobs kept in an in-memory read cache (0 disables it)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML or YAML file with source, codec and index settings")

	rootCmd.AddCommand(statsCmd, queryCmd, packCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// engineOptions turns the persistent flags and the optional config file into
// engine options.
func engineOptions(cmd *cobra.Command) ([]salescube.Option, error) {
	level, err := parseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	src, codecSel := source, codecName
	var fileOpts []salescube.Option
	if configPath != "" {
		fc, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if fc.Source != "" && !cmd.Flags().Changed("source") {
			src = fc.Source
		}
		if fc.Codec != "" && !cmd.Flags().Changed("codec") {
			codecSel = fc.Codec
		}
		if fileOpts, err = fc.options(); err != nil {
			return nil, err
		}
	}

	c, ok := codec.ByName(codecSel)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", codecSel)
	}

	store, err := openStore(cmd.Context(), src)
	if err != nil {
		return nil, err
	}
	if cacheBlobs > 0 {
		store = blobstore.NewCachingStore(store, cacheBlobs)
	}

	opts := []salescube.Option{
		salescube.WithBlobStore(store),
		salescube.WithCodec(c),
		salescube.WithLogLevel(level),
		salescube.WithResourceConfig(resource.Config{
			MaxConcurrentLoads: int64(concurrency),
			IOLimitBytesPerSec: ioLimit,
		}),
	}
	return append(opts, fileOpts...), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
