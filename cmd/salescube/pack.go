package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/salescube/codec"
	"github.com/hupe1980/salescube/payload"
)

var compressionName string

var packCmd = &cobra.Command{
	Use:   "pack <in> <out>",
	Short: "Re-encode a payload file, optionally compressing it",
	Long: `pack decodes a payload file (plain, zstd, lz4 or gzip framed) and writes
it back with the chosen compression. Name the output <table>.json.zst,
<table>.json.lz4 or <table>.json.gz so loaders find it.`,
	Args: cobra.ExactArgs(2),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&compressionName, "compression", "c", "zstd", "Output compression (none, lz4, zstd, gzip)")
}

func runPack(cmd *cobra.Command, args []string) error {
	comp, err := payload.ParseCompression(compressionName)
	if err != nil {
		return err
	}
	c, ok := codec.ByName(codecName)
	if !ok {
		return fmt.Errorf("unknown codec %q", codecName)
	}

	in, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	seq, err := payload.Decode(in, c)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	out, err := payload.Encode(seq, c, comp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], out, 0o644); err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "%s: %d rows, %s -> %s (%s)\n",
		args[1], seq.Len(),
		humanize.IBytes(uint64(len(in))), humanize.IBytes(uint64(len(out))), comp)
	return err
}
