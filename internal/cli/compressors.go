package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ncdc/internal/adapter/compressor"
)

var compressorsCmd = &cobra.Command{
	Use:   "compressors",
	Short: "List the available compression backends",
	Long: `List every compression backend with the compressed size of a short
sample text and of the empty string (the backend's framing overhead).
Smaller sample sizes usually mean better distance resolution; larger
overhead eats into it on short texts.`,
	RunE: runCompressors,
}

func init() {
	rootCmd.AddCommand(compressorsCmd)
}

func runCompressors(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	sample := "The quick brown fox jumps over the lazy dog. " +
		"Compression distance treats similarity as shared structure: " +
		"the more two texts have in common, the better their concatenation compresses."

	fmt.Printf("Backends (sample: %d bytes, library default levels):\n", len(sample))
	for _, name := range compressor.Names() {
		comp, err := compressor.New(name, -1)
		if err != nil {
			return err
		}
		sampleSize, err := comp.CompressedSize(sample)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		overhead, err := comp.CompressedSize("")
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		marker := " "
		if name == cfg.Compressor.Name {
			marker = "*"
		}
		fmt.Printf("%s %-6s sample %4d B   overhead %3d B\n", marker, name, sampleSize, overhead)
	}
	fmt.Printf("\n* = configured backend (level %d)\n", cfg.Compressor.Level)
	return nil
}
