package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ncdc/config"
)

var (
	cfgFile    string
	cfg        *config.Config
	rootDir    string
	clearCache bool
)

var rootCmd = &cobra.Command{
	Use:   "ncdc",
	Short: "Parameter-free text classification via compression distance",
	Long: `ncdc classifies text by normalised compression distance: a test sample is
compared against every sample of a labeled reference corpus using nothing but
a lossless compressor, then labeled by a k-nearest-neighbour vote.

Example usage:
  ncdc classify -t "some text" --corpus train.csv   # Label one text
  ncdc matrix --tests test.csv --corpus train.csv -o dist.csv
  ncdc evaluate --tests test.csv --corpus train.csv # Accuracy on a test set
  ncdc compressors                                  # List backends`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ncdc.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "working directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVar(&clearCache, "clear-cache", false, "drop the persistent length cache before running")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
