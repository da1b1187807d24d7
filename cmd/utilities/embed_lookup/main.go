package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/t2bot/embed-resolver/common/config"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/common/version"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/providers"
	"github.com/t2bot/embed-resolver/embedding/u"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile   string
	format    string
	timeout   int
	maxWidth  int
	maxHeight int
	verbose   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "embed_lookup <url>",
	Short:        "Resolve a URL to embed metadata and print it",
	Args:         cobra.ExactArgs(1),
	RunE:         runLookup,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		version.Print(false)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file to read resolver settings from (defaults are used otherwise)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml")
	rootCmd.Flags().IntVarP(&timeout, "timeout", "t", 0, "overall timeout in seconds (0 = from config)")
	rootCmd.Flags().IntVar(&maxWidth, "maxwidth", 0, "maximum embed width hint")
	rootCmd.Flags().IntVar(&maxHeight, "maxheight", 0, "maximum embed height hint")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the resolution steps to stderr")
}

func runLookup(cmd *cobra.Command, args []string) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown output format %q", format)
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := config.NewDefaultResolverConfig()
	if cfgFile != "" {
		config.Path = cfgFile
		cfg = config.Get().Resolver
	}
	if timeout > 0 {
		cfg.TimeoutSeconds = timeout
	}

	fetcher, err := u.NewFetcher(cfg)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	registry, err := providers.NewDefaultRegistry(fetcher)
	if err != nil {
		return err
	}

	req, err := m.NewConsumerRequest(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	req.MaxWidth = maxWidth
	req.MaxHeight = maxHeight

	ctx := rcontext.New(context.Background(), logrus.WithField("url", req.String()), cfg)
	md := registry.ResolveRequest(req)
	data, err := md.Fetch(ctx)
	if err != nil {
		return err
	}
	if data == nil {
		return errors.New("no embed data found for " + req.String())
	}

	return writeData(cmd.OutOrStdout(), data)
}

func writeData(w io.Writer, data *m.EmbedData) error {
	if format == "yaml" {
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(data)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
