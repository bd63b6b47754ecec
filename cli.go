package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Vector/vector-reviews-scraper/gmaps"
	"github.com/Vector/vector-reviews-scraper/runner"
)

type runFunc func(context.Context, *runner.Config) error

func newRootCmd() *cobra.Command {
	return newCommand(run)
}

func newCommand(fn runFunc) *cobra.Command {
	var (
		cfg runner.Config
		cnt int
	)

	cmd := &cobra.Command{
		Use:   "serp-reviews [flags] <api_key>",
		Short: "Download Google Maps reviews through SerpApi",
		Long: "Resolves places from Google Maps share URLs or a free text query and writes every " +
			"reviews page returned by SerpApi to <data_id>_info.json and reviews_<data_id>_<page>.json.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.APIKey = args[0]

			if cmd.Flags().Changed("cnt") {
				cfg.MaxPages = &cnt
			}

			cfg.ApplyEnv()

			if err := cfg.Validate(); err != nil {
				return err
			}

			return fn(cmd.Context(), &cfg)
		},
	}

	flags := cmd.Flags()

	flags.StringVar(&cfg.InputFile, "file", "", "path to a file with one Google Maps place URL per line")
	flags.StringVar(&cfg.Query, "query", "", "free text place query (requires --latitude and --longitude)")
	flags.Float64Var(&cfg.Latitude, "latitude", 0, "latitude of the map center for --query")
	flags.Float64Var(&cfg.Longitude, "longitude", 0, "longitude of the map center for --query")
	flags.IntVar(&cnt, "cnt", 0, "maximum number of pages to fetch after the first one [default: all]")
	flags.StringVar(&cfg.OutputDir, "output-dir", ".", "directory the JSON files are written to")
	flags.StringVar(&cfg.LangCode, "lang", gmaps.DefaultLanguage, "language code for the place search")
	flags.IntVar(&cfg.Zoom, "zoom", gmaps.DefaultZoom, "map zoom level (0-21) for the place search")
	flags.BoolVar(&cfg.Strict, "strict", false, "abort the batch on the first URL that cannot be parsed")
	flags.BoolVar(&cfg.SkipDuplicates, "skip-duplicates", false, "fetch each place at most once per run")
	flags.BoolVar(&cfg.URLDataIDFallback, "url-data-id-fallback", false, "use the data id embedded in the URL when the search finds nothing")
	flags.StringVar(&cfg.JournalDSN, "journal", "", "record written pages in a journal (SQLite path or postgres:// DSN)")
	flags.StringVar(&cfg.S3Bucket, "s3-bucket", "", "also upload every file to this S3 bucket")
	flags.StringVar(&cfg.S3Prefix, "s3-prefix", "", "key prefix for S3 uploads")
	flags.StringVar(&cfg.AwsRegion, "aws-region", "", "AWS region")
	flags.StringVar(&cfg.AwsAccessKey, "aws-access-key", "", "AWS access key")
	flags.StringVar(&cfg.AwsSecretKey, "aws-secret-key", "", "AWS secret key")
	flags.StringVar(&cfg.Endpoint, "endpoint", "", "SerpApi base URL [default: https://serpapi.com]")
	flags.BoolVar(&cfg.Debug, "debug", false, "enable development logging")

	cmd.MarkFlagsMutuallyExclusive("file", "query")
	cmd.MarkFlagsOneRequired("file", "query")
	cmd.MarkFlagsRequiredTogether("query", "latitude", "longitude")

	return cmd
}
