package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Vector/vector-reviews-scraper/gmaps"
	"github.com/Vector/vector-reviews-scraper/tlmt"
	"github.com/Vector/vector-reviews-scraper/tlmt/gonoop"
	"github.com/Vector/vector-reviews-scraper/tlmt/goposthog"
)

const (
	RunModeFile = iota + 1
	RunModeQuery
)

var (
	ErrInvalidRunMode = errors.New("invalid run mode")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

type Runner interface {
	Run(context.Context) error
	Close(context.Context) error
}

type S3Uploader interface {
	Upload(ctx context.Context, bucketName, key string, body io.Reader) error
}

type Config struct {
	APIKey            string
	InputFile         string
	Query             string
	Latitude          float64
	Longitude         float64
	MaxPages          *int
	OutputDir         string
	LangCode          string
	Zoom              int
	Strict            bool
	SkipDuplicates    bool
	URLDataIDFallback bool
	JournalDSN        string
	S3Bucket          string
	S3Prefix          string
	AwsAccessKey      string
	AwsSecretKey      string
	AwsRegion         string
	S3Uploader        S3Uploader
	Endpoint          string
	Debug             bool
	RunMode           int
}

// ApplyEnv fills unset fields from the environment.
func (c *Config) ApplyEnv() {
	if c.AwsAccessKey == "" {
		c.AwsAccessKey = os.Getenv("MY_AWS_ACCESS_KEY")
	}

	if c.AwsSecretKey == "" {
		c.AwsSecretKey = os.Getenv("MY_AWS_SECRET_KEY")
	}

	if c.AwsRegion == "" {
		c.AwsRegion = os.Getenv("MY_AWS_REGION")
	}

	if c.Endpoint == "" {
		c.Endpoint = os.Getenv("SERPAPI_ENDPOINT")
	}
}

// Validate checks the configuration and derives RunMode from it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}

	if c.MaxPages != nil && *c.MaxPages < 0 {
		return fmt.Errorf("%w: page count must not be negative, got %d", ErrInvalidConfig, *c.MaxPages)
	}

	if c.Zoom < 0 || c.Zoom > 21 {
		return fmt.Errorf("%w: zoom must be between 0 and 21, got %d", ErrInvalidConfig, c.Zoom)
	}

	if c.LangCode == "" {
		c.LangCode = gmaps.DefaultLanguage
	}

	if c.OutputDir == "" {
		c.OutputDir = "."
	}

	if c.S3Bucket != "" && c.S3Uploader == nil && c.AwsRegion == "" {
		return fmt.Errorf("%w: aws region must be provided when using an s3 bucket", ErrInvalidConfig)
	}

	switch {
	case c.InputFile != "" && c.Query != "":
		return fmt.Errorf("%w: file and query are mutually exclusive", ErrInvalidConfig)
	case c.InputFile != "":
		c.RunMode = RunModeFile
	case c.Query != "":
		c.RunMode = RunModeQuery
	default:
		return fmt.Errorf("%w: one of file or query is required", ErrInvalidConfig)
	}

	return nil
}

func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

var (
	telemetryOnce sync.Once
	telemetry     tlmt.Telemetry
)

// Telemetry is a noop unless POSTHOG_API_KEY is set and DISABLE_TELEMETRY is
// not 1.
func Telemetry() tlmt.Telemetry {
	telemetryOnce.Do(func() {
		apiKey := os.Getenv("POSTHOG_API_KEY")

		if apiKey == "" || os.Getenv("DISABLE_TELEMETRY") == "1" {
			telemetry = gonoop.New()

			return
		}

		val, err := goposthog.New(apiKey, os.Getenv("POSTHOG_ENDPOINT"), nil)
		if err != nil {
			telemetry = gonoop.New()

			return
		}

		telemetry = val
	})

	return telemetry
}

func wrapText(text string, width int) []string {
	var lines []string

	currentLine := ""
	currentWidth := 0

	for _, r := range text {
		runeWidth := runewidth.RuneWidth(r)
		if currentWidth+runeWidth > width {
			lines = append(lines, currentLine)
			currentLine = string(r)
			currentWidth = runeWidth
		} else {
			currentLine += string(r)
			currentWidth += runeWidth
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

func banner(messages []string, width int) string {
	if width <= 0 {
		var err error

		width, _, err = term.GetSize(int(os.Stderr.Fd()))
		if err != nil {
			width = 80
		}
	}

	if width < 20 {
		width = 20
	}

	contentWidth := width - 4

	var wrappedLines []string
	for _, message := range messages {
		wrappedLines = append(wrappedLines, wrapText(message, contentWidth)...)
	}

	var builder strings.Builder

	builder.WriteString("╔" + strings.Repeat("═", width-2) + "╗\n")

	for _, line := range wrappedLines {
		paddingRight := max(contentWidth-runewidth.StringWidth(line), 0)

		builder.WriteString(fmt.Sprintf("║ %s%s ║\n", line, strings.Repeat(" ", paddingRight)))
	}

	builder.WriteString("╚" + strings.Repeat("═", width-2) + "╝\n")

	return builder.String()
}

// Banner prints a summary of what the run is about to do. Nothing is printed
// when stderr is not a terminal.
func Banner(cfg *Config) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}

	fmt.Fprintln(os.Stderr, banner(bannerLines(cfg), 0))
}

func bannerLines(cfg *Config) []string {
	lines := []string{"⭐ Google Maps reviews scraper (SerpApi)"}

	switch cfg.RunMode {
	case RunModeFile:
		lines = append(lines, "📄 URLs from "+cfg.InputFile)
	case RunModeQuery:
		lines = append(lines, fmt.Sprintf("🔎 %q near %s", cfg.Query,
			gmaps.PlaceQuery{Latitude: cfg.Latitude, Longitude: cfg.Longitude}.LL(cfg.Zoom)))
	}

	pages := "all pages"
	if cfg.MaxPages != nil {
		pages = fmt.Sprintf("up to %d extra pages", *cfg.MaxPages)
	}

	lines = append(lines, fmt.Sprintf("📁 %s, %s", cfg.OutputDir, pages))

	if cfg.S3Bucket != "" {
		lines = append(lines, "☁️  s3://"+cfg.S3Bucket+"/"+cfg.S3Prefix)
	}

	if cfg.JournalDSN != "" {
		lines = append(lines, "📓 journal enabled")
	}

	return lines
}
