package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-treesync"
	"github.com/joho/godotenv"
)

var moduleBuilder = func(cfg treesync.Config, opts ...treesync.Option) (*treesync.Module, error) {
	return treesync.New(cfg, opts...)
}

func main() {
	if err := runSync(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("sync-locale-trees: %v", err)
	}
}

func runSync(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("sync-locale-trees", flag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "Optional dotenv file loaded before reading TREESYNC_* variables")
	driver := flags.String("driver", "", "Database driver: sqlite3 or pgx (env TREESYNC_DRIVER)")
	dsn := flags.String("dsn", "", "Database connection string (env TREESYNC_DSN)")
	defaultLocale := flags.String("default-locale", "", "Default locale code (env TREESYNC_DEFAULT_LOCALE, defaults to en)")
	supported := flags.String("supported", "", "Comma separated list of site locales (env TREESYNC_LOCALES)")
	only := flags.String("locales", "", "Comma separated list restricting the run to these locale trees")
	languagesFile := flags.String("languages", "", "Optional language table JSON file (env TREESYNC_LANGUAGES)")
	logLevel := flags.String("log-level", "info", "Log level")
	logFormat := flags.String("log-format", "console", "Log format: json, console or pretty")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	cfg := treesync.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Level = *logLevel
	cfg.Logging.Format = *logFormat
	cfg.Languages.File = firstNonEmpty(*languagesFile, os.Getenv("TREESYNC_LANGUAGES"))

	if code := firstNonEmpty(*defaultLocale, os.Getenv("TREESYNC_DEFAULT_LOCALE")); code != "" {
		cfg.DefaultLocale = code
	}
	if codes := splitCodes(firstNonEmpty(*supported, os.Getenv("TREESYNC_LOCALES"))); len(codes) > 0 {
		cfg.I18N.Locales = codes
	}
	if conn := firstNonEmpty(*dsn, os.Getenv("TREESYNC_DSN")); conn != "" {
		cfg.Storage.Provider = treesync.StorageBun
		cfg.Storage.DSN = conn
		cfg.Storage.Driver = firstNonEmpty(*driver, os.Getenv("TREESYNC_DRIVER"))
	}

	var report *treesync.RunReport
	module, err := moduleBuilder(cfg, treesync.WithReportSink(func(r treesync.RunReport) {
		report = &r
	}))
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	sub := dispatcher.SubscribeCommand(module.SyncCommand())
	defer sub.Unsubscribe()

	ctx := context.Background()
	if err := dispatcher.Dispatch(ctx, treesync.SyncLocaleTreesCommand{Locales: splitCodes(*only)}); err != nil {
		return fmt.Errorf("execute sync command: %w", err)
	}
	if report == nil {
		return errors.New("sync command finished without a report")
	}

	fmt.Fprintf(out, "run %s: %d entries, %d orphans, %d placeholders created in %s\n",
		report.RunID, report.Entries, report.Orphans, report.Created(), report.Duration)
	for _, tree := range report.Trees {
		fmt.Fprintf(out, "  %s: considered %d, created %d, skipped %d\n",
			tree.LocaleCode, tree.Considered, tree.Created, tree.Skipped)
	}
	return nil
}

func splitCodes(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
