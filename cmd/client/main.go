package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"wynn-raid-parser/internal/adapters/exporter"
	"wynn-raid-parser/internal/adapters/parser"
	"wynn-raid-parser/internal/adapters/source"
	"wynn-raid-parser/internal/apiclient"
	"wynn-raid-parser/internal/core/services"
	"wynn-raid-parser/internal/domain"
	applog "wynn-raid-parser/internal/log"
	"wynn-raid-parser/internal/mojang"
	"wynn-raid-parser/internal/pkg/config"
	"wynn-raid-parser/internal/ports"
	"wynn-raid-parser/internal/server/usecase"
)

const (
	formatConsole = "console"
	formatJSON    = "json"
	formatXLSX    = "xlsx"

	defaultXLSXPath = "raids.xlsx"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	format     string
	outPath    string
	reporter   string
	serverURL  string
	list       bool
	limit      int
	raidID     string
	files      []string
}

// remote сообщает, что рейды запрашиваются с сервера, а не извлекаются из файлов.
func (o options) remote() bool {
	return o.list || o.raidID != ""
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", config.DefaultConfigFile, "Path to config file")
	fs.StringVar(&opts.format, "format", "", "Output format: console, json or xlsx (default: console on a terminal, json otherwise)")
	fs.StringVar(&opts.outPath, "out", "", "Output file (required path for xlsx, stdout otherwise)")
	fs.StringVar(&opts.reporter, "reporter", "", "Reporter UUID, overrides the configured one")
	fs.StringVar(&opts.serverURL, "server", "", "Send lines to a running raid server instead of processing them locally")
	fs.BoolVar(&opts.list, "list", false, "List raids recorded by the server (requires -server)")
	fs.IntVar(&opts.limit, "limit", 0, "Maximum number of raids for -list (default: server limit)")
	fs.StringVar(&opts.raidID, "raid", "", "Fetch one recorded raid by id (requires -server)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: client [flags] <file1> <file2> ... (use - for stdin)")
		fmt.Fprintln(fs.Output(), "       client -server url -list | -raid id [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	switch opts.format {
	case "", formatConsole, formatJSON, formatXLSX:
	default:
		return options{}, fmt.Errorf("unknown format %q", opts.format)
	}
	opts.files = fs.Args()
	if opts.remote() {
		switch {
		case opts.serverURL == "":
			return options{}, errors.New("-list and -raid require -server")
		case opts.list && opts.raidID != "":
			return options{}, errors.New("-list and -raid are mutually exclusive")
		case len(opts.files) > 0:
			return options{}, errors.New("files cannot be combined with -list or -raid")
		}
		return opts, nil
	}
	if len(opts.files) == 0 {
		fs.Usage()
		return options{}, errors.New("at least one file path is required")
	}
	return opts, nil
}

// run обрабатывает файлы с компонентами чата (один JSON-компонент на строку) и экспортирует найденные рейды.
// Возвращает код завершения: 1, если хотя бы один файл не удалось прочитать.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "%v\n", err)
		}
		return 2
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 2
	}

	logger := applog.New(stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	override := uuid.Nil
	if opts.reporter != "" {
		if override, err = uuid.Parse(opts.reporter); err != nil {
			fmt.Fprintf(stderr, "invalid -reporter: %v\n", err)
			return 2
		}
	}

	exp, closeOut, err := newExporter(opts, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "failed to create exporter: %v\n", err)
		return 2
	}
	defer closeOut()

	if opts.remote() {
		raids, err := fetchRecorded(ctx, apiclient.NewServerClient(opts.serverURL, cfg.Server.WriteTimeout), opts)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		if err := exp.Export(raids); err != nil {
			fmt.Fprintf(stderr, "failed to export raids: %v\n", err)
			return 1
		}
		return 0
	}

	var processor lineProcessor
	if opts.serverURL != "" {
		processor = apiclient.NewServerClient(opts.serverURL, cfg.Server.WriteTimeout)
	} else {
		processor = newLocalProcessor(cfg, logger)
	}

	exitCode := 0
	seen := make(map[string]struct{})
	var raids []domain.GuildRaid

	for _, path := range opts.files {
		data, err := source.NewCliSource(path).Fetch()
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			exitCode = 1
			continue
		}

		found := processFile(ctx, processor, path, data, override, seen, stderr)
		logger.Info("File processed", "path", path, "raids", len(found))
		raids = append(raids, found...)
	}

	if err := exp.Export(raids); err != nil {
		fmt.Fprintf(stderr, "failed to export raids: %v\n", err)
		return 1
	}
	return exitCode
}

// fetchRecorded запрашивает уже записанные сервером рейды: список (-list) или один рейд (-raid).
func fetchRecorded(ctx context.Context, client *apiclient.ServerClient, opts options) ([]domain.GuildRaid, error) {
	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("raid server is not available: %w", err)
	}

	if opts.raidID != "" {
		rec, err := client.GetRaid(ctx, opts.raidID)
		if err != nil {
			return nil, fmt.Errorf("failed to get raid %s: %w", opts.raidID, err)
		}
		return []domain.GuildRaid{rec.Raid}, nil
	}

	list, err := client.ListRaids(ctx, opts.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list raids: %w", err)
	}
	raids := make([]domain.GuildRaid, 0, len(list.Raids))
	for _, rec := range list.Raids {
		raids = append(raids, rec.Raid)
	}
	return raids, nil
}

func newLocalProcessor(cfg *config.Config, logger *slog.Logger) lineProcessor {
	fixed, _ := cfg.ReporterUUID()
	profiles := mojang.NewClient(mojang.Config{
		BaseURL:    cfg.Mojang.BaseURL,
		Timeout:    cfg.Mojang.Timeout,
		CacheTTL:   cfg.Mojang.CacheTTL,
		MaxRetries: cfg.Mojang.MaxRetries,
	}, mojang.WithLogger(logger))

	return usecase.NewProcessLineUseCase(
		parser.NewJsonParser(),
		services.NewExtractionService(services.WithExtractionLogger(logger)),
		services.NewReporterResolver(fixed, cfg.Reporter.Username, profiles),
		usecase.WithLogger(logger),
		usecase.WithMaxLineBytes(cfg.Processing.MaxLineBytes),
	)
}

type lineProcessor interface {
	ProcessLine(ctx context.Context, data []byte, reporterOverride uuid.UUID) (usecase.LineResult, error)
}

// processFile извлекает рейды из строк одного файла. Повторы одной и той же строки пропускаются.
func processFile(
	ctx context.Context,
	processor lineProcessor,
	path string,
	data []byte,
	override uuid.UUID,
	seen map[string]struct{},
	stderr io.Writer,
) []domain.GuildRaid {
	var raids []domain.GuildRaid

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		res, err := processor.ProcessLine(ctx, []byte(line), override)
		if err != nil {
			reason := domain.ReasonOf(err)
			if reason == domain.ReasonNotARaidLine {
				continue
			}
			label := reason.String()
			if reason == domain.ReasonNone {
				label = "error"
				if errors.Is(err, usecase.ErrInvalidLine) || errors.Is(err, usecase.ErrLineTooLarge) {
					label = "invalid_line"
				}
			}
			fmt.Fprintf(stderr, "%s:%d: %s: %v\n", path, lineNo, label, err)
			continue
		}

		if _, dup := seen[res.LineHash]; dup {
			continue
		}
		seen[res.LineHash] = struct{}{}
		raids = append(raids, res.Raid)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", path, err)
	}
	return raids
}

// newExporter выбирает формат вывода. Без явного -format в терминал выводится таблица, иначе JSON.
func newExporter(opts options, stdout io.Writer) (ports.Exporter, func(), error) {
	format := opts.format
	if format == "" {
		format = formatJSON
		if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = formatConsole
		}
	}

	if format == formatXLSX {
		path := opts.outPath
		if path == "" {
			path = defaultXLSXPath
		}
		return exporter.NewExcelExporter(path), func() {}, nil
	}

	w := stdout
	closeOut := func() {}
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		w = f
		closeOut = func() { _ = f.Close() }
	}

	if format == formatConsole {
		return exporter.NewConsoleExporter(w), closeOut, nil
	}
	return exporter.NewJSONExporter(w), closeOut, nil
}
