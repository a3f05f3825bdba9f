package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"picorg/internal"
	"picorg/internal/config"
	"picorg/internal/exif"
	"picorg/internal/pipeline"
	"picorg/internal/storage"
	"picorg/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	setupLogging(cfg.LogFile)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "run", "plan":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.InputFile, "directive file (markdown/html/xlsx/pdf)")
		inType := fs.String("type", "", "markdown|html|xlsx|pdf (default: by file extension)")
		_ = fs.Parse(os.Args[2:])

		source, err := sourceType(*input, *inType)
		must(err)

		stamper := exif.NewTool(cfg.ExifToolBin)
		if cmd == "run" {
			must(stamper.CheckAvailable())
		}

		svc := pipeline.NewOrganizerService(db, cfg, stamper)
		svc.SetDryRun(cmd == "plan")
		result, err := svc.OrganizeFile(*input, source)
		must(err)
		if cmd == "plan" {
			fmt.Printf("plan done rows=%d ok=%d errors=%d (no files were changed)\n", result.Total, result.Succeeded, result.Errors)
		}
	case "watch":
		stamper := exif.NewTool(cfg.ExifToolBin)
		must(stamper.CheckAvailable())
		s := watcher.NewService(db, cfg, stamper)
		must(s.Run(context.Background()))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.Int("runId", 0, "run id from runs:list")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *runID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--runId and --out are required"))
		}
		outcomes, err := db.GetRunOutcomes(*runID)
		must(err)
		if len(outcomes) == 0 {
			must(fmt.Errorf("no outcomes for runId=%d", *runID))
		}
		must(pipeline.ExportOutcomesToXLSX(outcomes, *out))
		fmt.Printf("exported %d rows to %s\n", len(outcomes), *out)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to list")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("run=%d trace=%s source=%s input=%s counts=%s at=%s\n", r.ID, r.TraceID, r.Source, r.InputRef, r.CountsJSON, r.CreatedAt)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func sourceType(input, override string) (internal.TableSource, error) {
	if strings.TrimSpace(override) == "" {
		return pipeline.DetectSourceType(input), nil
	}
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "markdown", "md":
		return internal.SourceMarkdown, nil
	case "html":
		return internal.SourceHTML, nil
	case "xlsx":
		return internal.SourceXLSX, nil
	case "pdf":
		return internal.SourcePDF, nil
	default:
		return "", fmt.Errorf("unsupported input type: %s", override)
	}
}

func setupLogging(logFile string) {
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("warning: cannot open log file %s: %v", logFile, err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}

func usage() {
	fmt.Println("usage: picorg <command>")
	fmt.Println("commands:")
	fmt.Println("  run [--input=pictures.md] [--type=markdown|html|xlsx|pdf]")
	fmt.Println("  plan [--input=pictures.md] [--type=...]   (dry run, no changes)")
	fmt.Println("  watch")
	fmt.Println("  export:xlsx --runId=1 --out=./out/result.xlsx")
	fmt.Println("  runs:list [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
