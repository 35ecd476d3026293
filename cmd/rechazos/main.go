package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rechazos/internal"
	"rechazos/internal/config"
	"rechazos/internal/pipeline"
	"rechazos/internal/sources"
	"rechazos/internal/storage"
	"rechazos/internal/variant"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	registry := variant.DefaultRegistry()
	if strings.TrimSpace(cfg.VariantsFile) != "" {
		must(variant.LoadFile(cfg.VariantsFile, registry))
	}

	cmd := os.Args[1]
	if cmd == "variants" {
		for _, name := range registry.Names() {
			v, _ := registry.Get(name)
			fmt.Printf("%-14s %s\n", v.Name, v.Description)
		}
		return
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	processor := pipeline.NewProcessingService(db, cfg, registry)

	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		variantName := fs.String("variant", "", "bank variant, see 'variants'")
		pdfPath := fs.String("pdf", "", "bank PDF")
		txtPath := fs.String("txt", "", "fixed-width payroll TXT")
		tablePath := fs.String("table", "", "bulk spreadsheet or bank report (xlsx|xls|csv|zip)")
		errorsPath := fs.String("errors", "", "bank error report (xlsx|xls|csv|html)")
		emlPath := fs.String("eml", "", "bank e-mail whose attachments fill missing inputs")
		code := fs.String("code", "", "default rejection code for rows without an observation")
		out := fs.String("out", "", "output xlsx path")
		submit := fs.Bool("submit", false, "submit the result after the run")
		_ = fs.Parse(os.Args[2:])

		in := sources.Inputs{PDF: *pdfPath, TXT: *txtPath, Table: *tablePath, ErrorReport: *errorsPath, Mail: *emlPath}
		if strings.TrimSpace(*variantName) == "" || in.IsEmpty() {
			must(fmt.Errorf("--variant and at least one input are required"))
		}

		res, err := processor.Run(*variantName, in, pipeline.RunOptions{DefaultCode: *code})
		must(err)
		printWarnings(res.Warnings)
		fmt.Printf("run done run=%s variant=%s records=%d skipped=%d amount=%s\n", res.RunID, res.Variant, res.Count, res.Skipped, res.AmountSum.StringFixed(2))
		if res.Count == 0 {
			return
		}

		target := *out
		if strings.TrimSpace(target) == "" {
			target = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.xlsx", res.Variant, res.RunID))
		}
		must(pipeline.WriteAssemblyXLSX(res.Assembly, target))
		fmt.Printf("exported %d rows to %s\n", res.Count, target)

		if *submit {
			resp, err := processor.Submit(context.Background(), res.RunID)
			printSubmission(resp, err)
		}
	case "submit":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.String("run", "", "run id")
		input := fs.String("in", "", "edited record xlsx")
		variantName := fs.String("variant", "", "bank variant of the edited file")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("SUBMIT_ENDPOINT", cfg.SubmitEndpoint))

		switch {
		case strings.TrimSpace(*runID) != "":
			resp, err := processor.Submit(context.Background(), *runID)
			printSubmission(resp, err)
		case strings.TrimSpace(*input) != "" && strings.TrimSpace(*variantName) != "":
			blob, err := os.ReadFile(*input)
			must(err)
			resp, err := processor.SubmitEdited(context.Background(), *variantName, blob)
			printSubmission(resp, err)
		default:
			must(fmt.Errorf("--run or --in with --variant is required"))
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.String("run", "", "run id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*runID) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--run and --out are required"))
		}
		a, err := processor.Assembly(*runID)
		must(err)
		if a.Count == 0 {
			must(fmt.Errorf("no records for run=%s", *runID))
		}
		must(pipeline.WriteAssemblyXLSX(a, *out))
		fmt.Printf("exported %d rows to %s\n", a.Count, *out)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", cfg.RunsListLimit, "max runs")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%s  %s  %-14s records=%d amount=%s warnings=%d\n", r.CreatedAt, r.RunID, r.Variant, r.Count, r.AmountSum.StringFixed(2), len(r.Warnings))
		}
	default:
		usage()
		os.Exit(1)
	}
}

func printWarnings(warnings []internal.Warning) {
	for _, w := range warnings {
		fmt.Printf("warning stage=%s source=%s: %s\n", w.Stage, w.Source, w.Message)
	}
}

func printSubmission(resp pipeline.SubmitResponse, err error) {
	line, err := submissionOutcome(resp, err)
	must(err)
	fmt.Println(line)
}

// submissionOutcome reports a submission as accepted only when it returned
// no error and a 2xx status.
func submissionOutcome(resp pipeline.SubmitResponse, err error) (string, error) {
	if err != nil {
		return "", fmt.Errorf("submission failed status=%d: %w", resp.StatusCode, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("submission rejected status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return fmt.Sprintf("submission accepted status=%d body=%s", resp.StatusCode, resp.Body), nil
}

func usage() {
	fmt.Println("usage: rechazos <command>")
	fmt.Println("commands:")
	fmt.Println("  variants")
	fmt.Println("  run --variant=bcp-pre-txt --pdf=... [--txt=...] [--table=...] [--errors=...] [--eml=...] [--code=R002] [--out=...xlsx] [--submit]")
	fmt.Println("  submit --run=<run id> | --in=edited.xlsx --variant=...")
	fmt.Println("  export:xlsx --run=<run id> --out=./out/rechazos.xlsx")
	fmt.Println("  runs:list [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
