package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"hvdcmap/internal/codes"
	"hvdcmap/internal/config"
	"hvdcmap/internal/connectors"
	gmailconnector "hvdcmap/internal/connectors/gmail"
	imapconnector "hvdcmap/internal/connectors/imap"
	"hvdcmap/internal/listener"
	"hvdcmap/internal/pipeline"
	"hvdcmap/internal/scanner"
	"hvdcmap/internal/storage"
	"hvdcmap/internal/tracking"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	// Stateless commands run without a database.
	switch cmd {
	case "extract":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path or raw text")
		inType := fs.String("type", "text", "text|html|eml|xlsx|pdf")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		engine := codes.NewEngine(codes.MustRegistry())
		hits, err := pipeline.ExtractHitsFromInput(engine, *inType, *input)
		must(err)
		for _, hit := range hits {
			fmt.Printf("%s\t%s\t%s\n", hit.Source, hit.Kind, hit.Code)
		}
		return
	case "resolve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		vendor := fs.String("vendor", "", "vendor token")
		site := fs.String("site", "", "site token")
		_ = fs.Parse(os.Args[2:])
		resolver := codes.NewResolver(codes.MustRegistry())
		if strings.TrimSpace(*vendor) != "" {
			fmt.Printf("vendor: %s\n", resolver.ResolveVendor(*vendor))
		}
		if strings.TrimSpace(*site) != "" {
			fmt.Printf("site: %s\n", resolver.ResolveSite(*site))
		}
		return
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	switch cmd {
	case "tracking:initial-sync":
		svc := tracking.NewSyncService(db, cfg)
		if prev, err := svc.LastSyncAt(""); err == nil && prev != nil {
			fmt.Printf("previous initial sync: %s\n", *prev)
		}
		count, err := svc.InitialSync(context.Background())
		must(err)
		fmt.Printf("initial sync complete: %d cargo records\n", count)
	case "tracking:incremental-sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		mode := fs.String("mode", "", "day|hour")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*mode) == "" {
			must(fmt.Errorf("--mode is required"))
		}
		svc := tracking.NewSyncService(db, cfg)
		if prev, err := svc.LastSyncAt(*mode); err == nil && prev != nil {
			fmt.Printf("previous incremental sync mode=%s at=%s\n", *mode, *prev)
		}
		count, err := svc.IncrementalSync(context.Background(), *mode)
		must(err)
		fmt.Printf("incremental sync complete mode=%s records=%d\n", *mode, count)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn, codes.NewEngine(codes.MustRegistry()))
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d withCodes=%d\n", *provider, result.Fetched, result.Stored, result.WithCodes)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		reg := codes.MustRegistry()
		processor := pipeline.NewProcessingService(db, cfg, codes.NewEngine(reg), codes.NewResolver(reg))
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(*provider, *messageID)
			must(err)
			fmt.Printf("processed email id=%d hits=%d\n", res.EmailID, res.Processed)
			return
		}
		processedEmails, processedHits, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending emails=%d hits=%d\n", processedEmails, processedHits)
	case "mail:listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	case "scan":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		root := fs.String("root", "", "email archive root (defaults to EMAIL_ROOT_DIR)")
		_ = fs.Parse(os.Args[2:])
		s := scanner.NewScanner(db, cfg, codes.NewEngine(codes.MustRegistry()))
		res, err := s.ScanRoot(*root)
		must(err)
		fmt.Printf("scan done folders=%d files=%d skipped=%d\n", res.Folders, res.FilesSeen, res.FilesSkipped)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		emailID := fs.Int("emailId", 0, "internal email id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *emailID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--emailId and --out are required"))
		}
		rows, err := db.GetExportRows(*emailID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows for emailId=%d", *emailID))
		}
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "export:ttl":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		emailID := fs.Int("emailId", 0, "internal email id")
		out := fs.String("out", "", "output ttl path")
		_ = fs.Parse(os.Args[2:])
		if *emailID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--emailId and --out are required"))
		}
		rows, err := db.GetExportRows(*emailID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows for emailId=%d", *emailID))
		}
		must(pipeline.ExportOntologyTTL(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "export:folders":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		folders, err := db.ListFolders()
		must(err)
		if len(folders) == 0 {
			must(fmt.Errorf("no scanned folders to export"))
		}
		must(pipeline.ExportFoldersToXLSX(folders, *out))
		fmt.Printf("exported %d folders to %s\n", len(folders), *out)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path or raw text")
		inType := fs.String("type", "text", "text|html|eml|xlsx|pdf")
		output := fs.String("output", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *output == "" {
			must(fmt.Errorf("--input and --output are required"))
		}

		reg := codes.MustRegistry()
		engine := codes.NewEngine(reg)
		resolver := codes.NewResolver(reg)
		hits, err := pipeline.ExtractHitsFromInput(engine, *inType, *input)
		must(err)

		records, err := db.ListCargoRecords()
		must(err)
		matcher := pipeline.NewMatcher(cfg, records)

		exportRows := pipeline.BuildAdhocRows(hits, matcher, resolver)
		must(pipeline.ExportRowsToXLSX(exportRows, *output))
		fmt.Printf("run done rows=%d output=%s\n", len(exportRows), *output)
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: hvdcmap <command>")
	fmt.Println("commands:")
	fmt.Println("  extract --input=... [--type=text|html|eml|xlsx|pdf]")
	fmt.Println("  resolve [--vendor=he] [--site=das]")
	fmt.Println("  scan [--root=/path/to/archive]")
	fmt.Println("  tracking:initial-sync")
	fmt.Println("  tracking:incremental-sync --mode=day|hour")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx --emailId=1 --out=./out/result.xlsx")
	fmt.Println("  export:ttl --emailId=1 --out=./out/result.ttl")
	fmt.Println("  export:folders --out=./out/folders.xlsx")
	fmt.Println("  run --input=... [--type=...] --output=...xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
