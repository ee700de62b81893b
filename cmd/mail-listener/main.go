package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"hvdcmap/internal/config"
	"hvdcmap/internal/listener"
	"hvdcmap/internal/storage"
)

func main() {
	provider := flag.String("provider", "", "override MAIL_LISTENER_PROVIDER (gmail|imap)")
	label := flag.String("label", "", "override MAIL_LISTENER_LABEL")
	interval := flag.Int("interval", 0, "override MAIL_LISTENER_INTERVAL_SEC")
	flag.Parse()

	cfg, err := config.Load()
	must(err)
	if strings.TrimSpace(*provider) != "" {
		cfg.MailListenerProvider = *provider
	}
	if strings.TrimSpace(*label) != "" {
		cfg.MailListenerLabel = *label
	}
	if *interval > 0 {
		cfg.MailListenerIntervalSec = *interval
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	svc := listener.NewService(db, cfg)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("mail listener starting provider=%s label=%s interval=%ds\n", cfg.MailListenerProvider, cfg.MailListenerLabel, cfg.MailListenerIntervalSec)
	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
