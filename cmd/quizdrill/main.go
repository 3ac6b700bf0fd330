package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/quizdrill/backend/internal/cli"
	practicesession "github.com/quizdrill/backend/internal/domain/practice_session"
	"github.com/quizdrill/backend/internal/domain/subject"
	"github.com/quizdrill/backend/internal/infrastructure/config"
	"github.com/quizdrill/backend/internal/service"
	"github.com/quizdrill/backend/internal/store"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: quizdrill [flags] practice|mock\n")
	flag.PrintDefaults()
}

func main() {
	subjects := flag.String("subjects", "", "comma separated subjects (default: all)")
	count := flag.Int("n", practicesession.DefaultPracticeQuestions, "practice questions")
	minutes := flag.Int("minutes", 0, "practice time limit in minutes (0: untimed)")
	flag.Usage = usage
	flag.Parse()

	mode := practicesession.ModePractice
	if flag.NArg() > 0 {
		mode = practicesession.Mode(flag.Arg(0))
	}
	if !mode.Valid() {
		usage()
		os.Exit(2)
	}

	var filter []subject.Subject
	for _, name := range strings.Split(*subjects, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		sub, ok := subject.Parse(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown subject %q\n", name)
			os.Exit(2)
		}
		filter = append(filter, sub)
	}

	cfg := config.Load()
	// stdout belongs to the session, logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc, err := service.NewStudyService(ctx, db, logger, service.Options{
		TickInterval: cfg.TickInterval,
		AnswerPolicy: cfg.AnswerPolicy,
		SeedBank:     cfg.SeedBank,
	})
	if err != nil {
		logger.Error("failed to load question bank", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	runner := cli.NewRunner(svc, os.Stdin, os.Stdout)
	err = runner.Run(ctx, service.StartRequest{
		Mode:               mode,
		Subjects:           filter,
		MaxQuestions:       *count,
		MaxDurationMinutes: *minutes,
	})
	if err != nil {
		logger.Error("session failed", "mode", mode, "error", err)
		os.Exit(1)
	}
}
