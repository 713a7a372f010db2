// Package main provides the clem CLI: it runs benchmark games against chat
// models, scores and transcribes the recorded episodes, aggregates results
// and serves the leaderboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	evalcmd "github.com/clp-research/clembench-go/internal/cmd/evalcmd"
	listcmd "github.com/clp-research/clembench-go/internal/cmd/list"
	runcmd "github.com/clp-research/clembench-go/internal/cmd/run"
	scorecmd "github.com/clp-research/clembench-go/internal/cmd/score"
	servecmd "github.com/clp-research/clembench-go/internal/cmd/serve"
	transcribecmd "github.com/clp-research/clembench-go/internal/cmd/transcribe"
	platformcmd "github.com/clp-research/clembench-go/internal/platform/cmd"
)

const usage = `Usage: clem <command> [flags]

Commands:
  list [games|models|backends]  list known games, models or backends
  run -g <game> -m <model>      play benchmark episodes
  score [-g <game>]             score recorded episodes
  transcribe [-g <game>]        render episode transcripts
  eval                          aggregate scores into benchmark tables
  serve                         serve the leaderboard over HTTP
`

func main() {
	log.SetPrefix("[CLEM] ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := dispatch(command, args)
	if err != nil {
		if command == "-h" || command == "help" || command == "--help" {
			fmt.Fprint(os.Stdout, usage)
			return
		}
		log.Fatalf("%v", err)
	}

	if err := platformcmd.RunWithTelemetry(ctx, command, run); err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func dispatch(command string, args []string) (func(context.Context) error, error) {
	out := io.Writer(os.Stdout)

	switch command {
	case platformcmd.ServiceList:
		fs := flag.NewFlagSet(platformcmd.ServiceList, flag.ExitOnError)
		cfg, err := listcmd.ParseConfig(fs, args)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return listcmd.Run(ctx, cfg, out) }, nil
	case platformcmd.ServiceRun:
		fs := flag.NewFlagSet(platformcmd.ServiceRun, flag.ExitOnError)
		cfg, err := runcmd.ParseConfig(fs, args)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return runcmd.Run(ctx, cfg, out) }, nil
	case platformcmd.ServiceScore:
		fs := flag.NewFlagSet(platformcmd.ServiceScore, flag.ExitOnError)
		cfg, err := scorecmd.ParseConfig(fs, args)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return scorecmd.Run(ctx, cfg, out) }, nil
	case platformcmd.ServiceTranscribe:
		fs := flag.NewFlagSet(platformcmd.ServiceTranscribe, flag.ExitOnError)
		cfg, err := transcribecmd.ParseConfig(fs, args)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return transcribecmd.Run(ctx, cfg, out) }, nil
	case platformcmd.ServiceEval:
		fs := flag.NewFlagSet(platformcmd.ServiceEval, flag.ExitOnError)
		cfg, err := evalcmd.ParseConfig(fs, args)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return evalcmd.Run(ctx, cfg, out) }, nil
	case platformcmd.ServiceServe:
		fs := flag.NewFlagSet(platformcmd.ServiceServe, flag.ExitOnError)
		cfg, err := servecmd.ParseConfig(fs, args)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return servecmd.Run(ctx, cfg, out) }, nil
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}
