package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/StefanSko/go-mcmc/internal/diagnostics"
	"github.com/StefanSko/go-mcmc/pkg/dcf"
)

func inspectCmd() *cli.Command {
	var jsonOut bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect a .dcf draws file",
		ArgsUsage: "<file.dcf>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print as JSON",
				Destination: &jsonOut,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("usage: mcmc inspect <file.dcf>")
			}
			f, err := dcf.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			info, err := f.RunInfo()
			if err != nil {
				return err
			}
			draws, err := f.Draws()
			if err != nil {
				return err
			}
			summary := diagnostics.Summarize(draws)

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"run":     info,
					"summary": summary,
				})
			}

			fmt.Printf("target:      %s\n", info.Target)
			fmt.Printf("chains:      %d\n", info.NumChains)
			fmt.Printf("samples:     %d\n", info.NumSamples)
			fmt.Printf("warmup:      %d\n", info.NumWarmup)
			fmt.Printf("seed:        %d\n", info.Seed)
			fmt.Printf("accept_rate: %.3f\n", info.AcceptRate)
			fmt.Printf("step_size:   %.4g\n", info.StepSize)
			fmt.Printf("created_at:  %s\n\n", info.CreatedAt)
			fmt.Printf("%-14s %10s %10s %8s %8s\n", "param", "mean", "sd", "rhat", "ess")
			for _, s := range summary {
				fmt.Printf("%-14s %10.4f %10.4f %8.3f %8.0f\n", s.Name, s.Mean, s.SD, s.Rhat, s.ESS)
			}
			return nil
		},
	}
}
