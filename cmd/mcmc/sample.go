package main

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/StefanSko/go-mcmc/internal/diagnostics"
	"github.com/StefanSko/go-mcmc/internal/targets"
	"github.com/StefanSko/go-mcmc/pkg/dcf"
	"github.com/StefanSko/go-mcmc/pkg/mcmc"
	"github.com/StefanSko/go-mcmc/pkg/prng"
)

func sampleCmd() *cli.Command {
	var (
		targetName string
		samples    int64
		warmup     int64
		chains     int64
		leapfrog   int64
		stepSize   float64
		accept     float64
		seed       int64
		noMass     bool
		outPath    string
		jsonOut    bool
	)

	return &cli.Command{
		Name:  "sample",
		Usage: "Sample a built-in target with HMC",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "target",
				Aliases:     []string{"t"},
				Usage:       "built-in target name (see 'mcmc targets')",
				Value:       "std-normal",
				Destination: &targetName,
			},
			&cli.Int64Flag{
				Name:        "samples",
				Aliases:     []string{"n"},
				Usage:       "post-warmup draws per chain",
				Value:       1000,
				Destination: &samples,
			},
			&cli.Int64Flag{
				Name:        "warmup",
				Aliases:     []string{"w"},
				Usage:       "warmup iterations",
				Value:       1000,
				Destination: &warmup,
			},
			&cli.Int64Flag{
				Name:        "chains",
				Aliases:     []string{"c"},
				Usage:       "independent chains",
				Value:       4,
				Destination: &chains,
			},
			&cli.Int64Flag{
				Name:        "leapfrog-steps",
				Aliases:     []string{"L"},
				Usage:       "leapfrog steps per trajectory",
				Value:       25,
				Destination: &leapfrog,
			},
			&cli.Float64Flag{
				Name:        "step-size",
				Usage:       "initial integrator step size",
				Value:       0.1,
				Destination: &stepSize,
			},
			&cli.Float64Flag{
				Name:        "target-accept",
				Usage:       "dual-averaging target acceptance rate",
				Value:       0.8,
				Destination: &accept,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Aliases:     []string{"s"},
				Usage:       "root PRNG seed",
				Value:       42,
				Destination: &seed,
			},
			&cli.BoolFlag{
				Name:        "no-mass-adaptation",
				Usage:       "keep the identity mass matrix",
				Destination: &noMass,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "write draws to a .dcf file",
				Destination: &outPath,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the summary as JSON",
				Destination: &jsonOut,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applySampleConfig(cmd, LoadConfig(), &warmup, &chains, &leapfrog, &stepSize, &accept, &seed)
			log := buildLogger()

			target, err := targets.Lookup(targetName)
			if err != nil {
				return err
			}

			opts := mcmc.Options{
				NumSamples:            int(samples),
				NumWarmup:             int(warmup),
				NumChains:             int(chains),
				NumLeapfrogSteps:      int(leapfrog),
				InitialStepSize:       stepSize,
				TargetAcceptRate:      accept,
				DisableMassAdaptation: noMass,
			}

			log.Info("sampling", "target", target.Name, "chains", chains, "samples", samples)
			start := time.Now()
			result, err := mcmc.Sample(mcmc.Problem{
				LogProb:     target.LogProb,
				GradLogProb: target.Grad,
				Initial:     target.Init(),
			}, prng.NewKey(uint64(seed)), opts, log)
			if err != nil {
				return err
			}
			log.Info("done", "elapsed", time.Since(start).Round(time.Millisecond))

			summary := diagnostics.Summarize(result.Draws)
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(map[string]any{
					"target": target.Name,
					"stats": map[string]any{
						"accept_rate": result.Stats.AcceptRate,
						"step_size":   result.Stats.StepSize,
					},
					"summary": summary,
				}); err != nil {
					return err
				}
			} else {
				printSummary(summary, result.Stats)
			}

			if outPath != "" {
				info := dcf.RunInfo{
					Target:     target.Name,
					NumChains:  int(chains),
					NumSamples: int(samples),
					NumWarmup:  int(warmup),
					Seed:       uint64(seed),
					AcceptRate: result.Stats.MeanAcceptRate(),
					StepSize:   result.Stats.MeanStepSize(),
					CreatedAt:  start.UTC().Format(time.RFC3339),
				}
				if err := dcf.Write(outPath, info, result.Draws); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				log.Info("draws written", "path", outPath)
			}
			return nil
		},
	}
}

func printSummary(summary []diagnostics.Summary, stats mcmc.Stats) {
	fmt.Printf("accept_rate=%.3f  step_size=%.4g\n\n", stats.MeanAcceptRate(), stats.MeanStepSize())
	fmt.Printf("%-14s %10s %10s %10s %10s %10s %8s %8s\n",
		"param", "mean", "sd", "5%", "50%", "95%", "rhat", "ess")
	for _, s := range summary {
		fmt.Printf("%-14s %10.4f %10.4f %10.4f %10.4f %10.4f %8.3f %8.0f\n",
			s.Name, s.Mean, s.SD, s.Quantiles[0], s.Quantiles[2], s.Quantiles[4], s.Rhat, s.ESS)
	}
}
