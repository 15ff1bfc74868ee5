package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/StefanSko/go-mcmc/internal/targets"
)

func targetsCmd() *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "List built-in sampling targets",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, name := range targets.Names() {
				t, err := targets.Lookup(name)
				if err != nil {
					continue
				}
				fmt.Printf("%-20s %s\n", t.Name, t.Desc)
			}
			return nil
		},
	}
}
