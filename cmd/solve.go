package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planops/rosterd/app"
	"github.com/planops/rosterd/config"
)

var solveCmd = &cobra.Command{
	Use:   "solve <schedule.json> <tasks.json>",
	Short: "Solve a planning problem and print the result document",
	Args:  cobra.ExactArgs(2),
	RunE:  runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	scheduleDoc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read schedule input: %w", err)
	}
	taskDoc, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read task input: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}

	doc, err := svc.Run(ctx, scheduleDoc, taskDoc)
	if err != nil {
		return err
	}
	if werr := doc.Write(os.Stdout); werr != nil {
		return fmt.Errorf("write result: %w", werr)
	}

	// Infeasibility is a legitimate answer and exits zero. Only an
	// engine failure makes the run itself fail.
	if doc.Errored() {
		cmd.SilenceUsage = true
		return errors.New("one or more solves failed")
	}
	return nil
}
