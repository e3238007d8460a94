package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsyncapp/synccore/internal/orchestrator"
)

func init() {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and control in-flight or interrupted transfers",
	}

	jobsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List active transfers",
			RunE: func(cmd *cobra.Command, args []string) error {
				eng, err := sharedEngine()
				if err != nil {
					return err
				}
				for _, rec := range eng.GetActiveTransfers() {
					fmt.Printf("%s\t%s\t%s -> %s\t%d/%d bytes\n", rec.ID, rec.Status, rec.SourceRoot, rec.DestRoot, rec.BytesTransferred, rec.TotalBytes)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "interrupted",
			Short: "List transfers that can be resumed",
			RunE: func(cmd *cobra.Command, args []string) error {
				eng, err := sharedEngine()
				if err != nil {
					return err
				}
				for _, rec := range eng.GetInterruptedTransfers() {
					fmt.Printf("%s\t%s\t%s -> %s\n", rec.ID, rec.Status, rec.SourceRoot, rec.DestRoot)
				}
				return nil
			},
		},
		jobAction("pause", (*orchestrator.Engine).PauseTransfer),
		jobAction("resume", (*orchestrator.Engine).ResumeTransfer),
		jobAction("cancel", (*orchestrator.Engine).CancelTransfer),
		jobAction("discard", (*orchestrator.Engine).DiscardTransfer),
		&cobra.Command{
			Use:   "resume-interrupted <transfer-id>",
			Short: "Resume an interrupted transfer, re-copying the last verified blocks of each partial file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				eng, err := sharedEngine()
				if err != nil {
					return err
				}
				summary, err := eng.ResumeInterruptedTransfer(context.Background(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("resumed: copied %d, failed %d\n", summary.FilesCopied, summary.FilesFailed)
				return nil
			},
		},
	)

	rootCmd.AddCommand(jobsCmd)
}

// jobAction wraps a single-id Engine method (PauseTransfer, ResumeTransfer,
// CancelTransfer, DiscardTransfer) as a cobra subcommand.
func jobAction(use string, fn func(*orchestrator.Engine, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <transfer-id>",
		Short: use + " a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := sharedEngine()
			if err != nil {
				return err
			}
			return fn(eng, args[0])
		},
	}
}
