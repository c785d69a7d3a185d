package main

import (
	"fmt"
	"os"

	"github.com/relaypath/shmarena"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newAttachCmd())
}

func newAttachCmd() *cobra.Command {
	var name string
	var unlink bool

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach to an existing arena and print its metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttach(name, unlink)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "segment name (required)")
	cmd.Flags().BoolVar(&unlink, "unlink", false, "remove the segment's name after attaching")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runAttach(name string, unlink bool) error {
	a, err := shmarena.Open(name, shmarena.ORdwr, 0)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer a.Close()

	if unlink {
		if err := a.Unlink(); err != nil {
			return fmt.Errorf("unlink: %w", err)
		}
	}

	m := a.Metrics()
	fmt.Fprintf(os.Stdout, "name=%s addr=%#x committed=%d free=%d utilization=%.4f\n",
		a.Name(), a.Addr(), m.CommittedSize, m.FreeBytes, m.Utilization)
	return nil
}
