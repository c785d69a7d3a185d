package main

import (
	"fmt"
	"os"

	"github.com/relaypath/shmarena"
	"github.com/relaypath/shmarena/container"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newMasterCmd())
}

func newMasterCmd() *cobra.Command {
	var name string
	var count int

	cmd := &cobra.Command{
		Use:   "master",
		Short: "Create a fresh arena, fill a Vector with count integers, and print its name",
		Long: `The master command opens a new named shared-memory arena, truncating
it if it already exists, pushes count integers into an arena-backed
Vector, and prints the arena's name so a later "shmdemo attach" call in
another process can find it.

Example:
  shmdemo master --count 50
  shmdemo attach --name 12345.shm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaster(name, count)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "segment name (default: <pid>.shm)")
	cmd.Flags().IntVar(&count, "count", 10, "number of integers to push")
	return cmd
}

func runMaster(name string, count int) error {
	a, err := shmarena.Open(name, shmarena.ORdwr|shmarena.OCreate|shmarena.OTrunc, 0600)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer a.Close()

	v := container.NewVector[int](a)
	for i := 0; i < count; i++ {
		v.PushBack(i * i)
	}

	fmt.Fprintf(os.Stdout, "name=%s addr=%#x len=%d\n", a.Name(), a.Addr(), v.Len())
	return nil
}
