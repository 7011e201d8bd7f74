package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/INDUS0007/soul/cmd/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "soul",
		Short: "Real-time counselling chat service",
	}

	rootCmd.AddCommand(service.NewCommand())
	rootCmd.AddCommand(service.NewProcessCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
