// Package main provides the mailwright entry point: the API server, the generation worker and schema migration
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailwright",
	Short: "AI email content generation service",
	Long: `mailwright generates email campaign content with a language model.

The API process accepts generation requests and queues jobs; worker processes
pull job ids from the queue, call the model and store the results.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
