package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const programName = "mentorctl"

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           programName,
		Short:         "Operator tooling for the hackathon mentor service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cacheFlushCommand(),
		classifyCommand(),
		distributeCommand(),
		migrateCommand(),
		tokenCommand(),
	)
	return root
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
