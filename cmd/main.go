package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "companion",
		Short:        "Chat companion that answers with a summary, a picture and a short clip",
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("debug", false, "debug logging")
	root.AddCommand(serveCMD(), chatCMD())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
