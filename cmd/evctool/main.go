// Command evctool is a small operator CLI for driving and inspecting a
// running evc-server over HTTP: replay a scripted conversation and
// watch the bot's affect trajectory, or pull a session's export.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "evctool",
		Short: "Operator CLI for the EVC chat server",
		Long:  "evctool talks to a running evc-server instance to replay scripted sessions and pull turn-log exports.",
	}

	root.PersistentFlags().String("server", "http://localhost:8080", "base URL of the evc-server instance")
	root.PersistentFlags().String("token", "", "bearer token for authenticated requests")

	root.AddCommand(newReplayCommand())
	root.AddCommand(newExportCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
