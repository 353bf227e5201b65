package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var sessionID, format, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a session's turn log",
		Long:  "Pulls a session's export from /api/export/csv or /api/export/history and writes it to a file or stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			token, _ := cmd.Flags().GetString("token")
			return runExport(server, token, sessionID, format, outPath)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id to export (required)")
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or json")
	cmd.Flags().StringVar(&outPath, "out", "", "output file path (default: stdout)")
	cmd.MarkFlagRequired("session")
	return cmd
}

func runExport(server, token, sessionID, format, outPath string) error {
	path := "/api/export/csv"
	if format == "json" {
		path = "/api/export/history"
	} else if format != "csv" {
		return fmt.Errorf("unsupported format %q, want csv or json", format)
	}

	u := strings.TrimRight(server, "/") + path + "?" + url.Values{"session_id": {sessionID}}.Encode()
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	out := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "wrote %s export to %s\n", format, outPath)
	}
	return nil
}
