package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"jarvis/internal/domain"
)

func newReplayCommand() *cobra.Command {
	var sessionID, scriptPath string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a scripted conversation against a session",
		Long:  "Reads newline-delimited messages from a script file (or stdin) and posts each one to /api/chat in order, printing the resulting affect trajectory as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			token, _ := cmd.Flags().GetString("token")
			return runReplay(server, token, sessionID, scriptPath)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id to replay into (created if absent)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "path to a newline-delimited message script (default: stdin)")
	return cmd
}

func runReplay(server, token, sessionID, scriptPath string) error {
	if sessionID == "" {
		sessionID = fmt.Sprintf("replay-%d", time.Now().UnixNano())
	}

	lines, err := readScriptLines(scriptPath)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("script has no messages")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Turn", "Message", "Dominant", "Score", "Trust", "User Emotion"})

	for _, message := range lines {
		resp, err := postChat(client, server, token, domain.ChatHTTPRequest{SessionID: sessionID, Message: message})
		if err != nil {
			return fmt.Errorf("turn %q failed: %w", truncate(message, 30), err)
		}
		table.Append([]string{
			fmt.Sprintf("%d", resp.BotState.Turn),
			truncate(message, 40),
			resp.BotState.DominantEmotion,
			fmt.Sprintf("%.2f", resp.BotState.DominantScore),
			fmt.Sprintf("%.2f", resp.BotState.Trust),
			resp.UserEmotion,
		})
	}

	fmt.Printf("Session: %s\n\n", sessionID)
	table.Render()
	return nil
}

func readScriptLines(path string) ([]string, error) {
	var reader *bufio.Scanner
	if path == "" {
		reader = bufio.NewScanner(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = bufio.NewScanner(f)
	}

	var lines []string
	for reader.Scan() {
		line := strings.TrimSpace(reader.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, reader.Err()
}

func postChat(client *http.Client, server, token string, req domain.ChatHTTPRequest) (domain.ChatHTTPResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.ChatHTTPResponse{}, err
	}
	httpReq, err := http.NewRequest(http.MethodPost, strings.TrimRight(server, "/")+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return domain.ChatHTTPResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return domain.ChatHTTPResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return domain.ChatHTTPResponse{}, fmt.Errorf("server returned status %d", httpResp.StatusCode)
	}
	var out domain.ChatHTTPResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return domain.ChatHTTPResponse{}, err
	}
	return out, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
