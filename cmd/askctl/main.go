package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	apiAddr    string
	jsonOutput bool
	scope      []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "askctl",
		Short: "Query the corpus answering API from the command line",
	}
	rootCmd.PersistentFlags().StringVar(&apiAddr, "addr", envOr("CORPUSQA_ADDR", "http://localhost:8080"), "API base address")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output raw JSON")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question against the ingested corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(strings.Join(args, " "))
		},
	}
	askCmd.Flags().StringSliceVar(&scope, "doc", nil, "Restrict retrieval to the given document ids (repeatable)")
	rootCmd.AddCommand(askCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show corpus document and entity counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet("/v1/corpus/stats", func(body []byte) error {
				var stats struct {
					Documents int `json:"documents"`
					Entities  int `json:"entities"`
				}
				if err := json.Unmarshal(body, &stats); err != nil {
					return err
				}
				fmt.Printf("documents: %d\nentities: %d\n", stats.Documents, stats.Entities)
				return nil
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "documents",
		Short: "List documents in the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet("/v1/corpus/documents", func(body []byte) error {
				var resp struct {
					Documents []struct {
						ID       string `json:"id"`
						Filename string `json:"filename"`
					} `json:"documents"`
				}
				if err := json.Unmarshal(body, &resp); err != nil {
					return err
				}
				for _, doc := range resp.Documents {
					fmt.Printf("%s\t%s\n", doc.ID, doc.Filename)
				}
				return nil
			})
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAsk(question string) error {
	payload, err := json.Marshal(map[string]any{
		"question":       question,
		"document_scope": scope,
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Post(strings.TrimRight(apiAddr, "/")+"/v1/ask", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("call api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if jsonOutput {
		fmt.Println(string(body))
		return nil
	}

	var answer struct {
		Answer     string `json:"answer"`
		Sufficient bool   `json:"sufficient"`
		Attempts   int    `json:"attempts"`
		Score      struct {
			Overall float64 `json:"overall"`
		} `json:"score"`
		Citations []struct {
			DocumentID string `json:"document_id"`
			Location   string `json:"location"`
		} `json:"citations"`
	}
	if err := json.Unmarshal(body, &answer); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Println(answer.Answer)
	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, citation := range answer.Citations {
			if citation.Location != "" {
				fmt.Printf("  %s (%s)\n", citation.DocumentID, citation.Location)
			} else {
				fmt.Printf("  %s\n", citation.DocumentID)
			}
		}
	}
	fmt.Printf("\nscore=%.2f sufficient=%v attempts=%d\n", answer.Score.Overall, answer.Sufficient, answer.Attempts)
	return nil
}

func runGet(path string, render func([]byte) error) error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(strings.TrimRight(apiAddr, "/") + path)
	if err != nil {
		return fmt.Errorf("call api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if jsonOutput {
		fmt.Println(string(body))
		return nil
	}
	return render(body)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
