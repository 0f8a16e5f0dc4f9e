package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	statusServer string
	statusUser   string
	statusWatch  bool
)

var statusCmd = &cobra.Command{
	Use:   "status <podcast-id>",
	Short: "Show generation progress for a podcast",
	Long:  `The status command polls the API server and renders generation progress. With --watch it keeps polling until the podcast reaches a terminal state.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusServer, "server", "http://localhost:8080", "API server base URL")
	statusCmd.Flags().StringVar(&statusUser, "user", "1", "user ID to authenticate as")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "poll until generation finishes")
}

type statusResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	Progress     int     `json:"progress"`
	Stage        string  `json:"stage"`
	AudioURL     *string `json:"audioUrl"`
	ErrorMessage *string `json:"errorMessage"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	podcastID := args[0]
	client := &http.Client{Timeout: 10 * time.Second}

	status, err := fetchStatus(client, podcastID)
	if err != nil {
		return err
	}

	if !statusWatch {
		fmt.Printf("%s: %s (%d%%) %s\n", status.ID, status.Status, status.Progress, status.Stage)
		if status.ErrorMessage != nil {
			fmt.Printf("error: %s\n", *status.ErrorMessage)
		}
		return nil
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription(status.Stage),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
	)

	for {
		bar.Describe(status.Stage)
		bar.Set(status.Progress)

		switch status.Status {
		case "completed":
			bar.Finish()
			fmt.Println()
			if status.AudioURL != nil {
				fmt.Printf("audio: %s\n", *status.AudioURL)
			}
			return nil
		case "failed":
			fmt.Println()
			if status.ErrorMessage != nil {
				return fmt.Errorf("generation failed: %s", *status.ErrorMessage)
			}
			return fmt.Errorf("generation failed")
		}

		time.Sleep(2 * time.Second)
		if status, err = fetchStatus(client, podcastID); err != nil {
			return err
		}
	}
}

func fetchStatus(client *http.Client, podcastID string) (*statusResponse, error) {
	req, err := http.NewRequest(http.MethodGet, statusServer+"/api/v1/podcasts/"+podcastID+"/status", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-User-ID", statusUser)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %v", err)
	}

	return &status, nil
}
