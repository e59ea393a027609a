package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search [upc]",
		Short: "Look up a UPC in the eBay product catalog",
		Long:  "Sends a catalog search request to the API server and displays the matching products.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
}

type searchPayload struct {
	UPC string `json:"upc"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	payload, err := json.Marshal(searchPayload{UPC: args[0]})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	apiURL := viper.GetString("api_url") + "/api/v1/search"

	req, err := http.NewRequestWithContext(
		cmd.Context(),
		http.MethodPost,
		apiURL,
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling search API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, body)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		// Fall back to raw output if JSON indentation fails.
		fmt.Println(string(body))
		return nil
	}

	fmt.Println(pretty.String())
	return nil
}
