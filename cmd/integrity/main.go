// Command integrity inspects a running server's cache state through the
// admin API: consistency checks, aggregate stats, and cache purges.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/integrity"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/secrets"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)
	purgeCmd := flag.NewFlagSet("purge", flag.ExitOnError)

	purgeUser := purgeCmd.String("user", "", "Purge a single user (default: all users)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	token := os.Getenv("ADMIN_API_TOKEN")
	if err := secrets.ValidateRequired(map[string]string{"ADMIN_API_TOKEN": token}); err != nil {
		log.Fatal(err)
	}

	c := &client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	switch os.Args[1] {
	case "check":
		checkCmd.Parse(os.Args[2:])
		runCheck(c)
	case "stats":
		statsCmd.Parse(os.Args[2:])
		runStats(c)
	case "purge":
		purgeCmd.Parse(os.Args[2:])
		runPurge(c, *purgeUser)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("CacheCraft - Cache Integrity Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  integrity check              - Run all integrity checks")
	fmt.Println("  integrity stats              - Show aggregate cache statistics")
	fmt.Println("  integrity purge [options]    - Purge cached state")
	fmt.Println()
	fmt.Println("Purge options:")
	fmt.Println("  -user string     Purge a single user (default: all users)")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  API_BASE_URL     Server base URL (default: http://localhost:8000)")
	fmt.Println("  ADMIN_API_TOKEN  Bearer token for the admin API (required)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  integrity check")
	fmt.Println("  integrity stats")
	fmt.Println("  integrity purge -user alice")
}

type integrityResponse struct {
	Checks      []integrity.CheckResult `json:"checks"`
	Stats       integrity.Stats         `json:"stats"`
	TotalIssues int                     `json:"total_issues"`
}

func (c *client) do(method, path string) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: %s (%s)", method, path, resp.Status, body)
	}
	return body, nil
}

func (c *client) fetchIntegrity() integrityResponse {
	body, err := c.do(http.MethodGet, "/api/admin/integrity")
	if err != nil {
		log.Fatalf("Failed to run integrity checks: %v", err)
	}
	var out integrityResponse
	if err := json.Unmarshal(body, &out); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func runCheck(c *client) {
	log.Println("Running integrity checks...")

	out := c.fetchIntegrity()

	fmt.Println()
	fmt.Println("=== Integrity Check Results ===")
	fmt.Println()

	hasAnyIssues := false
	for _, result := range out.Checks {
		status := "✓ OK"
		if result.HasIssues {
			status = fmt.Sprintf("⚠ ISSUES FOUND: %d", result.IssueCount)
			hasAnyIssues = true
		}

		fmt.Printf("%-30s %s\n", result.CheckName+":", status)
		fmt.Printf("  %s\n", result.Details)
		fmt.Println()
	}

	if hasAnyIssues {
		fmt.Println("Run 'integrity purge' to drop the affected state")
		os.Exit(1)
	} else {
		fmt.Println("All integrity checks passed!")
	}
}

func runStats(c *client) {
	out := c.fetchIntegrity()

	fmt.Println()
	fmt.Println("=== Cache Statistics ===")
	fmt.Println()
	fmt.Printf("%-20s %d\n", "Users:", out.Stats.Users)
	fmt.Printf("%-20s %d\n", "Entries:", out.Stats.Entries)
	fmt.Printf("%-20s %d\n", "Live entries:", out.Stats.LiveEntries)
	fmt.Printf("%-20s %d\n", "Stale entries:", out.Stats.StaleEntries)
}

func runPurge(c *client, user string) {
	path := "/api/admin/cache"
	if user != "" {
		path += "?user=" + url.QueryEscape(user)
		log.Printf("Purging cache for user %q...", user)
	} else {
		log.Println("Purging all user caches...")
	}

	body, err := c.do(http.MethodDelete, path)
	if err != nil {
		log.Fatalf("Purge failed: %v", err)
	}

	var resp map[string]string
	if err := json.Unmarshal(body, &resp); err == nil && resp["message"] != "" {
		fmt.Println(resp["message"])
	} else {
		fmt.Println("Purge complete")
	}
}
