// Command warm replays a list of queries against a running server to
// pre-populate a user's cache, e.g. after a deploy or a purge.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/utils"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "Server base URL")
	user := flag.String("user", "guest", "User whose cache to warm")
	file := flag.String("file", "", "File with one query per line (default: stdin)")
	delay := flag.Duration("delay", 0, "Pause between requests")
	flag.Parse()

	in := os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("Failed to open query file: %v", err)
		}
		defer f.Close()
		in = f
	}

	var queries []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" || strings.HasPrefix(query, "#") {
			continue
		}
		queries = append(queries, query)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read queries: %v", err)
	}
	// Repeats in the list would only record themselves as cache hits.
	queries = utils.UniqueStrings(queries)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	counts := map[string]int{}

	for _, query := range queries {
		source, err := search(httpClient, *baseURL, *user, query)
		if err != nil {
			log.Printf("query %q failed: %v", query, err)
			counts["error"]++
		} else {
			counts[source]++
		}

		if *delay > 0 {
			time.Sleep(*delay)
		}
	}

	fmt.Printf("Warmed %d queries for user %q\n", len(queries), *user)
	for source, n := range counts {
		fmt.Printf("  %-12s %d\n", source+":", n)
	}
}

func search(c *http.Client, baseURL, user, query string) (string, error) {
	u := fmt.Sprintf("%s/api/search?query=%s&user=%s",
		baseURL, url.QueryEscape(query), url.QueryEscape(user))

	resp, err := c.Get(u)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", resp.Status, body)
	}

	var out struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	return out.Source, nil
}
