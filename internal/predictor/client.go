// Package predictor calls an OpenAI-compatible chat-completions endpoint to
// guess a user's next queries from their recent history. Failures are soft:
// the caller always gets a candidate list, possibly empty, never an error it
// has to handle on the lookup path.
package predictor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/cache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/circuitbreaker"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/config"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/httpx"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/tracing"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/utils"
)

const completionsPath = "/openai/v1/chat/completions"

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client predicts follow-up queries via a Groq-style chat-completions API.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	maxCandidates int

	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker

	respCache cache.Cache
	cacheTTL  time.Duration
}

// New builds a client from config. respCache may be nil to disable the
// short-lived response cache.
func New(cfg *config.Config, respCache cache.Cache) *Client {
	return &Client{
		apiKey:        cfg.PredictorAPIKey,
		baseURL:       strings.TrimRight(cfg.PredictorBaseURL, "/"),
		model:         cfg.PredictorModel,
		maxCandidates: cfg.PredictorMaxCandidates,
		httpClient:    &http.Client{Timeout: cfg.PredictorTimeout},
		limiter:       rate.NewLimiter(rate.Limit(cfg.PredictorRPS), cfg.PredictorBurst),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "predictor",
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
		}),
		respCache: respCache,
		cacheTTL:  cfg.PredictorCacheTTL,
	}
}

// Predict returns up to the configured number of candidate queries for the
// given history window. An empty history, a tripped breaker, or any upstream
// failure all yield an empty list.
func (c *Client) Predict(ctx context.Context, history []string) []querycache.Candidate {
	if len(history) == 0 {
		return []querycache.Candidate{}
	}

	ctx, span := tracing.StartSpan(ctx, "predictor.predict")
	defer span.End()

	cacheKey := historyKey(history)
	if c.respCache != nil {
		if data, ok := c.respCache.Get(cacheKey); ok {
			var cands []querycache.Candidate
			if err := json.Unmarshal(data, &cands); err == nil {
				metrics.PredictorRequests.WithLabelValues("cached").Inc()
				return cands
			}
		}
	}

	if !c.limiter.Allow() {
		metrics.PredictorRateLimitWaits.Inc()
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.PredictorRequests.WithLabelValues("error").Inc()
			return []querycache.Candidate{}
		}
	}

	start := time.Now()
	content, err := c.complete(ctx, history)
	metrics.PredictorRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PredictorRequests.WithLabelValues("error").Inc()
		logger.WarnContext(ctx, "prediction request failed", "error", err)
		return []querycache.Candidate{}
	}
	metrics.PredictorRequests.WithLabelValues("success").Inc()
	logger.DebugContext(ctx, "predictor response", "content", utils.Truncate(content, 200))

	cands := ParseCandidates(content, c.maxCandidates)
	if c.respCache != nil {
		if data, err := json.Marshal(cands); err == nil {
			c.respCache.Set(cacheKey, data, c.cacheTTL)
		}
	}
	return cands
}

func (c *Client) complete(ctx context.Context, history []string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a helpful assistant that predicts next user queries for cache prefetching.",
			},
			{
				Role:    "user",
				Content: buildPrompt(history, c.maxCandidates),
			},
		},
	})
	if err != nil {
		return "", err
	}

	var content string
	callErr := c.breaker.Call(func() error {
		build := func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		}
		resp, err := httpx.DoWithRetryFactory(c.httpClient, build, nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return ClassifyError(resp)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		var parsed chatResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("decoding completion response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("completion response has no choices")
		}
		content = parsed.Choices[0].Message.Content
		return nil
	})
	return content, callErr
}

// buildPrompt renders the history window into the instruction the model
// answers with a JSON list of {query, confidence} objects.
func buildPrompt(history []string, n int) string {
	quoted := make([]string, len(history))
	for i, h := range history {
		quoted[i] = fmt.Sprintf("%q", h)
	}
	return fmt.Sprintf(
		"A user has searched for the following queries in order: [%s]. "+
			"Predict the %d most likely queries they will search for next. "+
			"Respond with only a JSON list of objects, each with a \"query\" string "+
			"and a \"confidence\" number between 0 and 1.",
		strings.Join(quoted, ", "), n)
}

func historyKey(history []string) string {
	sum := sha256.Sum256([]byte(strings.Join(history, "\n")))
	return "predictor:" + hex.EncodeToString(sum[:])
}
