package predictor

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

// arrayPattern grabs the first bracketed span from the model output.
// Non-greedy with dot-matches-newline: models wrap the list in prose and
// code fences more often than not.
var arrayPattern = regexp.MustCompile(`(?s)\[.*?\]`)

type rawCandidate struct {
	Query      string   `json:"query"`
	Confidence *float64 `json:"confidence"`
}

// ParseCandidates extracts up to max prediction candidates from raw model
// output. Best-effort: strict JSON first, then a retry with single quotes
// normalized to double. Elements that are not objects or lack a query are
// skipped; a missing confidence defaults to 1.0. Anything unsalvageable
// yields an empty list, never an error.
func ParseCandidates(content string, max int) []querycache.Candidate {
	span := arrayPattern.FindString(content)
	if span == "" {
		metrics.PredictorParseResults.WithLabelValues("no_array").Inc()
		return []querycache.Candidate{}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(span), &elems); err != nil {
		normalized := strings.ReplaceAll(span, "'", `"`)
		if err := json.Unmarshal([]byte(normalized), &elems); err != nil {
			metrics.PredictorParseResults.WithLabelValues("malformed").Inc()
			return []querycache.Candidate{}
		}
	}

	out := make([]querycache.Candidate, 0, max)
	for _, elem := range elems {
		if len(out) >= max {
			break
		}
		var rc rawCandidate
		if err := json.Unmarshal(elem, &rc); err != nil {
			normalized := strings.ReplaceAll(string(elem), "'", `"`)
			if err := json.Unmarshal([]byte(normalized), &rc); err != nil {
				continue
			}
		}
		if strings.TrimSpace(rc.Query) == "" {
			continue
		}
		conf := 1.0
		if rc.Confidence != nil {
			conf = *rc.Confidence
		}
		out = append(out, querycache.Candidate{Query: rc.Query, Confidence: conf})
	}

	if len(out) == 0 {
		metrics.PredictorParseResults.WithLabelValues("empty").Inc()
	} else {
		metrics.PredictorParseResults.WithLabelValues("ok").Inc()
	}
	return out
}
