package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gifboard/internal/observability"
)

const maxSearchSuggestions = 5

// defaultTags is the tag fallback used whenever the external service cannot
// produce usable tags. Uploads always end up with at least these.
var defaultTags = []string{"animated", "gif"}

// completer is the slice of Client the adapter needs. Tests swap in a fake.
type completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Adapter turns free-form model output into the small, bounded suggestion
// shapes the API serves. It never returns an error: the suggestion surface
// is decorative and must not break browsing or uploads.
type Adapter struct {
	client completer
}

func NewAdapter(client completer) *Adapter {
	return &Adapter{client: client}
}

// SearchSuggestions returns up to five search completions for the partial
// query. Queries shorter than three characters return nothing without
// calling the external service.
func (a *Adapter) SearchSuggestions(ctx context.Context, query string) []string {
	if len(query) < 3 {
		observability.SuggestionRequests.WithLabelValues("search", "skipped").Inc()
		return []string{}
	}

	prompt := fmt.Sprintf(
		"You are a search suggestion engine for a GIF sharing site. "+
			"Given the partial query %q, respond with a JSON array of up to 5 short search suggestions. "+
			"Respond with only the JSON array, no other text.", query)

	start := time.Now()
	raw, err := a.client.Complete(ctx, []ChatMessage{{Role: "user", Content: prompt}})
	observability.SuggestionLatency.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		slog.WarnContext(ctx, "search suggestion call failed", "err", err)
		observability.SuggestionRequests.WithLabelValues("search", "error").Inc()
		return []string{}
	}

	items := parseList(raw)
	if len(items) == 0 {
		observability.SuggestionRequests.WithLabelValues("search", "empty").Inc()
		return []string{}
	}
	observability.SuggestionRequests.WithLabelValues("search", "ok").Inc()
	if len(items) > maxSearchSuggestions {
		items = items[:maxSearchSuggestions]
	}
	return items
}

// TagsForUpload returns tags for a new upload based on its title and
// optional description. Any failure yields the default tag pair so an upload
// never lands untagged.
func (a *Adapter) TagsForUpload(ctx context.Context, title, description string) []string {
	subject := fmt.Sprintf("title %q", title)
	if strings.TrimSpace(description) != "" {
		subject = fmt.Sprintf("title %q and description %q", title, description)
	}
	prompt := fmt.Sprintf(
		"You are a tagging engine for a GIF sharing site. "+
			"Given the GIF %s, respond with a JSON array of 3 to 6 short lowercase tags. "+
			"Respond with only the JSON array, no other text.", subject)

	start := time.Now()
	raw, err := a.client.Complete(ctx, []ChatMessage{{Role: "user", Content: prompt}})
	observability.SuggestionLatency.WithLabelValues("tags").Observe(time.Since(start).Seconds())
	if err != nil {
		slog.WarnContext(ctx, "tag suggestion call failed", "err", err)
		observability.SuggestionRequests.WithLabelValues("tags", "error").Inc()
		return append([]string(nil), defaultTags...)
	}

	tags := parseList(raw)
	if len(tags) == 0 {
		observability.SuggestionRequests.WithLabelValues("tags", "empty").Inc()
		return append([]string(nil), defaultTags...)
	}
	observability.SuggestionRequests.WithLabelValues("tags", "ok").Inc()
	return tags
}

// parseList extracts a string list from model output. It tolerates markdown
// code fences and prose around the array, and falls back to comma-splitting
// when no JSON array can be found. Blank entries are dropped.
func parseList(raw string) []string {
	text := strings.TrimSpace(raw)
	if fenced := stripFence(text); fenced != "" {
		text = fenced
	}

	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			var items []string
			if err := json.Unmarshal([]byte(text[start:end+1]), &items); err == nil {
				return cleanList(items)
			}
		}
	}

	return cleanList(strings.Split(text, ","))
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return ""
	}
	inner := strings.TrimPrefix(text, "```")
	if idx := strings.Index(inner, "\n"); idx >= 0 {
		inner = inner[idx+1:]
	}
	if idx := strings.LastIndex(inner, "```"); idx >= 0 {
		inner = inner[:idx]
	}
	return strings.TrimSpace(inner)
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(strings.Trim(strings.TrimSpace(it), `"`))
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}
