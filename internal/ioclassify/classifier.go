// Package ioclassify implements the Classifier interface against the
// Anthropic Messages API. The classifier is treated as an untrusted
// black box: its reply is parsed tolerantly, and any reply that does
// not yield a JSON proposal produces (nil, nil) so the caller keeps
// whatever row it already has.
package ioclassify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gnames/gnfacet/pkg/config"
	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/gnames/gnfacet/pkg/gnfacet"
)

const maxTokens = 1024

type classifier struct {
	client anthropic.Client
	model  string
}

// New creates a Classifier backed by the Anthropic API. The API key is
// read from the environment variable named in the config; a missing
// key is an error so operators find out at startup, not mid-batch.
func New(cfg *config.Config) (gnfacet.Classifier, error) {
	key := os.Getenv(cfg.Classify.APIKeyEnv)
	if key == "" {
		return nil, MissingKeyError(cfg.Classify.APIKeyEnv)
	}

	return &classifier{
		client: anthropic.NewClient(option.WithAPIKey(key)),
		model:  cfg.Classify.Model,
	}, nil
}

// Classify asks the model for facet slugs describing a taxon. The
// vocabulary in the prompt is the only legal answer set; slugs outside
// it survive parsing and are dropped later at encode time.
func (c *classifier) Classify(
	ctx context.Context,
	title string,
	vocab gnfacet.Vocabulary,
) (*facet.Proposal, error) {
	prompt := buildPrompt(title, vocab)

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, RequestError(title, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	proposal := ParseReply(text)
	if proposal == nil {
		slog.Warn("Classifier reply was not parseable, keeping stored row",
			"taxon", title)
	}
	return proposal, nil
}

// buildPrompt renders the classification request with the scope's full
// vocabulary inline.
func buildPrompt(title string, vocab gnfacet.Vocabulary) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"Classify the organism %q into the vocabularies below.\n\n", title)

	b.WriteString("Single-valued facets (pick at most one slug each):\n")
	for _, key := range facet.EnumKeys() {
		if slugs := vocab[key]; len(slugs) > 0 {
			fmt.Fprintf(&b, "  %s: %s\n", key, strings.Join(slugs, ", "))
		}
	}
	b.WriteString("\nMulti-valued facets (pick every slug that applies):\n")
	for _, key := range facet.MaskKeys() {
		if slugs := vocab[key]; len(slugs) > 0 {
			fmt.Fprintf(&b, "  %s: %s\n", key, strings.Join(slugs, ", "))
		}
	}

	b.WriteString(`
Reply with a single JSON object and nothing else. Keys are the facet
names above; single-valued facets map to one slug string, multi-valued
facets to an array of slugs. Omit a facet when unsure. Use only slugs
listed above.`)
	return b.String()
}

// ParseReply extracts a proposal from a model reply. Code fences and
// surrounding prose are tolerated; the first balanced JSON object wins.
// Returns nil when no object parses.
func ParseReply(text string) *facet.Proposal {
	raw := extractJSON(text)
	if raw == "" {
		return nil
	}
	var p facet.Proposal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return &p
}

// extractJSON returns the first top-level {...} block of a reply,
// stripping markdown code fences if present.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.Index(text, "```"); i >= 0 {
			text = text[:i]
		}
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
