// Package content reviews the blog's publishing calendar and drafts new
// posts with an LLM. All post state lives in Ghost; this package only reads
// the calendar and pushes drafts.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"family-ops/internal/ghost"
	"family-ops/internal/llm"
	"family-ops/internal/shared"
)

// Entry is one post on the calendar, with its publish date parsed.
type Entry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// CalendarSummary is the review view: what is scheduled, what is sitting in
// drafts, and how long until the queue runs dry.
type CalendarSummary struct {
	Scheduled     []Entry `json:"scheduled"`
	Drafts        []Entry `json:"drafts"`
	QueueDaysLeft int     `json:"queue_days_left"`
}

// Calendar reviews the publishing queue and generates draft posts.
type Calendar struct {
	client  ghost.Client
	textGen llm.TextGenerator
	now     func() time.Time
}

// NewCalendar creates a Calendar. textGen may be nil when draft generation
// is not configured.
func NewCalendar(client ghost.Client, textGen llm.TextGenerator) *Calendar {
	return &Calendar{
		client:  client,
		textGen: textGen,
		now:     time.Now,
	}
}

// Review fetches scheduled and draft posts and reports how many days of
// scheduled content remain.
func (c *Calendar) Review(ctx context.Context) (*CalendarSummary, error) {
	scheduled, err := c.client.FetchPosts(ctx, "status:scheduled")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheduled posts: %w", err)
	}
	drafts, err := c.client.FetchPosts(ctx, "status:draft")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draft posts: %w", err)
	}

	summary := &CalendarSummary{
		Scheduled: toEntries(scheduled),
		Drafts:    toEntries(drafts),
	}
	sort.Slice(summary.Scheduled, func(i, j int) bool {
		a, b := summary.Scheduled[i].PublishedAt, summary.Scheduled[j].PublishedAt
		if a == nil || b == nil {
			return b == nil
		}
		return a.Before(*b)
	})

	// Days of runway: until the last scheduled post still in the future.
	now := c.now()
	var last *time.Time
	for _, e := range summary.Scheduled {
		if e.PublishedAt != nil && e.PublishedAt.After(now) {
			last = e.PublishedAt
		}
	}
	if last != nil {
		summary.QueueDaysLeft = int(last.Sub(now).Hours() / 24)
	}

	return summary, nil
}

// DraftResult is a generated draft plus the execution metadata for the
// metrics store.
type DraftResult struct {
	Post *ghost.Post
	Meta shared.AgentMeta
}

type generatedDraft struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// GenerateDraft asks the LLM for a post on the given topic and saves it to
// Ghost as a draft. Nothing is published without a human review.
func (c *Calendar) GenerateDraft(ctx context.Context, topic string) (*DraftResult, error) {
	if c.textGen == nil {
		return nil, fmt.Errorf("no text generator configured")
	}

	start := c.now()
	prompt := fmt.Sprintf(`
You are writing for a family food and home-organisation blog. Write a post
about the following topic.

Topic: "%s"

Return the result strictly as a JSON object:
{
  "title": "Post title",
  "html": "<p>Post body as simple HTML paragraphs and headings.</p>"
}

Do not include any other text or formatting in your response.
`, topic)

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}

	var draft generatedDraft
	if err := json.Unmarshal([]byte(resp.Content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse draft %w. Response: %s", err, resp.Content)
	}
	if draft.Title == "" || draft.HTML == "" {
		return nil, fmt.Errorf("generated draft is missing title or body")
	}

	post, err := c.client.CreatePost(ctx, draft.Title, draft.HTML, false)
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	return &DraftResult{
		Post: post,
		Meta: shared.AgentMeta{
			AgentName: "Drafter",
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		},
	}, nil
}

func toEntries(posts []ghost.Post) []Entry {
	entries := make([]Entry, 0, len(posts))
	for _, p := range posts {
		e := Entry{ID: p.ID, Title: p.Title, Status: p.Status}
		if p.PublishedAt != "" {
			if ts, err := time.Parse(time.RFC3339, p.PublishedAt); err == nil {
				e.PublishedAt = &ts
			}
		}
		entries = append(entries, e)
	}
	return entries
}
