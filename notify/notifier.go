// Package notify reports the marketplace's import status for the
// published feed into a Telegram chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cian-feed/utils"
)

// Notifier queries the marketplace public API and posts a Markdown
// status report to Telegram.
type Notifier struct {
	apiBaseURL string
	apiToken   string
	pageSize   int

	botToken    string
	chatID      string
	threadID    string
	errorUserID string

	client *http.Client
	retry  utils.RetryConfig
	logger zerolog.Logger
}

// Config holds the notifier settings.
type Config struct {
	APIBaseURL  string
	APIToken    string
	PageSize    int
	Timeout     time.Duration
	BotToken    string
	ChatID      string
	ThreadID    string
	ErrorUserID string
}

// New validates the Telegram settings and returns a ready Notifier.
func New(cfg Config, retry utils.RetryConfig, logger zerolog.Logger) (*Notifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("notify: bot token and chat id must be provided")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Notifier{
		apiBaseURL:  strings.TrimRight(cfg.APIBaseURL, "/"),
		apiToken:    cfg.APIToken,
		pageSize:    cfg.PageSize,
		botToken:    cfg.BotToken,
		chatID:      cfg.ChatID,
		threadID:    cfg.ThreadID,
		errorUserID: cfg.ErrorUserID,
		client:      &http.Client{Timeout: cfg.Timeout},
		retry:       retry,
		logger:      logger,
	}, nil
}

// importStatus is the merged view over the three report endpoints.
type importStatus struct {
	OrderID       any
	ActiveFeedURL string
	LastFeedCheck string
	LastProcess   string
	OffersProblem bool
	ImagesProblem bool
	ProblemOffers []string
	ProblemImages []string
}

// Run fetches the import status and posts the report.
func (n *Notifier) Run(ctx context.Context) error {
	status, err := n.fetchStatus(ctx)
	if err != nil {
		return err
	}
	text := buildReport(status, n.errorUserID)
	return n.sendToTelegram(ctx, text)
}

// fetchStatus pulls the three report endpoints in parallel.
func (n *Notifier) fetchStatus(ctx context.Context) (*importStatus, error) {
	var lastInfo, orderReport, imagesReport map[string]any
	var errInfo, errOrder, errImages error

	pool := utils.NewWorkerPool(3)
	pool.Submit(func() {
		lastInfo, errInfo = n.fetchJSON(ctx, "/v1/get-last-order-info", nil)
	})
	pool.Submit(func() {
		orderReport, errOrder = n.fetchJSON(ctx, "/v1/get-order", nil)
	})
	pool.Submit(func() {
		imagesReport, errImages = n.fetchJSON(ctx, "/v1/get-images-report", url.Values{
			"page":     {"1"},
			"pageSize": {strconv.Itoa(n.pageSize)},
		})
	})
	pool.Wait()

	for _, err := range []error{errInfo, errOrder, errImages} {
		if err != nil {
			return nil, err
		}
	}

	info, _ := lastInfo["result"].(map[string]any)
	status := &importStatus{
		OrderID:       info["orderId"],
		LastFeedCheck: stringField(info, "lastFeedCheckDate"),
		LastProcess:   stringField(info, "lastProcessDate"),
		OffersProblem: boolField(info, "hasOffersProblems"),
		ImagesProblem: boolField(info, "hasImagesProblems"),
	}
	if urls, ok := info["activeFeedUrls"].([]any); ok && len(urls) > 0 {
		if s, ok := urls[0].(string); ok {
			status.ActiveFeedURL = s
		}
	}
	status.ProblemOffers = externalIDs(orderReport, "offers")
	status.ProblemImages = externalIDs(imagesReport, "items")
	return status, nil
}

func (n *Notifier) fetchJSON(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	target := n.apiBaseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var out map[string]any
	err := n.retry.Do(ctx, "cian "+path, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("notify: build request: %w", err)
		}
		if n.apiToken != "" {
			req.Header.Set("Authorization", "Bearer "+n.apiToken)
		}

		resp, err := n.client.Do(req)
		if err != nil {
			return fmt.Errorf("notify: %s: %w", path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("notify: read %s: %w", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("notify: %s: unexpected status %d", path, resp.StatusCode)
		}
		out = nil
		if err := json.Unmarshal(body, &out); err != nil {
			return fmt.Errorf("notify: decode %s: %w", path, err)
		}
		return nil
	})
	return out, err
}

// buildReport renders the Telegram Markdown message.
func buildReport(s *importStatus, errorUserID string) string {
	lines := []string{"*CIAN XML импорт*", ""}

	feedURL := s.ActiveFeedURL
	if feedURL == "" {
		feedURL = "—"
	}
	lines = append(lines,
		fmt.Sprintf("• feed: `%s`", feedURL),
		fmt.Sprintf("• order id: `%v`", orDash(s.OrderID)),
		fmt.Sprintf("• last check: %s", formatDate(s.LastFeedCheck)),
		fmt.Sprintf("• last process: %s", formatDate(s.LastProcess)),
		fmt.Sprintf("• offers with issues: `%d`", len(s.ProblemOffers)),
		fmt.Sprintf("• images with issues: `%d`", len(s.ProblemImages)),
	)
	if len(s.ProblemOffers) > 0 {
		lines = append(lines, fmt.Sprintf("  ↳ problem offers: `%s`", strings.Join(head(s.ProblemOffers, 5), ", ")))
	}
	if len(s.ProblemImages) > 0 {
		lines = append(lines, fmt.Sprintf("  ↳ problem photos: `%s`", strings.Join(head(s.ProblemImages, 5), ", ")))
	}

	switch {
	case (s.OffersProblem || s.ImagesProblem) && errorUserID != "":
		lines = append(lines, "", fmt.Sprintf("⚠️ [Ответственный](tg://user?id=%s) проверь выгрузку!", errorUserID))
	case !s.OffersProblem && !s.ImagesProblem:
		lines = append(lines, "", "✅ Ошибок не обнаружено")
	}
	return strings.Join(lines, "\n")
}

func (n *Notifier) sendToTelegram(ctx context.Context, text string) error {
	payload := map[string]any{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	if n.threadID != "" {
		if id, err := strconv.Atoi(n.threadID); err == nil {
			payload["message_thread_id"] = id
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode telegram payload: %w", err)
	}

	return n.retry.Do(ctx, "telegram sendMessage", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			"https://api.telegram.org/bot"+n.botToken+"/sendMessage",
			bytes.NewReader(body),
		)
		if err != nil {
			return fmt.Errorf("notify: build telegram request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return fmt.Errorf("notify: telegram: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("notify: telegram: unexpected status %d", resp.StatusCode)
		}
		return nil
	})
}

func externalIDs(report map[string]any, key string) []string {
	result, _ := report["result"].(map[string]any)
	items, _ := result[key].([]any)
	var ids []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ids = append(ids, fmt.Sprint(m["externalId"]))
	}
	return ids
}

func formatDate(value string) string {
	if value == "" {
		return "—"
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func orDash(v any) any {
	if v == nil {
		return "—"
	}
	return v
}

func head(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
