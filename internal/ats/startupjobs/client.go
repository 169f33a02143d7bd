package startupjobs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"applysync/internal/ats/util"
	"applysync/internal/domain"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.startupjobs.cz/company"

	// filterLayout is what the created_at.gt filter expects.
	filterLayout = "2006-01-02T15:04:05"

	maxAttachmentBytes = 25 << 20
)

// maxPages bounds a listing walk; reaching it is an error rather than a
// partial result.
var maxPages = 1000

type Config struct {
	BaseURL string
	Token   string
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	log     *zap.Logger
}

func New(cfg Config, limiter *util.HostLimiter, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		log:     log.Named("startupjobs"),
	}
}

func (c *Client) Name() string { return "startupjobs" }

// ListApplications returns application summaries created after since (a
// source timestamp; empty means everything). Pages are requested until one
// comes back empty or repeats only ids already seen.
func (c *Client) ListApplications(ctx context.Context, since string) ([]domain.SourceApplication, error) {
	q := url.Values{}
	if strings.TrimSpace(since) != "" {
		t, err := domain.ParseCreatedAt(since)
		if err != nil {
			return nil, fmt.Errorf("startupjobs list applications: %w", err)
		}
		q.Set("created_at.gt", t.Format(filterLayout))
	}

	seen := map[string]bool{}
	var out []domain.SourceApplication
	for page := 1; ; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("startupjobs list applications: no empty page after %d pages", maxPages)
		}
		q.Set("page", strconv.Itoa(page))
		var batch []wireApplication
		if err := c.getJSON(ctx, c.cfg.BaseURL+"/applications?"+q.Encode(), &batch); err != nil {
			return nil, fmt.Errorf("startupjobs list applications page %d: %w", page, err)
		}
		fresh := 0
		for _, w := range batch {
			app := w.toDomain()
			if app.ID == "" || seen[app.ID] {
				continue
			}
			seen[app.ID] = true
			out = append(out, app)
			fresh++
		}
		if fresh == 0 {
			break
		}
	}
	c.log.Debug("applications listed", zap.Int("count", len(out)), zap.String("since", since))
	return out, nil
}

func (c *Client) FetchApplicationDetail(ctx context.Context, id string) (domain.SourceApplication, error) {
	var w wireApplication
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/applications/"+url.PathEscape(id), &w); err != nil {
		return domain.SourceApplication{}, fmt.Errorf("startupjobs application %s: %w", id, err)
	}
	app := w.toDomain()
	if app.ID == "" {
		app.ID = id
	}
	return app, nil
}

// FetchAttachmentEncoded downloads an attachment and returns it base64 encoded.
func (c *Client) FetchAttachmentEncoded(ctx context.Context, rawURL string) (string, error) {
	res, err := c.get(ctx, rawURL, "*/*")
	if err != nil {
		return "", fmt.Errorf("startupjobs attachment: %w", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxAttachmentBytes+1))
	if err != nil {
		return "", fmt.Errorf("startupjobs read attachment: %w", err)
	}
	if len(b) > maxAttachmentBytes {
		return "", fmt.Errorf("startupjobs attachment %s exceeds %s", rawURL, humanize.Bytes(maxAttachmentBytes))
	}
	c.log.Debug("attachment fetched", zap.String("url", rawURL), zap.String("size", humanize.Bytes(uint64(len(b)))))
	return base64.StdEncoding.EncodeToString(b), nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	res, err := c.get(ctx, u, "application/json")
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("startupjobs decode: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "applysync/1.0")
	req.Header.Set("Accept", accept)
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	if err := c.limiter.WaitURL(ctx, u); err != nil {
		return nil, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("startupjobs get: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		res.Body.Close()
		return nil, &APIError{StatusCode: res.StatusCode, Message: strings.TrimSpace(string(b)), URL: req.URL.Redacted()}
	}
	return res, nil
}
