package jazzhr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"applysync/internal/ats/util"
	"applysync/internal/domain"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.resumatorapi.com/v1"

// maxPages bounds a listing walk; reaching it is an error rather than a
// partial result.
var maxPages = 10000

// Notes are posted anonymously and visible to all users.
const (
	noteUserID   = "usr_anonymous"
	noteSecurity = 1
)

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
		log:     log.Named("jazzhr"),
	}
}

func (c *Client) Name() string { return "jazzhr" }

type wireJob struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListOpenSlots returns the open job postings.
func (c *Client) ListOpenSlots(ctx context.Context) ([]domain.Slot, error) {
	raw, err := c.get(ctx, "/jobs/status/open")
	if err != nil {
		return nil, fmt.Errorf("jazzhr list open jobs: %w", err)
	}
	var jobs []wireJob
	if err := decodeList(raw, &jobs); err != nil {
		return nil, fmt.Errorf("jazzhr decode jobs: %w", err)
	}
	out := make([]domain.Slot, 0, len(jobs))
	for _, j := range jobs {
		if strings.TrimSpace(j.ID) == "" {
			continue
		}
		out = append(out, domain.Slot{ID: j.ID, Title: j.Title})
	}
	return out, nil
}

// ListCrossReferences walks /applicants2jobs page by page until the first
// empty page, or a page holding only records already seen.
func (c *Client) ListCrossReferences(ctx context.Context) ([]domain.CrossReference, error) {
	var out []domain.CrossReference
	seen := map[string]bool{}
	for page := 1; ; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("jazzhr list applicants2jobs: no empty page after %d pages", maxPages)
		}
		raw, err := c.get(ctx, fmt.Sprintf("/applicants2jobs/page/%d", page))
		if err != nil {
			return nil, fmt.Errorf("jazzhr list applicants2jobs page %d: %w", page, err)
		}
		var records []domain.CrossReference
		if err := decodeList(raw, &records); err != nil {
			return nil, fmt.Errorf("jazzhr decode applicants2jobs page %d: %w", page, err)
		}
		fresh := 0
		for _, rec := range records {
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			out = append(out, rec)
			fresh++
		}
		if fresh == 0 {
			break
		}
	}
	c.log.Debug("cross references listed", zap.Int("count", len(out)))
	return out, nil
}

func (c *Client) FetchApplicantDetail(ctx context.Context, id string) (domain.ApplicantDetail, error) {
	var d domain.ApplicantDetail
	raw, err := c.get(ctx, "/applicants/"+url.PathEscape(id))
	if err != nil {
		return d, fmt.Errorf("jazzhr applicant %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("jazzhr decode applicant %s: %w", id, err)
	}
	if d.ID == "" {
		d.ID = id
	}
	return d, nil
}

// CreateApplicant posts p and returns the new applicant id. An inline
// `_error` answer is returned as *domain.ResolvableError.
func (c *Client) CreateApplicant(ctx context.Context, p domain.ApplicantPayload) (string, error) {
	var res struct {
		ProspectID string `json:"prospect_id"`
	}
	if err := c.post(ctx, "/applicants", p, &res); err != nil {
		return "", err
	}
	if res.ProspectID == "" {
		return "", fmt.Errorf("jazzhr create applicant: response carried no prospect_id")
	}
	return res.ProspectID, nil
}

func (c *Client) CreateNote(ctx context.Context, applicantID, contents string) error {
	p := domain.NotePayload{
		ApplicantID: applicantID,
		Contents:    contents,
		UserID:      noteUserID,
		Security:    noteSecurity,
	}
	return c.post(ctx, "/notes", p, nil)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("jazzhr build request %s: %w", path, err)
	}
	// set after parsing so the key never shows up in a parse error
	req.URL.RawQuery = "apikey=" + url.QueryEscape(c.cfg.Token)
	req.Header.Set("User-Agent", "applysync/1.0")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, path)
	if err != nil {
		return nil, err
	}
	if msg := inlineError(body); msg != "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: msg, URL: c.cfg.BaseURL + path}
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := withAPIKey(payload, c.cfg.Token)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("jazzhr build request %s: %w", path, err)
	}
	req.Header.Set("User-Agent", "applysync/1.0")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	raw, err := c.do(req, path)
	if err != nil {
		return err
	}
	if msg := inlineError(raw); msg != "" {
		c.log.Warn("inline error", zap.String("path", path), zap.String("error", msg))
		return &domain.ResolvableError{Message: msg}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("jazzhr decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	if err := c.limiter.WaitURL(req.Context(), req.URL.String()); err != nil {
		return nil, err
	}
	c.log.Debug("request", zap.String("method", req.Method), zap.String("path", path))

	res, err := c.hc.Do(req)
	if err != nil {
		// *url.Error repeats the full URL, api key included
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("jazzhr %s %s: %w", req.Method, path, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("jazzhr read %s: %w", path, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := strings.TrimSpace(string(b))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		return nil, &APIError{StatusCode: res.StatusCode, Message: msg, URL: c.cfg.BaseURL + path}
	}
	return b, nil
}

// withAPIKey merges the api key into the JSON body, which is where JazzHR
// expects it on writes.
func withAPIKey(payload any, token string) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jazzhr encode payload: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("jazzhr encode payload: %w", err)
	}
	m["apikey"] = token
	return json.Marshal(m)
}

func inlineError(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var envelope struct {
		Error any `json:"_error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.Error == nil {
		return ""
	}
	switch v := envelope.Error.(type) {
	case string:
		return v
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// decodeList accepts a JSON array or, for single-result listings, a bare object.
func decodeList[T any](raw []byte, out *[]T) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*out = nil
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*out = []T{one}
	return nil
}
