// Package bluesky provides a minimal AT Protocol client used for two jobs:
// quote-posting discovered Bluesky embeds back to Bluesky, and resolving
// DIDs to human-readable handles via the PLC directory.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kmichalik/embedtrace"
)

const defaultPDS = "https://bsky.social"

// Ensure Client implements embedtrace.Reposter at compile time.
var _ embedtrace.Reposter = (*Client)(nil)

// Client is a minimal Bluesky/AT Protocol API client for posting quote
// skeets about discovered embeds.
type Client struct {
	pds        string
	httpClient *http.Client
	logger     *slog.Logger

	identifier string
	password   string

	// feedNames maps article domains to friendly publication names used
	// in the post text. Unknown domains fall back to the raw domain.
	feedNames map[string]string

	// populated after login
	accessJwt string
	did       string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPDS overrides the PDS host. Defaults to https://bsky.social.
func WithPDS(pds string) ClientOption {
	return func(c *Client) {
		c.pds = pds
	}
}

// WithFeedNames sets the domain-to-publication-name map used when
// formatting post text.
func WithFeedNames(names map[string]string) ClientOption {
	return func(c *Client) {
		c.feedNames = names
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Bluesky API client. Use an App Password, not the
// account password. Login happens lazily on the first post.
func NewClient(identifier, password string, opts ...ClientOption) *Client {
	c := &Client{
		pds:        defaultPDS,
		identifier: identifier,
		password:   password,
		logger:     slog.Default(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostQuote publishes a quote post referencing the discovered Bluesky post,
// with a clickable link facet back to the article that embedded it.
func (c *Client) PostQuote(ctx context.Context, req embedtrace.QuoteRequest) error {
	if err := c.login(ctx); err != nil {
		return err
	}

	uri, cid, err := c.fetchRecordRef(ctx, req.PostURL)
	if err != nil {
		return err
	}

	record := c.quoteRecord(uri, cid, req)

	body := createRecordRequest{
		Repo:       c.did,
		Collection: "app.bsky.feed.post",
		Record:     record,
	}

	var resp createRecordResponse
	if err := c.post(ctx, "/xrpc/com.atproto.repo.createRecord", body, &resp); err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	if resp.URI == "" {
		return embedtrace.Errorf(embedtrace.EINTERNAL, "post response missing URI")
	}

	c.logger.Info("posted quote", "uri", resp.URI, "quoted", req.PostURL)
	return nil
}

// login authenticates with the PDS and stores the session token. Calling it
// again after a successful login is a no-op.
func (c *Client) login(ctx context.Context) error {
	if c.accessJwt != "" {
		return nil
	}
	if c.identifier == "" || c.password == "" {
		return embedtrace.Errorf(embedtrace.EINVALID, "bluesky credentials required")
	}

	body := map[string]string{
		"identifier": c.identifier,
		"password":   c.password,
	}

	var resp createSessionResponse
	if err := c.post(ctx, "/xrpc/com.atproto.server.createSession", body, &resp); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	c.accessJwt = resp.AccessJwt
	c.did = resp.DID
	c.logger.Info("connected to bluesky", "handle", c.identifier)
	return nil
}

// fetchRecordRef resolves a bsky.app post URL to the (uri, cid) pair
// required by a quote embed, via com.atproto.repo.getRecord.
func (c *Client) fetchRecordRef(ctx context.Context, postURL string) (uri, cid string, err error) {
	repo, rkey, err := splitPostURL(postURL)
	if err != nil {
		return "", "", err
	}

	query := url.Values{}
	query.Set("repo", repo)
	query.Set("collection", "app.bsky.feed.post")
	query.Set("rkey", rkey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.pds+"/xrpc/com.atproto.repo.getRecord?"+query.Encode(), nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessJwt)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", embedtrace.Errorf(embedtrace.EUNAVAILABLE, "API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var record getRecordResponse
	if err := json.Unmarshal(respBody, &record); err != nil {
		return "", "", fmt.Errorf("unmarshal response: %w", err)
	}
	if record.URI == "" || record.CID == "" {
		return "", "", embedtrace.Errorf(embedtrace.ENOTFOUND, "no record found for %s", postURL)
	}
	return record.URI, record.CID, nil
}

// quoteRecord builds the app.bsky.feed.post record for a quote. The article
// link is made clickable through a byte-offset link facet.
func (c *Client) quoteRecord(uri, cid string, req embedtrace.QuoteRequest) postRecord {
	feedName := req.ArticleDomain
	if name, ok := c.feedNames[req.ArticleDomain]; ok {
		feedName = name
	}

	text := fmt.Sprintf("Quoted by %s → %s %s", feedName, req.ArticleTitle, req.ArticleURL)

	linkStart := strings.Index(text, req.ArticleURL)
	linkEnd := linkStart + len(req.ArticleURL)

	return postRecord{
		Type: "app.bsky.feed.post",
		Text: text,
		Facets: []facet{{
			Index: facetIndex{ByteStart: linkStart, ByteEnd: linkEnd},
			Features: []facetFeature{{
				Type: "app.bsky.richtext.facet#link",
				URI:  req.ArticleURL,
			}},
		}},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Embed: &recordEmbed{
			Type:   "app.bsky.embed.record",
			Record: recordRef{URI: uri, CID: cid},
		},
	}
}

// splitPostURL extracts the repo (handle or DID) and record key from a
// https://bsky.app/profile/{repo}/post/{rkey} URL.
func splitPostURL(postURL string) (repo, rkey string, err error) {
	parts := strings.Split(strings.TrimRight(postURL, "/"), "/")
	if len(parts) < 3 || parts[len(parts)-2] != "post" {
		return "", "", embedtrace.Errorf(embedtrace.EINVALID, "invalid post URL format: %s", postURL)
	}
	return parts[len(parts)-3], parts[len(parts)-1], nil
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pds+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJwt)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return embedtrace.Errorf(embedtrace.EUNAVAILABLE, "API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

type createSessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
}

type createRecordRequest struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	Record     any    `json:"record"`
}

type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

type getRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

type postRecord struct {
	Type      string       `json:"$type"`
	Text      string       `json:"text"`
	Facets    []facet      `json:"facets,omitempty"`
	CreatedAt string       `json:"createdAt"`
	Embed     *recordEmbed `json:"embed,omitempty"`
}

type facet struct {
	Index    facetIndex     `json:"index"`
	Features []facetFeature `json:"features"`
}

type facetIndex struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

type facetFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri"`
}

type recordEmbed struct {
	Type   string    `json:"$type"`
	Record recordRef `json:"record"`
}

type recordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}
