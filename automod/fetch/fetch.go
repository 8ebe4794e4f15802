package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bluesky-social/labelbot/automod/post"
	"github.com/bluesky-social/labelbot/util"

	"github.com/carlmjohnson/versioninfo"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const DefaultHost = "https://public.api.bsky.app"

// Failure to fetch a resource. StatusCode is zero for network-level failures.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Fetches post records over XRPC from an AppView (or PDS) host, resolving handles along the way.
type Fetcher struct {
	Client    *http.Client
	Host      string
	UserAgent string
	// optional client-side rate limit on outbound requests
	Limiter *rate.Limiter
	Logger  *slog.Logger

	handles *expirable.LRU[string, string]
}

func NewFetcher(host string, logger *slog.Logger) *Fetcher {
	if host == "" {
		host = DefaultHost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		Client:    util.RobustHTTPClient(logger),
		Host:      strings.TrimSuffix(host, "/"),
		UserAgent: fmt.Sprintf("labelbot/%s", versioninfo.Short()),
		Limiter:   rate.NewLimiter(rate.Limit(10), 5),
		Logger:    logger,
		handles:   expirable.NewLRU[string, string](10_000, nil, 30*time.Minute),
	}
}

// Parses a post URL or AT-URI and fetches the post.
func (f *Fetcher) FetchPostURL(ctx context.Context, ref string) (*post.Post, error) {
	pr, err := ParsePostRef(ref)
	if err != nil {
		return nil, err
	}
	return f.FetchPost(ctx, *pr)
}

// Resolves a handle to a DID. DIDs are returned as-is.
func (f *Fetcher) ResolveHandle(ctx context.Context, handle string) (string, error) {
	handle = strings.ToLower(strings.TrimPrefix(handle, "@"))
	if strings.HasPrefix(handle, "did:") {
		return handle, nil
	}
	if f.handles != nil {
		if did, ok := f.handles.Get(handle); ok {
			return did, nil
		}
	}

	var out struct {
		Did string `json:"did"`
	}
	params := url.Values{"handle": []string{handle}}
	if err := f.getJSON(ctx, "com.atproto.identity.resolveHandle", params, &out); err != nil {
		return "", err
	}
	if !strings.HasPrefix(out.Did, "did:") {
		return "", fmt.Errorf("invalid DID in handle resolution response: %q", out.Did)
	}
	if f.handles != nil {
		f.handles.Add(handle, out.Did)
	}
	return out.Did, nil
}

func (f *Fetcher) FetchPost(ctx context.Context, ref PostRef) (*post.Post, error) {
	did, err := f.ResolveHandle(ctx, ref.Authority)
	if err != nil {
		return nil, fmt.Errorf("resolving post author: %w", err)
	}
	handle := ""
	if !strings.HasPrefix(ref.Authority, "did:") {
		handle = strings.ToLower(strings.TrimPrefix(ref.Authority, "@"))
	}

	collection := ref.Collection
	if collection == "" {
		collection = PostCollection
	}
	var out struct {
		Uri   string          `json:"uri"`
		Cid   string          `json:"cid"`
		Value json.RawMessage `json:"value"`
	}
	params := url.Values{
		"repo":       []string{did},
		"collection": []string{collection},
		"rkey":       []string{ref.RecordKey},
	}
	f.logger().Debug("fetching record", "did", did, "collection", collection, "rkey", ref.RecordKey)
	if err := f.getJSON(ctx, "com.atproto.repo.getRecord", params, &out); err != nil {
		return nil, err
	}
	if len(out.Value) == 0 {
		return nil, fmt.Errorf("empty record in getRecord response")
	}
	uri := out.Uri
	if uri == "" {
		uri = PostRef{Authority: did, Collection: collection, RecordKey: ref.RecordKey}.ATURI()
	}
	return post.FromRecordJSON(uri, out.Cid, did, handle, out.Value)
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

func (f *Fetcher) getJSON(ctx context.Context, nsid string, params url.Values, out any) error {
	u := fmt.Sprintf("%s/xrpc/%s?%s", f.Host, nsid, params.Encode())
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return &Error{URL: u, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &Error{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var xe xrpcError
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &xe) == nil && xe.Error != "" {
			return &Error{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s: %s", xe.Error, xe.Message)}
		}
		return &Error{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response status")}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
