package fetch

import (
	"fmt"
	"net/url"
	"strings"
)

const PostCollection = "app.bsky.feed.post"

// Points at a single post record. Authority is a handle or DID.
type PostRef struct {
	Authority  string
	Collection string
	RecordKey  string
}

func (r PostRef) ATURI() string {
	return fmt.Sprintf("at://%s/%s/%s", r.Authority, r.Collection, r.RecordKey)
}

// Parses either an AT-URI ("at://{authority}/app.bsky.feed.post/{rkey}") or a web URL ("https://bsky.app/profile/{authority}/post/{rkey}").
func ParsePostRef(raw string) (*PostRef, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "at://") {
		parts := strings.Split(strings.TrimPrefix(raw, "at://"), "/")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("need a full, not partial, AT-URI: %s", raw)
		}
		if parts[1] != PostCollection {
			return nil, fmt.Errorf("AT-URI is not a post (collection %s): %s", parts[1], raw)
		}
		return &PostRef{Authority: parts[0], Collection: parts[1], RecordKey: parts[2]}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing post URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported post reference: %s", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "profile" || parts[2] != "post" || parts[1] == "" || parts[3] == "" {
		return nil, fmt.Errorf("expected a /profile/{handle}/post/{rkey} URL: %s", raw)
	}
	return &PostRef{Authority: parts[1], Collection: PostCollection, RecordKey: parts[3]}, nil
}
