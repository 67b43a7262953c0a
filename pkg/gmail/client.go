package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const user = "me"

// Client wraps the Gmail API service for read-only message access.
type Client struct {
	srv *gmail.Service
}

// NewClient creates a Gmail client from OAuth Desktop credentials plus a
// previously authorized token file. Run scripts/gcal-auth once to produce
// the token file.
func NewClient(ctx context.Context, credentialsPath, tokenPath string) (*Client, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("no authorized token at %q: %w", tokenPath, err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// NewClientFromHTTP creates a Gmail client from a pre-configured HTTP client.
func NewClientFromHTTP(ctx context.Context, httpClient *http.Client) (*Client, error) {
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// ListMessages returns up to maxResults message summaries matching the Gmail
// search query, newest first.
func (c *Client) ListMessages(ctx context.Context, query string, maxResults int64) ([]MessageSummary, error) {
	resp, err := c.srv.Users.Messages.List(user).
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("gmail list failed: %w", err)
	}

	summaries := make([]MessageSummary, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		summaries = append(summaries, MessageSummary{ID: m.Id})
	}
	return summaries, nil
}

// GetMessage fetches a message in full format and maps it to the local
// FullMessage shape.
func (c *Client) GetMessage(ctx context.Context, id string) (*FullMessage, error) {
	msg, err := c.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail get %s failed: %w", id, err)
	}

	full := &FullMessage{
		ID:      msg.Id,
		Headers: map[string][]string{},
		Snippet: msg.Snippet,
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			key := strings.ToLower(h.Name)
			full.Headers[key] = append(full.Headers[key], h.Value)
		}
		full.Payload = mapPart(msg.Payload)
	}
	return full, nil
}

func mapPart(p *gmail.MessagePart) *BodyPart {
	if p == nil {
		return nil
	}
	part := &BodyPart{MimeType: p.MimeType}
	if p.Body != nil {
		part.Data = p.Body.Data
	}
	for _, child := range p.Parts {
		part.Parts = append(part.Parts, mapPart(child))
	}
	return part
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
