// Package dingtalk implements the group-robot webhook client: one signed
// markdown POST per notification, no retries.
package dingtalk

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
)

const DefaultBaseURL = "https://oapi.dingtalk.com"

// ErrMissingCredentials is returned when accessToken or secret is not
// configured; no HTTP call is attempted in that case.
var ErrMissingCredentials = errors.New("accessToken or secret is not configured")

// Client posts markdown messages to a DingTalk group robot webhook.
type Client struct {
	baseURL     string
	accessToken string
	secret      string

	atAll     bool
	atMobiles []string

	http *http.Client
	now  func() time.Time
}

type Option func(*Client)

// WithBaseURL overrides the webhook host (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client for the given credentials and mention directives.
func New(accessToken, secret string, atAll bool, atMobiles []string, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		accessToken: accessToken,
		secret:      secret,
		atAll:       atAll,
		atMobiles:   atMobiles,
		http:        &http.Client{Timeout: 10 * time.Second},
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type message struct {
	MsgType  string   `json:"msgtype"`
	Markdown markdown `json:"markdown"`
	At       at       `json:"at"`
}

type markdown struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type at struct {
	AtMobiles []string `json:"atMobiles"`
	IsAtAll   bool     `json:"isAtAll"`
}

type robotResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Send signs and posts one markdown message. errcode 0 from the robot API is
// success; anything else, and any transport failure, is returned as an error
// for the caller to log. There is exactly one attempt per call.
func (c *Client) Send(ctx context.Context, title, body string) error {
	if c.accessToken == "" || c.secret == "" {
		return ErrMissingCredentials
	}

	ts := c.now().UnixMilli()
	sig := sign(c.secret, ts)

	msg := message{
		MsgType:  "markdown",
		Markdown: markdown{Title: title, Text: withMentionMarkers(body, c.atAll, c.atMobiles)},
		At:       at{AtMobiles: mobiles(c.atMobiles), IsAtAll: c.atAll},
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/robot/send?access_token=%s&timestamp=%d&sign=%s",
		c.baseURL, url.QueryEscape(c.accessToken), ts, url.QueryEscape(sig))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	var rr robotResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&rr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if rr.ErrCode != 0 {
		return fmt.Errorf("robot errcode %d: %s", rr.ErrCode, rr.ErrMsg)
	}
	return nil
}

// withMentionMarkers appends a comment-style mention line for mobiles that
// are not already @-mentioned in the body, so the chat client pings them
// without a visible duplicate.
func withMentionMarkers(body string, atAll bool, atMobiles []string) string {
	if atAll || len(atMobiles) == 0 {
		return body
	}
	missing := make([]string, 0, len(atMobiles))
	for _, m := range atMobiles {
		if !strings.Contains(body, "@"+m) {
			missing = append(missing, "@"+m)
		}
	}
	if len(missing) == 0 {
		return body
	}
	return body + "\n\n<!-- " + strings.Join(missing, " ") + " -->"
}

// mobiles keeps the at block's list non-nil so it encodes as [].
func mobiles(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
