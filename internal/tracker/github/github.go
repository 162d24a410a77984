// Package github implements tracker.API against the real GitHub Issues
// API using google/go-github, the same library this corpus already
// depends on for tracker integrations.
package github

import (
	"context"
	"fmt"
	"net/http"
	"os"

	gogithub "github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// TokenEnvVar is the environment variable stalkr reads the GitHub token
// from; there is no command-line option for the token.
const TokenEnvVar = "STALKR_GITHUB_TOKEN"

// Client implements tracker.API against github.com/{owner}/{repo}.
type Client struct {
	owner, repo string
	gh          *gogithub.Client
}

// New constructs a Client authenticated with token (an empty token is
// permitted only when the caller only intends to call IssueIsClosed
// against a public repository).
func New(owner, repo, token string) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	gh := gogithub.NewClient(httpClient)
	gh.UserAgent = "stalkr-todo-bot"
	return &Client{owner: owner, repo: repo, gh: gh}
}

// TokenFromEnv returns the token configured via TokenEnvVar, if any.
func TokenFromEnv() (string, bool) {
	v := os.Getenv(TokenEnvVar)
	return v, v != ""
}

// ProjectURL implements tracker.API.
func (c *Client) ProjectURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", c.owner, c.repo)
}

// PostIssue implements tracker.API.
func (c *Client) PostIssue(ctx context.Context, title, body string) (int, error) {
	req := &gogithub.IssueRequest{Title: &title, Body: &body}
	issue, resp, err := c.gh.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		logTrackerError(resp, err)
		return 0, fmt.Errorf("github: create issue: %w", err)
	}
	if issue.Number == nil {
		return 0, fmt.Errorf("github: create issue: response had no issue number")
	}
	return *issue.Number, nil
}

// IssueIsClosed implements tracker.API.
func (c *Client) IssueIsClosed(ctx context.Context, number int) (bool, error) {
	issue, resp, err := c.gh.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		logTrackerError(resp, err)
		return false, fmt.Errorf("github: get issue #%d: %w", number, err)
	}
	return issue.State != nil && *issue.State == "closed", nil
}

func logTrackerError(resp *gogithub.Response, err error) {
	if resp == nil {
		fmt.Fprintf(os.Stderr, "github: network error: %v\n", err)
		return
	}
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		fmt.Fprintf(os.Stderr, "github: rate limited (status %d), remaining=%d reset=%s\n",
			resp.StatusCode, resp.Rate.Remaining, resp.Rate.Reset.String())
	default:
		fmt.Fprintf(os.Stderr, "github: request failed with status %d: %v\n", resp.StatusCode, err)
	}
}
