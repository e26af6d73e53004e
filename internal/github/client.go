// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	custom_errors "github-sparks/internal/errors"
	"github-sparks/internal/model"
)

const (
	// PageSize is the number of search results requested per query.
	PageSize = 30

	// DefaultRatePerSecond throttles outgoing search calls. Unauthenticated
	// search allows 10 requests per minute, authenticated 30.
	DefaultRatePerSecond = 1.0

	createdDateLayout = "2006-01-02"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise instance or a test server.
func WithBaseURL(u *url.URL) Option {
	return func(c *Client) {
		if u == nil {
			return
		}
		base := *u
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		c.gh.BaseURL = &base
	}
}

// WithRateLimit sets the proactive request rate. rate.Inf disables throttling.
func WithRateLimit(perSecond rate.Limit) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(perSecond, 1)
		}
	}
}

// Client is a wrapper around the go-github client.
type Client struct {
	gh      *github.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates and configures a new Client instance.
// An empty token yields an anonymous client with a lower rate limit.
func NewClient(token string, logger *slog.Logger, opts ...Option) *Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(context.Background(), ts)
	}

	c := &Client{
		gh:      github.NewClient(hc),
		limiter: rate.NewLimiter(rate.Limit(DefaultRatePerSecond), 1),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchRepositories returns up to PageSize repositories matching topic that
// were created after createdAfter, most starred first.
// Every failure is returned as a *errors.UpstreamError.
func (c *Client) SearchRepositories(ctx context.Context, topic string, createdAfter time.Time) ([]model.Repository, error) {
	query := BuildQuery(topic, createdAfter)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &custom_errors.UpstreamError{Status: fmt.Sprintf("rate limit wait: %v", err), Err: err}
	}

	c.logger.Debug("Searching repositories", "query", query)
	result, resp, err := c.gh.Search.Repositories(ctx, query, &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: PageSize},
	})
	if err != nil {
		return nil, toUpstreamError(resp, err)
	}

	c.logger.Debug("Search rate limit", "remaining", resp.Rate.Remaining, "limit", resp.Rate.Limit, "reset", resp.Rate.Reset.Time)

	repos := make([]model.Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, toInternalRepository(r))
	}
	return repos, nil
}

// BuildQuery appends the creation date filter to the free-text topic.
func BuildQuery(topic string, createdAfter time.Time) string {
	return fmt.Sprintf("%s created:>%s", topic, createdAfter.UTC().Format(createdDateLayout))
}

func toUpstreamError(resp *github.Response, err error) error {
	if resp != nil && resp.Response != nil {
		return &custom_errors.UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Err:        err,
		}
	}
	return &custom_errors.UpstreamError{Status: err.Error(), Err: err}
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository) model.Repository {
	return model.Repository{
		ID:       r.GetID(),
		Name:     r.GetName(),
		FullName: r.GetFullName(),
		Owner: model.Owner{
			Login:     r.GetOwner().GetLogin(),
			AvatarURL: r.GetOwner().GetAvatarURL(),
		},
		HTMLURL:         r.GetHTMLURL(),
		Description:     r.GetDescription(),
		StargazersCount: r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		WatchersCount:   r.GetWatchersCount(),
		Language:        r.GetLanguage(),
		CreatedAt:       r.GetCreatedAt().Time,
		UpdatedAt:       r.GetUpdatedAt().Time,
		PushedAt:        r.GetPushedAt().Time,
	}
}
