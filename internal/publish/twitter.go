package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"

	"github.com/i474232898/weather-500-years/internal/weather"
)

const defaultTwitterHost = "https://api.twitter.com"

// TwitterCredentials are the OAuth 1.0a user-context keys of the posting account.
type TwitterCredentials struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
}

func (c TwitterCredentials) complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// noopAuthorizer satisfies twitter.Authorizer; requests are signed by the oauth1 transport.
type noopAuthorizer struct{}

func (noopAuthorizer) Add(*http.Request) {}

// TwitterPublisher posts a message as a single tweet.
type TwitterPublisher struct {
	client *twitter.Client
}

// NewTwitterPublisher builds an OAuth1-signed client. base, if non-nil, supplies the
// underlying transport and timeout.
func NewTwitterPublisher(creds TwitterCredentials, base *http.Client) (*TwitterPublisher, error) {
	if !creds.complete() {
		return nil, fmt.Errorf("%w: twitter credentials are not configured", weather.ErrPublish)
	}

	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, base)
	}
	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	httpClient := config.Client(ctx, oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret))
	if base != nil {
		httpClient.Timeout = base.Timeout
	}

	return &TwitterPublisher{
		client: &twitter.Client{
			Authorizer: noopAuthorizer{},
			Client:     httpClient,
			Host:       defaultTwitterHost,
		},
	}, nil
}

// Publish creates one tweet. Any failure, including authentication and rate-limit
// rejections, is returned as weather.ErrPublish with the API's message; nothing is retried.
func (p *TwitterPublisher) Publish(ctx context.Context, text string) (Result, error) {
	resp, err := p.client.CreateTweet(ctx, twitter.CreateTweetRequest{Text: text})
	if err != nil {
		var apiErr *twitter.ErrorResponse
		if errors.As(err, &apiErr) {
			log.Printf("ERROR: twitter rejected post with status %d", apiErr.StatusCode)
		}
		return Result{}, fmt.Errorf("%w: create tweet: %v", weather.ErrPublish, err)
	}
	if resp == nil || resp.Tweet == nil {
		return Result{}, fmt.Errorf("%w: create tweet: empty response", weather.ErrPublish)
	}

	return Result{
		Posted: true,
		PostID: resp.Tweet.ID,
		URL:    "https://x.com/i/web/status/" + resp.Tweet.ID,
	}, nil
}
