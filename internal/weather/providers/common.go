package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/i474232898/weather-500-years/internal/weather"
	"github.com/sony/gobreaker"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// newCircuit returns the breaker shared by every call of one provider.
func newCircuit(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes a single attempt of the HTTP request behind a circuit breaker.
// Transport failures wrap weather.ErrNetwork; non-2xx statuses wrap weather.ErrWeatherAPI.
// There is no retry: a failed attempt is returned to the caller as is.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrNetwork, ctx.Err())
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrNetwork, execErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		reason := apiReason(resp)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %w%s", weather.ErrWeatherAPI, errRateLimited, reason)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %w: %d%s", weather.ErrWeatherAPI, errServerError, resp.StatusCode, reason)
		default:
			return nil, fmt.Errorf("%w: %w: %d%s", weather.ErrWeatherAPI, errUnexpected, resp.StatusCode, reason)
		}
	})
	if err != nil {
		// If circuit is open, nothing was sent.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", weather.ErrNetwork, errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// apiReason extracts Open-Meteo's {"error":true,"reason":"..."} message, if any.
func apiReason(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Reason == "" {
		return ""
	}
	return " (" + payload.Reason + ")"
}

// decodeBody decodes a JSON body, reporting malformed payloads as weather.ErrWeatherAPI.
func decodeBody(provider string, resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: malformed response: %v", weather.ErrWeatherAPI, provider, err)
	}
	return nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%f", v)
}
