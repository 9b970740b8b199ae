package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// Provider is what the synchronizer needs from the leaderboard feed.
type Provider interface {
	GetSchedule(ctx context.Context, year string) (*Schedule, error)
	GetTournament(ctx context.Context, tournID string) (*Tournament, error)
	GetLeaderboard(ctx context.Context, tournID, year string) (*Leaderboard, error)
}

// Client talks to the RapidAPI live-golf-data API. Requests are rate
// limited, retried with exponential backoff, and run behind a circuit
// breaker so a misbehaving feed trips fast instead of stalling every sync.
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger
	apiKey     string
	apiHost    string
	baseURL    string
	orgID      string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	retries    int
}

// NewClient creates a feed client. requestsPerMinute bounds the call rate;
// breakerThreshold is the consecutive-failure count that opens the circuit.
func NewClient(apiKey string, timeout time.Duration, requestsPerMinute, breakerThreshold int, logger *logrus.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "live-golf-feed",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(breakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Feed circuit breaker state change")
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		apiKey:     apiKey,
		apiHost:    "live-golf-data.p.rapidapi.com",
		baseURL:    "https://live-golf-data.p.rapidapi.com",
		orgID:      "1", // PGA Tour
		limiter:    rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
		breaker:    breaker,
		retries:    3,
	}
}

// GetSchedule fetches the season schedule.
func (c *Client) GetSchedule(ctx context.Context, year string) (*Schedule, error) {
	var schedule Schedule
	params := url.Values{"year": {year}}
	if err := c.get(ctx, "/schedule", params, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GetTournament fetches one tournament's status and metadata.
func (c *Client) GetTournament(ctx context.Context, tournID string) (*Tournament, error) {
	var tournament Tournament
	params := url.Values{"tournId": {tournID}}
	if err := c.get(ctx, "/tournament", params, &tournament); err != nil {
		return nil, err
	}
	return &tournament, nil
}

// GetLeaderboard fetches the full leaderboard for a tournament.
func (c *Client) GetLeaderboard(ctx context.Context, tournID, year string) (*Leaderboard, error) {
	var leaderboard Leaderboard
	params := url.Values{"tournId": {tournID}, "year": {year}}
	if err := c.get(ctx, "/leaderboard", params, &leaderboard); err != nil {
		return nil, err
	}
	return &leaderboard, nil
}

// get runs one feed request through the limiter and breaker. All failures
// come back wrapped in utils.ErrFeedUnavailable so the synchronizer can
// abort the run without inspecting transport details.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, target interface{}) error {
	params.Set("orgId", c.orgID)
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrFeedUnavailable, err)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doWithRetry(ctx, requestURL)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", utils.ErrFeedUnavailable, endpoint, err)
	}

	if err := json.Unmarshal(body.([]byte), target); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", utils.ErrFeedUnavailable, endpoint, err)
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, requestURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			c.logger.WithField("wait", wait).Warnf("Feed request failed (attempt %d), retrying: %v", attempt, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := readBody(resp)
		switch {
		case readErr != nil:
			lastErr = readErr
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("invalid API credentials")
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limit exceeded")
		default:
			lastErr = fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.retries, lastErr)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return buf, nil
}
