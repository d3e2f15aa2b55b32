package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrSchema marks a response whose shape does not match the expected schema.
var ErrSchema = errors.New("unexpected response schema")

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("coingecko error: status %d: %s", e.StatusCode, e.Body)
}

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
	}
}

// GetMarkets fetches the first page of coins ordered by market cap.
func (c *RESTClient) GetMarkets(ctx context.Context, perPage int) ([]MarketCoin, error) {
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	params := url.Values{}
	params.Add("vs_currency", VsCurrency)
	params.Add("order", "market_cap_desc")
	params.Add("per_page", strconv.Itoa(perPage))
	params.Add("page", "1")
	params.Add("sparkline", "false")
	endpoint := c.baseURL + "/coins/markets?" + params.Encode()

	var coins []MarketCoin
	if err := c.getJSON(ctx, endpoint, &coins); err != nil {
		return nil, err
	}

	// Validate every entry before handing it to the caller
	for i := range coins {
		if err := c.validate.Struct(coins[i]); err != nil {
			return nil, fmt.Errorf("%w: coin %d: %v", ErrSchema, i, err)
		}
	}

	return coins, nil
}

// GetMarketChart fetches the USD price history of one coin for the given days.
func (c *RESTClient) GetMarketChart(ctx context.Context, id string, days ChartDays) (*MarketChart, error) {
	if !days.IsValid() {
		return nil, fmt.Errorf("invalid chart days: %s", days)
	}

	params := url.Values{}
	params.Add("vs_currency", VsCurrency)
	params.Add("days", string(days))
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(id), params.Encode())

	var chart MarketChart
	if err := c.getJSON(ctx, endpoint, &chart); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(chart); err != nil {
		return nil, fmt.Errorf("%w: market chart %s: %v", ErrSchema, id, err)
	}

	return &chart, nil
}

func (c *RESTClient) getJSON(ctx context.Context, endpoint string, out any) error {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: errorMessage(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrSchema, err)
	}
	return nil
}

// errorMessage extracts the message of a CoinGecko error body, falling back to the raw body.
func errorMessage(body []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Status.ErrorMessage != "" {
			return e.Status.ErrorMessage
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return string(body)
}
