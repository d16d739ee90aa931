// Package gastroapi is the HTTP client for the restaurant REST backend.
// It covers the feeds the calendar and print views consume: opening
// hours, slot availability, reservations, tables and table occupancy.
package gastroapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carlsburger/GastroCore-sub003/internal/models"
)

// ErrNoToken is returned before any request is sent when the client has
// no bearer token configured.
var ErrNoToken = errors.New("missing bearer token")

// Client calls the restaurant backend REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	limiter  *rate.Limiter
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for the given base URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseRateLimit bounds outbound requests per second with the given burst.
func (c *Client) UseRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 || burst <= 0 {
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// SetTimeout overrides the default HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
}

// GetOpeningHours fetches the opening-hours feed for a date range (inclusive).
func (c *Client) GetOpeningHours(ctx context.Context, from, to string) ([]models.DayAvailability, error) {
	endpoint := fmt.Sprintf("%s/api/opening-hours?from=%s&to=%s",
		c.baseURL, url.QueryEscape(from), url.QueryEscape(to))
	cacheKey := fmt.Sprintf("hours:%s:%s", from, to)

	var wrap struct {
		Days []models.DayAvailability `json:"days"`
	}
	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.Days, nil
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, fmt.Errorf("opening hours: %w", err)
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.Days, nil
}

// GetSlotDays fetches the slot-availability feed for a date range (inclusive).
func (c *Client) GetSlotDays(ctx context.Context, from, to string) ([]models.DaySlots, error) {
	endpoint := fmt.Sprintf("%s/api/slots?from=%s&to=%s",
		c.baseURL, url.QueryEscape(from), url.QueryEscape(to))
	cacheKey := fmt.Sprintf("slots:%s:%s", from, to)

	var wrap struct {
		Days []models.DaySlots `json:"days"`
	}
	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.Days, nil
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, fmt.Errorf("slots: %w", err)
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.Days, nil
}

// GetReservations fetches reservations for a single date. The backend
// returns either a bare array or an {items:[...]} wrapper; both shapes
// are accepted.
func (c *Client) GetReservations(ctx context.Context, date string) ([]models.Reservation, error) {
	endpoint := fmt.Sprintf("%s/api/reservations?date=%s", c.baseURL, url.QueryEscape(date))

	var raw json.RawMessage
	if err := c.doGet(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("reservations %s: %w", date, err)
	}
	return decodeReservations(raw)
}

// GetTables fetches all tables. Records are normalized on the way in so
// the hard table rules hold no matter what the backend sent.
func (c *Client) GetTables(ctx context.Context) ([]models.Table, error) {
	endpoint := fmt.Sprintf("%s/api/tables", c.baseURL)
	cacheKey := "tables"

	var wrap struct {
		Tables []models.Table `json:"tables"`
	}
	if !c.readCache(ctx, cacheKey, &wrap) {
		if err := c.doGet(ctx, endpoint, &wrap); err != nil {
			return nil, fmt.Errorf("tables: %w", err)
		}
		c.writeCache(ctx, cacheKey, wrap)
	}

	for i := range wrap.Tables {
		wrap.Tables[i].Normalize()
	}
	return wrap.Tables, nil
}

// GetOccupancy fetches the occupancy snapshot for a date and time slot.
func (c *Client) GetOccupancy(ctx context.Context, date, slot string) ([]models.OccupancyEntry, error) {
	endpoint := fmt.Sprintf("%s/api/occupancy?date=%s&time=%s",
		c.baseURL, url.QueryEscape(date), url.QueryEscape(slot))

	var wrap struct {
		Occupancy []models.OccupancyEntry `json:"occupancy"`
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, fmt.Errorf("occupancy %s %s: %w", date, slot, err)
	}
	return wrap.Occupancy, nil
}

func decodeReservations(raw json.RawMessage) ([]models.Reservation, error) {
	var list []models.Reservation
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrap struct {
		Items []models.Reservation `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrap); err != nil {
		return nil, fmt.Errorf("unexpected reservations payload: %w", err)
	}
	return wrap.Items, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	if c.token == "" {
		return ErrNoToken
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
