// Package tracking talks to the logistics tracking system: it pulls
// cargo records keyed by case code and builds the lookup index used to
// cross-reference extracted codes against shipments.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hvdcmap/internal"
	"hvdcmap/internal/config"
	"hvdcmap/internal/util"
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type scrollPayload struct {
	Records  []map[string]any `json:"records"`
	ScrollID *string          `json:"scrollId"`
	Total    *int             `json:"total"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TrackingTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.TrackingRateLimitRPS),
	}
}

func (c *Client) GetCargoRecordsAll(ctx context.Context) ([]internal.CargoRecord, error) {
	return c.getCargoScroll(ctx, map[string]string{})
}

func (c *Client) GetCargoRecordsIncremental(ctx context.Context, mode string) ([]internal.CargoRecord, error) {
	params := map[string]string{}
	switch mode {
	case "day":
		params["day"] = strconv.Itoa(c.cfg.TrackingLookbackDays)
	case "hour":
		params["hour"] = strconv.Itoa(c.cfg.TrackingLookbackHours)
	default:
		return nil, fmt.Errorf("unsupported incremental mode: %s", mode)
	}
	return c.getCargoScroll(ctx, params)
}

func (c *Client) getCargoScroll(ctx context.Context, params map[string]string) ([]internal.CargoRecord, error) {
	all := make([]internal.CargoRecord, 0)
	seen := map[string]struct{}{}
	var scrollID string

	for {
		query := map[string]string{}
		for k, v := range params {
			query[k] = v
		}
		if scrollID != "" {
			query["scrollId"] = scrollID
		}

		body, err := c.fetchJSON(ctx, "cargo/scroll", query)
		if err != nil {
			return nil, err
		}

		var payload scrollPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}

		for _, raw := range payload.Records {
			record, err := toCargoRecord(raw)
			if err != nil {
				continue
			}
			all = append(all, record)
		}

		if payload.ScrollID == nil || *payload.ScrollID == "" || len(payload.Records) == 0 {
			break
		}
		if _, ok := seen[*payload.ScrollID]; ok {
			break
		}
		seen[*payload.ScrollID] = struct{}{}
		scrollID = *payload.ScrollID
	}

	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.TrackingAPIToken) == "" {
		return nil, errors.New("missing TRACKING_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.TrackingAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.TrackingAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("tracking status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("tracking api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("tracking api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("tracking request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toCargoRecord(raw map[string]any) (internal.CargoRecord, error) {
	caseCode, _ := raw["case"].(string)
	caseCode = strings.TrimSpace(caseCode)
	if caseCode == "" {
		return internal.CargoRecord{}, errors.New("empty case code")
	}

	id, ok := toInt(raw["id"])
	if !ok {
		return internal.CargoRecord{}, errors.New("missing id")
	}

	status, _ := raw["status"].(string)
	status = strings.ToUpper(strings.TrimSpace(status))
	if !isKnownStatus(status) {
		// The API raw payload keeps whatever the server sent; the record
		// itself only carries recognized lifecycle states.
		status = StatusUnknown
	}

	rawJSON, _ := json.Marshal(raw)
	record := internal.CargoRecord{
		ID:      id,
		Case:    caseCode,
		Status:  status,
		RawJSON: string(rawJSON),
	}
	record.Vendor = toStringPtr(raw["vendor"])
	record.Site = toStringPtr(raw["site"])
	record.ETA = toStringPtr(raw["eta"])
	record.ATA = toStringPtr(raw["ata"])
	record.UpdatedAt = toStringPtr(raw["updatedAt"])

	return record, nil
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func toStringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return util.StringPtr(s)
}
