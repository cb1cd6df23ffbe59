// Package portal talks to the portal scraping proxy, which renders the portal's HTML pages as
// JSON. It is the live Fetcher and the Authenticator of the SDK.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trotyl/uestc-sdk-go/internal/models"
	"github.com/trotyl/uestc-sdk-go/pkg/config"
	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
)

const maxErrorBody = 512

// Client issues portal requests. The http.Client timeout is the only deadline it applies.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client for cfg. httpClient may be nil.
func NewClient(cfg config.PortalConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type envelope[T any] struct {
	Data  []T    `json:"data"`
	Error string `json:"error,omitempty"`
}

type loginResponse struct {
	Data models.PortalProfile `json:"data"`
}

// SearchForCourses queries the course search page.
func (c *Client) SearchForCourses(ctx context.Context, opt models.SearchOption) ([]models.Course, error) {
	courses, err := fetchList[models.Course](ctx, c, "/courses", opt)
	if err != nil {
		return nil, err
	}
	return models.FilterRecords(courses, opt), nil
}

// SearchForPeople queries the people directory.
func (c *Client) SearchForPeople(ctx context.Context, opt models.SearchOption) ([]models.Person, error) {
	people, err := fetchList[models.Person](ctx, c, "/people", opt)
	if err != nil {
		return nil, err
	}
	return models.FilterRecords(people, opt), nil
}

// Login submits the credential form. Rejected credentials map to ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, studentID, password string) (*models.PortalProfile, error) {
	if c.baseURL == "" {
		return nil, appErrors.Clone(appErrors.ErrNetworkFailure, "portal base url not configured")
	}
	form := url.Values{"student_id": {studentID}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, appErrors.WrapKind(err, appErrors.ErrNetworkFailure, "")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.WrapKind(err, appErrors.ErrNetworkFailure, "portal login request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	default:
		return nil, statusError(resp)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, appErrors.WrapKind(err, appErrors.ErrNetworkFailure, "decode portal login response")
	}
	if body.Data.StudentID == "" {
		body.Data.StudentID = studentID
	}
	return &body.Data, nil
}

// fetchList sends the filters verbatim; the caller re-applies them so live results follow the
// same matching rules as cached ones.
func fetchList[T any](ctx context.Context, c *Client, path string, opt models.SearchOption) ([]T, error) {
	if c.baseURL == "" {
		return nil, appErrors.Clone(appErrors.ErrNetworkFailure, "portal base url not configured")
	}
	query := url.Values{}
	for key, value := range opt.Normalised().Filters {
		query.Set(key, value)
	}
	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErrors.WrapKind(err, appErrors.ErrNetworkFailure, "")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.WrapKind(err, appErrors.ErrNetworkFailure, "portal request failed")
	}
	defer resp.Body.Close()

	c.logger.Debug("portal request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var body envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, appErrors.WrapKind(err, appErrors.ErrNetworkFailure, "decode portal response")
	}
	if body.Error != "" {
		return nil, appErrors.Clone(appErrors.ErrNetworkFailure, "portal proxy: "+body.Error)
	}
	return body.Data, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return appErrors.WrapKind(
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		appErrors.ErrNetworkFailure,
		"portal returned an error")
}
