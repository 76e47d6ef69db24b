// Package api is the client for the remote restaurant/user REST API.
// All envelope handling happens here: a successful payload arrives either
// bare or wrapped as {"data": ...}, and the restaurant list arrives as a
// bare array or wrapped as {"restaurants": [...]}. Callers always receive
// typed values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/akorhonen/restaurant-browser/internal/models"
	"github.com/google/uuid"
)

// APIError is a non-2xx response from the remote API. Message carries the
// body's message field when present, or a generic fallback.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote api: %s (status %d)", e.Message, e.StatusCode)
}

// Client calls the remote restaurant API.
type Client struct {
	baseURL  string
	language string
	http     *http.Client
	logger   *slog.Logger
}

// New creates a Client for the given base URL ("https://.../api/v1") and
// menu language.
func New(baseURL, language string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// loginResponse is the login endpoint's shape: a token next to the user.
type loginResponse struct {
	Token   string       `json:"token"`
	Data    *models.User `json:"data"`
	Message string       `json:"message"`
}

// Login exchanges credentials for a session token and the user record.
func (c *Client) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", nil, fmt.Errorf("marshalling login request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/auth/login", "", bytes.NewReader(body), "application/json")
	if err != nil {
		return "", nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", nil, fmt.Errorf("decoding login response: %w", err)
	}
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "login failed"
		}
		return "", nil, &APIError{StatusCode: http.StatusUnauthorized, Message: msg}
	}
	return resp.Token, resp.Data, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling register request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/users", "", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// CurrentUser fetches the user record for the given session token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/users/token", token, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// UserUpdate carries the profile fields to change; empty fields are
// omitted from the request.
type UserUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// UpdateUser updates profile fields and returns the server's
// representation of the user.
func (c *Client) UpdateUser(ctx context.Context, token string, update UserUpdate) (*models.User, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("marshalling user update: %w", err)
	}

	data, err := c.do(ctx, http.MethodPut, "/users", token, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// UpdateFavouriteRestaurant mirrors the primary favourite to the server's
// single-favourite field. An empty id clears it (explicit null on the
// wire, the server distinguishes null from absent).
func (c *Client) UpdateFavouriteRestaurant(ctx context.Context, token, restaurantID string) (*models.User, error) {
	payload := map[string]any{"favouriteRestaurant": nil}
	if restaurantID != "" {
		payload["favouriteRestaurant"] = restaurantID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling favourite update: %w", err)
	}

	data, err := c.do(ctx, http.MethodPut, "/users", token, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// UploadAvatar sends an avatar image as multipart form data.
func (c *Client) UploadAvatar(ctx context.Context, token, filename string, file io.Reader) (*models.User, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading avatar file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalising multipart body: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/users/avatar", token, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// Restaurants fetches the full catalog.
func (c *Client) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	data, err := c.do(ctx, http.MethodGet, "/restaurants", "", nil, "")
	if err != nil {
		return nil, err
	}

	var bare []models.Restaurant
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Restaurants []models.Restaurant `json:"restaurants"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding restaurant list: %w", err)
	}
	if wrapped.Restaurants == nil {
		return []models.Restaurant{}, nil
	}
	return wrapped.Restaurants, nil
}

// Restaurant fetches a single catalog entry by id.
func (c *Client) Restaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	data, err := c.do(ctx, http.MethodGet, "/restaurants/"+id, "", nil, "")
	if err != nil {
		return nil, err
	}

	var restaurant models.Restaurant
	if err := json.Unmarshal(unwrap(data), &restaurant); err != nil {
		return nil, fmt.Errorf("decoding restaurant: %w", err)
	}
	return &restaurant, nil
}

// DailyMenu fetches the given restaurant's menu for today.
func (c *Client) DailyMenu(ctx context.Context, restaurantID string) (*models.DailyMenu, error) {
	path := fmt.Sprintf("/restaurants/daily/%s/%s", restaurantID, c.language)
	data, err := c.do(ctx, http.MethodGet, path, "", nil, "")
	if err != nil {
		return nil, err
	}

	var menu models.DailyMenu
	if err := json.Unmarshal(unwrap(data), &menu); err != nil {
		return nil, fmt.Errorf("decoding daily menu: %w", err)
	}
	return &menu, nil
}

// WeeklyMenu fetches the given restaurant's menu for the week.
func (c *Client) WeeklyMenu(ctx context.Context, restaurantID string) (*models.WeeklyMenu, error) {
	path := fmt.Sprintf("/restaurants/weekly/%s/%s", restaurantID, c.language)
	data, err := c.do(ctx, http.MethodGet, path, "", nil, "")
	if err != nil {
		return nil, err
	}

	var menu models.WeeklyMenu
	if err := json.Unmarshal(unwrap(data), &menu); err != nil {
		return nil, fmt.Errorf("decoding weekly menu: %w", err)
	}
	return &menu, nil
}

// Ping checks that the remote API answers. Used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/restaurants", "", nil, "")
	return err
}

// do issues one request and returns the raw body of a 2xx response.
// Non-2xx responses become *APIError with the body's message when one is
// present.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("remote api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		c.logger.Warn("remote api returned error",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	return data, nil
}

// unwrap resolves the response envelope: {"data": ...} yields the inner
// payload, anything else passes through unchanged.
func unwrap(data []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return envelope.Data
	}
	return data
}

func decodeUser(data []byte) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal(unwrap(data), &user); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}
	return &user, nil
}

// errorMessage pulls a human-readable message from an error body, which
// uses either a "message" or an "error" field.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return "request failed"
}
