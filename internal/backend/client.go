package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kdimtricp/damagecheck/internal/models"
)

const (
	analyzePath     = "/analyze_assessment"
	historyPath     = "/history"
	suggestionsPath = "/generate_suggestions"
	healthPath      = "/health"

	imagesField = "images"
)

// APIError is a non-2xx answer from the analysis service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Upload is one image part of an analysis request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type SuggestionRequest struct {
	CarType       string           `json:"car_type"`
	Severity      models.Severity  `json:"severity"`
	DamagedParts  []string         `json:"damaged_parts"`
	EstimatedCost models.CostRange `json:"estimated_cost"`
}

func NewSuggestionRequest(result *models.AssessmentResult) SuggestionRequest {
	return SuggestionRequest{
		CarType:       result.CarType,
		Severity:      result.Severity,
		DamagedParts:  append([]string{}, result.DamagedParts...),
		EstimatedCost: result.EstimatedCost,
	}
}

type suggestionResponse struct {
	Suggestions string `json:"suggestions"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze sends the images, in order, as repeated "images" parts and returns the validated result.
func (c *Client) Analyze(ctx context.Context, uploads []Upload) (*models.AssessmentResult, error) {
	if len(uploads) == 0 {
		return nil, errors.New("no images to analyze")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, u := range uploads {
		if err := writeImagePart(w, u); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result models.AssessmentResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SaveHistory(ctx context.Context, token string, record models.HistoryRecord) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, historyPath, record)
	if err != nil {
		return err
	}
	setBearer(req, token)
	return c.do(req, nil)
}

func (c *Client) FetchHistory(ctx context.Context, token string) ([]models.HistoryRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+historyPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setBearer(req, token)

	var records []models.HistoryRecord
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) GenerateSuggestions(ctx context.Context, in SuggestionRequest) (string, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, suggestionsPath, in)
	if err != nil {
		return "", err
	}

	var out suggestionResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Suggestions == "" {
		return "", errors.New("backend returned no suggestions")
	}
	return out.Suggestions, nil
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, v any) (*http.Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		apiErr.Message = er.Error
		if apiErr.Message == "" {
			apiErr.Message = er.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func writeImagePart(w *multipart.Writer, u Upload) error {
	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, imagesField, escapeQuotes(u.Filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(u.Data)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
