// Package api implements the HTTP client for the hifz tracker backend.
//
// Errors split into two classes: transport failures (returned as plain
// wrapped errors, safe to retry) and application-level rejections (*Error,
// never retried).
package api

import (
	"context"
	"fmt"
	"strconv"

	"resty.dev/v3"

	"hifztrack/internal/quran"
)

// Client talks to the backend REST API.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Client for the given base URL, e.g.
// "http://localhost:5001".
func NewClient(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")

	return &Client{httpClient: client}
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

// asError converts a non-2xx response into an application-level *Error,
// preferring the backend's structured {"error": ...} message.
func asError(response *resty.Response) *Error {
	apiErr := &Error{StatusCode: response.StatusCode()}
	if body, ok := response.Error().(*errorBody); ok && body != nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}

type pageLayoutResponse struct {
	PageLayout []quran.PageLayoutLine `json:"pageLayout"`
	WordData   map[int]string         `json:"wordData"`
}

// GetPageLayout fetches and validates the layout and word table for a page.
func (c *Client) GetPageLayout(ctx context.Context, pageNumber int) (*quran.Page, error) {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&pageLayoutResponse{}).
		SetError(&errorBody{}).
		Get(fmt.Sprintf("/api/quran/page-layout/%d", pageNumber))
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(page-layout) > %w", err)
	}
	if response.IsError() {
		return nil, asError(response)
	}

	body := response.Result().(*pageLayoutResponse)
	page, err := quran.NewPage(pageNumber, body.PageLayout, body.WordData)
	if err != nil {
		return nil, fmt.Errorf("quran.NewPage > %w", err)
	}
	return page, nil
}

// GetSurahNames fetches the surah number to display name table.
func (c *Client) GetSurahNames(ctx context.Context) (quran.SurahNames, error) {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&map[string]string{}).
		SetError(&errorBody{}).
		Get("/api/quran/surah-names")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(surah-names) > %w", err)
	}
	if response.IsError() {
		return nil, asError(response)
	}

	raw := response.Result().(*map[string]string)
	names := quran.SurahNames{}
	for key, name := range *raw {
		number, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("surah-names key %q is not a number > %w", key, err)
		}
		names[number] = name
	}
	return names, nil
}

// TestConnection probes the backend liveness endpoint. A nil return means
// the backend is reachable and healthy.
func (c *Client) TestConnection(ctx context.Context) error {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetError(&errorBody{}).
		Get("/api/quran/test")
	if err != nil {
		return fmt.Errorf("httpClient.Get(test) > %w", err)
	}
	if response.IsError() {
		return asError(response)
	}
	return nil
}

// CreateRecitation submits a session record.
func (c *Client) CreateRecitation(ctx context.Context, submission Submission) (*CreatedRecitation, error) {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(submission).
		SetResult(&CreatedRecitation{}).
		SetError(&errorBody{}).
		Post("/api/recitations")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post(recitations) > %w", err)
	}
	if response.IsError() {
		return nil, asError(response)
	}
	return response.Result().(*CreatedRecitation), nil
}

type recitationsResponse struct {
	Recitations []Recitation `json:"recitations"`
	Total       int          `json:"total"`
}

// ListRecitations fetches recitations matching the query parameters.
// Filters with empty values are omitted; ordering goes through order_by.
func (c *Client) ListRecitations(ctx context.Context, params map[string]string) ([]Recitation, error) {
	request := c.httpClient.R().
		SetContext(ctx).
		SetResult(&recitationsResponse{}).
		SetError(&errorBody{})
	for key, value := range params {
		if value != "" {
			request.SetQueryParam(key, value)
		}
	}

	response, err := request.Get("/api/recitations")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(recitations) > %w", err)
	}
	if response.IsError() {
		return nil, asError(response)
	}
	return response.Result().(*recitationsResponse).Recitations, nil
}

// UpdateRecitation applies a partial field update to a record.
func (c *Client) UpdateRecitation(ctx context.Context, id int64, update RecitationUpdate) (*Recitation, error) {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(update).
		SetResult(&Recitation{}).
		SetError(&errorBody{}).
		Put(fmt.Sprintf("/api/recitations/%d", id))
	if err != nil {
		return nil, fmt.Errorf("httpClient.Put(recitations/%d) > %w", id, err)
	}
	if response.IsError() {
		return nil, asError(response)
	}
	return response.Result().(*Recitation), nil
}

// DeleteRecitation removes a record.
func (c *Client) DeleteRecitation(ctx context.Context, id int64) error {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetError(&errorBody{}).
		Delete(fmt.Sprintf("/api/recitations/%d", id))
	if err != nil {
		return fmt.Errorf("httpClient.Delete(recitations/%d) > %w", id, err)
	}
	if response.IsError() {
		return asError(response)
	}
	return nil
}

// GetStats fetches the aggregate recitation statistics.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&Stats{}).
		SetError(&errorBody{}).
		Get("/api/recitations/stats")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(stats) > %w", err)
	}
	if response.IsError() {
		return nil, asError(response)
	}
	return response.Result().(*Stats), nil
}
