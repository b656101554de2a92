// Package donationclient talks to a running donation server.
package donationclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alovak/pix-donations/donation/models"
)

// ErrConflict is returned when the server already has a page with the slug.
var ErrConflict = errors.New("page already exists")

type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

func (c *Client) CreatePage(ctx context.Context, req models.CreatePage) (*models.Page, error) {
	b, _ := json.Marshal(req)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/pages", bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, fmt.Errorf("slug %s: %w", req.Slug, ErrConflict)
	}
	if err := checkStatus("create page", resp); err != nil {
		return nil, err
	}

	var page models.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return &page, nil
}

// IssueCharge asks the server for a fresh code for the page.
func (c *Client) IssueCharge(ctx context.Context, slug string) (*models.Charge, error) {
	target := fmt.Sprintf("%s/pages/%s/charges", c.Base, url.PathEscape(slug))
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("issue charge: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus("issue charge", resp); err != nil {
		return nil, err
	}

	var charge models.Charge
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return nil, fmt.Errorf("decode charge: %w", err)
	}
	return &charge, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode/100 == 2 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s status=%d body=%s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
