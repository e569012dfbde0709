// Package stripe is the checkout-session gateway client. Only the two
// calls the payment flow needs are implemented; everything else about
// the gateway is its own business.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type LineItem struct {
	Name       string
	UnitAmount int64 // minor units
	Quantity   int
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type SessionDetails struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"` // open, complete, expired
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"-"`
	Metadata      map[string]string `json:"metadata"`
}

// Gateway is what the payment flow programs against; tests substitute
// their own.
type Gateway interface {
	CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string, metadata map[string]string) (Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (SessionDetails, error)
}

const apiBase = "https://api.stripe.com/v1"

type Client struct {
	secretKey string
	currency  string
	baseURL   string
	http      *http.Client
}

func NewClient() *Client {
	currency := os.Getenv("PAY_CURRENCY")
	if currency == "" {
		currency = "inr"
	}
	return &Client{
		secretKey: os.Getenv("STRIPE_SECRET_KEY"),
		currency:  currency,
		baseURL:   apiBase,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string, metadata map[string]string) (Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", c.currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (SessionDetails, error) {
	var raw struct {
		SessionDetails
		CustomerDetails struct {
			Email string `json:"email"`
		} `json:"customer_details"`
	}
	if err := c.do(ctx, http.MethodGet, "/checkout/sessions/"+url.PathEscape(sessionID), nil, &raw); err != nil {
		return SessionDetails{}, err
	}
	details := raw.SessionDetails
	details.CustomerEmail = raw.CustomerDetails.Email
	return details, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.secretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway %s %s: %s", method, path, resp.Status)
	}
	return json.Unmarshal(data, out)
}
