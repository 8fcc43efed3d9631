package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/deshimart/commerce/pkg/logger"
)

const (
	sandboxBaseURL = "https://sandbox.sslcommerz.com"
	liveBaseURL    = "https://securepay.sslcommerz.com"

	sessionPath    = "/gwprocess/v4/api.php"
	validationPath = "/validator/api/validationserverAPI.php"
)

// SSLCommerzClient talks to the SSLCommerz hosted-checkout API
type SSLCommerzClient struct {
	storeID       string
	storePassword string
	baseURL       string
	httpClient    *http.Client
}

// NewSSLCommerzClient creates a gateway client for the given store
// credentials. live selects the production endpoint.
func NewSSLCommerzClient(storeID, storePassword string, live bool) *SSLCommerzClient {
	baseURL := sandboxBaseURL
	if live {
		baseURL = liveBaseURL
	}

	return &SSLCommerzClient{
		storeID:       storeID,
		storePassword: storePassword,
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewSSLCommerzClientFromEnv builds the client from SSLCOMMERZ_STORE_ID,
// SSLCOMMERZ_STORE_PASSWORD and SSLCOMMERZ_IS_LIVE
func NewSSLCommerzClientFromEnv() *SSLCommerzClient {
	return NewSSLCommerzClient(
		getEnv("SSLCOMMERZ_STORE_ID", "testbox"),
		getEnv("SSLCOMMERZ_STORE_PASSWORD", "qwerty"),
		os.Getenv("SSLCOMMERZ_IS_LIVE") == "true",
	)
}

// SessionRequest carries everything the gateway needs to open a hosted
// checkout session. TranID is the order number.
type SessionRequest struct {
	TranID       string
	Amount       float64
	Currency     string
	SuccessURL   string
	FailURL      string
	CancelURL    string
	IPNURL       string
	CustomerName string
	CustomerCity string
	Email        string
	Phone        string
	Address      string
	ProductName  string
}

// Session is the gateway's reply to a session request
type Session struct {
	SessionKey  string
	GatewayURL  string
	RedirectURL string
}

type sessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitiateSession opens a hosted checkout session and returns the URL the
// customer's browser should be sent to
func (c *SSLCommerzClient) InitiateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	currency := req.Currency
	if currency == "" {
		currency = "BDT"
	}

	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePassword)
	form.Set("total_amount", fmt.Sprintf("%.2f", req.Amount))
	form.Set("currency", currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_url", req.IPNURL)
	form.Set("shipping_method", "Courier")
	form.Set("product_name", req.ProductName)
	form.Set("product_category", "General")
	form.Set("product_profile", "general")
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.Email)
	form.Set("cus_phone", req.Phone)
	form.Set("cus_add1", req.Address)
	form.Set("cus_city", req.CustomerCity)
	form.Set("cus_country", "Bangladesh")
	form.Set("ship_name", req.CustomerName)
	form.Set("ship_add1", req.Address)
	form.Set("ship_city", req.CustomerCity)
	form.Set("ship_country", "Bangladesh")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	var body sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if !strings.EqualFold(body.Status, "SUCCESS") || body.GatewayPageURL == "" {
		logger.Warn(ctx).
			Str("tran_id", req.TranID).
			Str("reason", body.FailedReason).
			Msg("Gateway rejected session request")
		return nil, fmt.Errorf("gateway rejected session: %s", body.FailedReason)
	}

	return &Session{
		SessionKey:  body.SessionKey,
		GatewayURL:  body.GatewayPageURL,
		RedirectURL: body.GatewayPageURL,
	}, nil
}

// Validation is the gateway's verdict on a completed transaction
type Validation struct {
	Status        string  `json:"status"`
	TranID        string  `json:"tran_id"`
	ValID         string  `json:"val_id"`
	Amount        string  `json:"amount"`
	CardType      string  `json:"card_type"`
	BankTranID    string  `json:"bank_tran_id"`
	CurrencyRate  string  `json:"currency_rate"`
	RiskLevel     string  `json:"risk_level"`
	StoreAmount   float64 `json:"-"`
	ValidatedDate string  `json:"tran_date"`
}

// Valid reports whether the gateway confirmed the transaction
func (v *Validation) Valid() bool {
	return v.Status == "VALID" || v.Status == "VALIDATED"
}

// ValidateTransaction asks the gateway validator whether a reported payment
// is genuine
func (c *SSLCommerzClient) ValidateTransaction(ctx context.Context, valID string) (*Validation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := url.Values{}
	query.Set("val_id", valID)
	query.Set("store_id", c.storeID)
	query.Set("store_passwd", c.storePassword)
	query.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+validationPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach validation endpoint: %w", err)
	}
	defer resp.Body.Close()

	var validation Validation
	if err := json.NewDecoder(resp.Body).Decode(&validation); err != nil {
		return nil, fmt.Errorf("failed to decode validation response: %w", err)
	}

	return &validation, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
