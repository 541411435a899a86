// Package gateway implements the eSewa ePay integration: signed payment
// form generation, callback verification and transaction status lookup.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature    = errors.New("payment signature mismatch")
	ErrMalformedPayload    = errors.New("malformed callback payload")
	ErrProductCodeMismatch = errors.New("callback product code does not match merchant")
)

// Callback status values the gateway reports.
const (
	StatusComplete = "COMPLETE"
	StatusPending  = "PENDING"
	StatusCanceled = "CANCELED"
	StatusNotFound = "NOT_FOUND"
)

// Config holds merchant credentials and endpoints.
type Config struct {
	ProductCode string
	SecretKey   string
	BaseURL     string
	SuccessURL  string
	FailureURL  string
}

// ConfigFromEnv reads gateway settings, falling back to the eSewa UAT
// environment with its published test credentials.
func ConfigFromEnv() Config {
	cfg := Config{
		ProductCode: os.Getenv("ESEWA_PRODUCT_CODE"),
		SecretKey:   os.Getenv("ESEWA_SECRET_KEY"),
		BaseURL:     os.Getenv("ESEWA_BASE_URL"),
		SuccessURL:  os.Getenv("ESEWA_SUCCESS_URL"),
		FailureURL:  os.Getenv("ESEWA_FAILURE_URL"),
	}
	if cfg.ProductCode == "" {
		cfg.ProductCode = "EPAYTEST"
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = "8gBm/:&EnhH.1/q"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://rc-epay.esewa.com.np"
	}
	return cfg
}

// Client signs outbound payment requests and verifies inbound callbacks.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// sign computes the base64 HMAC-SHA256 of the canonical message.
func (c *Client) sign(message string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// PaymentForm is the field set the front-end posts to the gateway.
type PaymentForm struct {
	Amount          string `json:"amount"`
	TaxAmount       string `json:"tax_amount"`
	TotalAmount     string `json:"total_amount"`
	TransactionUUID string `json:"transaction_uuid"`
	ProductCode     string `json:"product_code"`
	SuccessURL      string `json:"success_url"`
	FailureURL      string `json:"failure_url"`
	SignedFields    string `json:"signed_field_names"`
	Signature       string `json:"signature"`
	GatewayURL      string `json:"gateway_url"`
}

// BuildPaymentForm signs total_amount, transaction_uuid and product_code
// the way the gateway expects and returns the complete form.
func (c *Client) BuildPaymentForm(total decimal.Decimal, reference string) PaymentForm {
	amount := total.StringFixed(2)
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s",
		amount, reference, c.cfg.ProductCode)

	return PaymentForm{
		Amount:          amount,
		TaxAmount:       "0",
		TotalAmount:     amount,
		TransactionUUID: reference,
		ProductCode:     c.cfg.ProductCode,
		SuccessURL:      c.cfg.SuccessURL,
		FailureURL:      c.cfg.FailureURL,
		SignedFields:    "total_amount,transaction_uuid,product_code",
		Signature:       c.sign(message),
		GatewayURL:      c.cfg.BaseURL + "/api/epay/main/v2/form",
	}
}

// CallbackPayload is the decoded body of the gateway redirect. Field
// order in SignedFields defines the signed message.
type CallbackPayload struct {
	TransactionCode string `json:"transaction_code"`
	Status          string `json:"status"`
	TotalAmount     string `json:"total_amount"`
	TransactionUUID string `json:"transaction_uuid"`
	ProductCode     string `json:"product_code"`
	SignedFields    string `json:"signed_field_names"`
	Signature       string `json:"signature"`
}

// DecodeCallback decodes the base64 JSON blob the gateway sends in the
// `data` query parameter.
func DecodeCallback(data string) (*CallbackPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		// the gateway URL-encodes, some clients strip padding
		raw, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			return nil, ErrMalformedPayload
		}
	}
	var payload CallbackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrMalformedPayload
	}
	if payload.TransactionUUID == "" || payload.Status == "" {
		return nil, ErrMalformedPayload
	}
	return &payload, nil
}

// VerifyCallback recomputes the HMAC over the signed fields in their
// declared order and compares it in constant time.
func (c *Client) VerifyCallback(p *CallbackPayload) error {
	fields := strings.Split(p.SignedFields, ",")
	values := map[string]string{
		"transaction_code":   p.TransactionCode,
		"status":             p.Status,
		"total_amount":       p.TotalAmount,
		"transaction_uuid":   p.TransactionUUID,
		"product_code":       p.ProductCode,
		"signed_field_names": p.SignedFields,
	}

	pairs := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		v, ok := values[f]
		if !ok {
			return ErrMalformedPayload
		}
		pairs = append(pairs, f+"="+v)
	}

	expected := c.sign(strings.Join(pairs, ","))
	if !hmac.Equal([]byte(expected), []byte(p.Signature)) {
		return ErrInvalidSignature
	}
	// a valid signature under our key can still carry another merchant's
	// product code if environments get crossed
	if p.ProductCode != c.cfg.ProductCode {
		return ErrProductCodeMismatch
	}
	return nil
}

// StatusResponse is the gateway's answer to a status lookup.
type StatusResponse struct {
	ProductCode     string `json:"product_code"`
	TransactionUUID string `json:"transaction_uuid"`
	TotalAmount     string `json:"total_amount"`
	Status          string `json:"status"`
	RefID           string `json:"ref_id"`
}

// CheckStatus re-queries the gateway for a transaction. A timeout or
// network error is returned as-is and leaves the caller's state alone.
func (c *Client) CheckStatus(ctx context.Context, reference string, total decimal.Decimal) (*StatusResponse, error) {
	q := url.Values{}
	q.Set("product_code", c.cfg.ProductCode)
	q.Set("total_amount", total.StringFixed(2))
	q.Set("transaction_uuid", reference)

	endpoint := c.cfg.BaseURL + "/api/epay/transaction/status/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway status lookup returned %d", resp.StatusCode)
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
