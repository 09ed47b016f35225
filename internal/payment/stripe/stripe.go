package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/service"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("stripe config invalid")
	ErrRequestFailed   = errors.New("stripe request failed")
	ErrResponseInvalid = errors.New("stripe response invalid")
	ErrChargeDeclined  = errors.New("stripe charge declined")
)

const (
	defaultAPIBaseURL = "https://api.stripe.com"
	defaultTimeout    = 15 * time.Second
)

var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {},
	"CLP": {},
	"DJF": {},
	"GNF": {},
	"JPY": {},
	"KMF": {},
	"KRW": {},
	"MGA": {},
	"PYG": {},
	"RWF": {},
	"UGX": {},
	"VND": {},
	"VUV": {},
	"XAF": {},
	"XOF": {},
	"XPF": {},
}

// Config is the gateway channel configuration.
type Config struct {
	SecretKey  string        `json:"secret_key"`
	APIBaseURL string        `json:"api_base_url"`
	Timeout    time.Duration `json:"-"`
}

// Client issues destination charges against the Stripe API. It
// implements the service gateway interface.
type Client struct {
	cfg Config
}

// New builds the client.
func New(cfg Config) (*Client, error) {
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{cfg: cfg}, nil
}

// Name identifies the channel.
func (c *Client) Name() string {
	return "stripe"
}

// CreateCharge creates a payment intent for the order total. When the
// request carries a transfer destination the brand remainder rides
// along as transfer_data so the connected account is funded by the
// same charge.
func (c *Client) CreateCharge(ctx context.Context, req service.ChargeRequest) (*service.ChargeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	orderNo := strings.TrimSpace(req.OrderNo)
	if orderNo == "" {
		return nil, fmt.Errorf("%w: order_no is required", ErrConfigInvalid)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrConfigInvalid)
	}
	minorAmount, err := toMinorAmount(req.Amount, currency)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minorAmount, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	if description := strings.TrimSpace(req.Description); description != "" {
		form.Set("description", description)
	}
	form.Set("metadata[order_no]", orderNo)
	for key, value := range req.Metadata {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}
	if destination := strings.TrimSpace(req.TransferTo); destination != "" {
		transferMinor, err := toMinorAmount(req.TransferAmount, currency)
		if err != nil {
			return nil, err
		}
		form.Set("transfer_data[destination]", destination)
		form.Set("transfer_data[amount]", strconv.FormatInt(transferMinor, 10))
	}

	respBody, statusCode, err := c.doFormRequest(ctx, http.MethodPost, "/v1/payment_intents", form)
	if err != nil {
		return nil, err
	}
	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		message := readErrorMessage(raw)
		if message == "" {
			message = fmt.Sprintf("status %d", statusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrChargeDeclined, message)
	}

	chargeID := strings.TrimSpace(readString(raw, "id"))
	if chargeID == "" {
		return nil, fmt.Errorf("%w: missing payment intent id", ErrResponseInvalid)
	}
	return &service.ChargeResult{
		ChargeID:     chargeID,
		ClientSecret: strings.TrimSpace(readString(raw, "client_secret")),
		Raw:          raw,
	}, nil
}

// GetCharge fetches a payment intent by id.
func (c *Client) GetCharge(ctx context.Context, chargeID string) (*service.ChargeStatus, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	chargeID = strings.TrimSpace(chargeID)
	if chargeID == "" {
		return nil, fmt.Errorf("%w: charge id is required", ErrConfigInvalid)
	}

	path := fmt.Sprintf("/v1/payment_intents/%s", url.PathEscape(chargeID))
	respBody, statusCode, err := c.doFormRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: query payment intent status %d", ErrResponseInvalid, statusCode)
	}
	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}

	result := &service.ChargeStatus{Raw: raw}
	result.ChargeID = strings.TrimSpace(readString(raw, "id"))
	result.Status = strings.TrimSpace(readString(raw, "status"))
	result.Currency = strings.ToUpper(strings.TrimSpace(readString(raw, "currency")))
	amountMinor := readInt64(raw, "amount_received")
	if amountMinor <= 0 {
		amountMinor = readInt64(raw, "amount")
	}
	if amountMinor > 0 && result.Currency != "" {
		result.Amount = fromMinorAmount(amountMinor, result.Currency)
	}
	if result.ChargeID == "" {
		return nil, fmt.Errorf("%w: missing payment intent id", ErrResponseInvalid)
	}
	return result, nil
}

func (c *Client) doFormRequest(ctx context.Context, method, path string, form url.Values) ([]byte, int, error) {
	endpoint := c.cfg.APIBaseURL + path
	var bodyReader io.Reader
	if len(form) > 0 {
		bodyReader = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if len(form) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := (&http.Client{Timeout: c.cfg.Timeout}).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func toMinorAmount(amount decimal.Decimal, currency string) (int64, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrConfigInvalid)
	}
	scale := currencyScale(currency)
	minor := amount.Shift(int32(scale)).Round(0)
	return minor.IntPart(), nil
}

func fromMinorAmount(minor int64, currency string) string {
	scale := currencyScale(currency)
	return decimal.NewFromInt(minor).Shift(int32(-scale)).StringFixed(int32(scale))
}

func currencyScale(currency string) int {
	upper := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[upper]; ok {
		return 0
	}
	return 2
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readErrorMessage(raw map[string]interface{}) string {
	errObj, ok := raw["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	return strings.TrimSpace(readString(errObj, "message"))
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strings.TrimSpace(strconv.FormatInt(int64(typed), 10))
	case int64:
		return strings.TrimSpace(strconv.FormatInt(typed, 10))
	case int:
		return strings.TrimSpace(strconv.Itoa(typed))
	default:
		return ""
	}
}

func readInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil || strings.TrimSpace(key) == "" {
		return 0
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
		floatVal, err := typed.Float64()
		if err != nil {
			return 0
		}
		return int64(floatVal)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
