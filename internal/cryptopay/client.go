// Package cryptopay предоставляет клиент для платёжного API Crypto Pay.
package cryptopay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrProvider возвращается при любой ошибке взаимодействия с платёжным
// провайдером: сетевой сбой, не-2xx ответ или некорректное тело ответа.
var ErrProvider = errors.New("payment provider error")

// Статусы инвойса, возвращаемые провайдером.
const (
	StatusActive  = "active"
	StatusPaid    = "paid"
	StatusExpired = "expired"
)

const tokenHeader = "Crypto-Pay-API-Token"

// Client инкапсулирует HTTP-взаимодействие с Crypto Pay.
type Client struct {
	baseURL    string
	token      string
	asset      string
	paidBtnURL string
	httpClient *http.Client
}

// Invoice описывает инвойс провайдера.
type Invoice struct {
	InvoiceID int64  `json:"invoice_id"`
	Status    string `json:"status"`
	PayURL    string `json:"pay_url"`
}

// NewClient создаёт клиент Crypto Pay для указанного адреса API.
func NewClient(baseURL, token, paidBtnURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		asset:      "USDT",
		paidBtnURL: paidBtnURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type createInvoiceRequest struct {
	Amount        int64  `json:"amount"`
	Asset         string `json:"asset"`
	Description   string `json:"description"`
	HiddenMessage string `json:"hidden_message"`
	PaidBtnName   string `json:"paid_btn_name"`
	PaidBtnURL    string `json:"paid_btn_url"`
	Payload       string `json:"payload"`
}

type createInvoiceResponse struct {
	Result Invoice `json:"result"`
}

type getInvoicesResponse struct {
	Result struct {
		Items []Invoice `json:"items"`
	} `json:"result"`
}

// CreateInvoice создаёт инвойс на указанную сумму. Вызов не ретраится:
// ошибка сразу возвращается вызывающему, чтобы тот предложил пользователю
// альтернативный способ оплаты.
func (c *Client) CreateInvoice(ctx context.Context, amount int64, description, hiddenMessage, payload string) (*Invoice, error) {
	body, err := json.Marshal(createInvoiceRequest{
		Amount:        amount,
		Asset:         c.asset,
		Description:   description,
		HiddenMessage: hiddenMessage,
		PaidBtnName:   "viewItem",
		PaidBtnURL:    c.paidBtnURL,
		Payload:       payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/createInvoice", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProvider, resp.StatusCode)
	}

	var result createInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrProvider, err)
	}

	if result.Result.InvoiceID == 0 || result.Result.PayURL == "" {
		return nil, fmt.Errorf("%w: incomplete invoice in response", ErrProvider)
	}

	return &result.Result, nil
}

// GetInvoice запрашивает текущий статус инвойса по его идентификатору.
func (c *Client) GetInvoice(ctx context.Context, invoiceID int64) (*Invoice, error) {
	url := c.baseURL + "/getInvoices?invoice_ids=" + strconv.FormatInt(invoiceID, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProvider, resp.StatusCode)
	}

	var result getInvoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrProvider, err)
	}

	if len(result.Result.Items) == 0 {
		return nil, fmt.Errorf("%w: invoice %d not found", ErrProvider, invoiceID)
	}

	return &result.Result.Items[0], nil
}
