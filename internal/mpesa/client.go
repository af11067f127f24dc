package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Status values reported by the gateway's status endpoint. Anything
// else means the transaction is still in flight.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

const acceptedResponseCode = "0"

// ErrRejected marks an initiation the gateway refused (non-zero
// response code).
var ErrRejected = errors.New("payment rejected by gateway")

// RejectionError carries the gateway's own description of a refused
// initiation so it can be shown to the buyer verbatim.
type RejectionError struct {
	Description string
}

func (e *RejectionError) Error() string {
	return "payment rejected: " + e.Description
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// InitiateResult is the gateway's answer to a payment initiation.
type InitiateResult struct {
	CheckoutRequestID string
	Description       string
}

type initiateRequest struct {
	Phone  string `json:"phone"`
	Amount int64  `json:"amount"`
}

type initiateResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ErrorMessage        string `json:"errorMessage"`
}

type statusResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

// Client talks to the M-Pesa payment gateway over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// InitiatePayment submits an STK push for the given phone and integer
// amount. A response code of "0" yields the correlation id used for
// polling; anything else is a rejection carrying the gateway's
// description.
func (c *Client) InitiatePayment(ctx context.Context, phone string, amount int64) (*InitiateResult, error) {
	body, err := json.Marshal(initiateRequest{Phone: phone, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("marshal initiate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/mpesa/payment", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build initiate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("initiate payment: %w", err)
	}
	defer resp.Body.Close()

	var parsed initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode initiate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || parsed.ResponseCode != acceptedResponseCode {
		return nil, &RejectionError{Description: rejectionMessage(parsed)}
	}

	return &InitiateResult{
		CheckoutRequestID: parsed.CheckoutRequestID,
		Description:       parsed.ResponseDescription,
	}, nil
}

// PaymentStatus polls the gateway for the transaction identified by the
// correlation id issued at initiation.
func (c *Client) PaymentStatus(ctx context.Context, checkoutRequestID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/mpesa/payment-status/"+checkoutRequestID, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment status: unexpected status %d", resp.StatusCode)
	}

	var parsed statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	if parsed.Status == "" && parsed.ErrorMessage != "" {
		return "", fmt.Errorf("payment status: %s", parsed.ErrorMessage)
	}

	return parsed.Status, nil
}

func rejectionMessage(resp initiateResponse) string {
	switch {
	case resp.ResponseDescription != "":
		return resp.ResponseDescription
	case resp.CustomerMessage != "":
		return resp.CustomerMessage
	case resp.ErrorMessage != "":
		return resp.ErrorMessage
	default:
		return "failed to initiate payment"
	}
}

// ClassifyError turns a transport failure into the message shown to the
// buyer: the gateway's own description wins, then a timeout-specific
// message, then a generic one.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Description
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "payment request timed out, please try again"
	}
	return "failed to initiate payment"
}
