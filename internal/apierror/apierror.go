/*
Copyright 2025 ReceivAI Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	// Wallet errors
	ErrWalletNotConnected ErrorCode = "WALLET_NOT_CONNECTED"
	ErrWalletRejected     ErrorCode = "WALLET_REJECTED"
	ErrWalletNotFound     ErrorCode = "WALLET_NOT_FOUND"

	// Transaction errors
	ErrTransactionFailed   ErrorCode = "TRANSACTION_FAILED"
	ErrTransactionTimeout  ErrorCode = "TRANSACTION_TIMEOUT"
	ErrTransactionRejected ErrorCode = "TRANSACTION_REJECTED"
	ErrInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"

	// Ledger state errors
	ErrContractNotDeployed     ErrorCode = "CONTRACT_NOT_DEPLOYED"
	ErrInvalidInvoiceID        ErrorCode = "INVALID_INVOICE_ID"
	ErrInvoiceNotFound         ErrorCode = "INVOICE_NOT_FOUND"
	ErrInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrUnauthorized            ErrorCode = "UNAUTHORIZED"
	ErrInvoiceNotDue           ErrorCode = "INVOICE_NOT_DUE"
	ErrInvoiceAlreadySettled   ErrorCode = "INVOICE_ALREADY_SETTLED"

	// Validation errors
	ErrInvalidAmount        ErrorCode = "INVALID_AMOUNT"
	ErrInvalidDate          ErrorCode = "INVALID_DATE"
	ErrMissingRequiredField ErrorCode = "MISSING_REQUIRED_FIELD"

	// Network errors
	ErrNetwork ErrorCode = "NETWORK_ERROR"
	ErrRPC     ErrorCode = "RPC_ERROR"

	ErrUnknown ErrorCode = "UNKNOWN_ERROR"
)

// APIError normalizes any failure into a stable tuple of code, user-facing
// message, recoverability and a suggested next action. Raw error text is kept
// in Message for logs only and is never shown to users.
type APIError struct {
	Code        ErrorCode `json:"code"`
	Message     string    `json:"-"`
	UserMessage string    `json:"message"`
	Recoverable bool      `json:"recoverable"`
	Action      string    `json:"action,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type errorInfo struct {
	userMessage string
	recoverable bool
	action      string
}

var errorMessages = map[ErrorCode]errorInfo{
	ErrWalletNotConnected:      {"Please connect your wallet to continue", true, "Connect Wallet"},
	ErrWalletRejected:          {"Wallet connection was rejected. Please try again.", true, ""},
	ErrWalletNotFound:          {"Wallet not found. Please install a signing wallet.", true, "Install Wallet"},
	ErrTransactionFailed:       {"Transaction failed. Please check your balance and try again.", true, ""},
	ErrTransactionTimeout:      {"Transaction timed out. Please refresh and try again.", true, ""},
	ErrTransactionRejected:     {"Transaction was rejected. Please approve the transaction in your wallet.", true, ""},
	ErrInsufficientBalance:     {"Insufficient balance. Please add funds to your wallet.", true, "Add Funds"},
	ErrContractNotDeployed:     {"Contract not found. Please check your network connection.", true, ""},
	ErrInvalidInvoiceID:        {"Invalid invoice ID. Please check and try again.", false, ""},
	ErrInvoiceNotFound:         {"Invoice not found. It may have been deleted or does not exist.", false, ""},
	ErrInvalidStatusTransition: {"Cannot perform this action. Invoice status does not allow this operation.", false, ""},
	ErrUnauthorized:            {"You are not authorized to perform this action.", false, ""},
	ErrInvoiceNotDue:           {"Invoice is not due yet. Please wait until the due date.", false, ""},
	ErrInvoiceAlreadySettled:   {"This invoice has already been settled.", false, ""},
	ErrInvalidAmount:           {"Invalid amount. Please enter a positive number.", true, ""},
	ErrInvalidDate:             {"Invalid date. Please select a future date.", true, ""},
	ErrMissingRequiredField:    {"Please fill in all required fields.", true, ""},
	ErrNetwork:                 {"Network error. Please check your internet connection and try again.", true, ""},
	ErrRPC:                     {"Ledger connection error. Please try again in a moment.", true, ""},
	ErrUnknown:                 {"An unexpected error occurred. Please try again.", true, ""},
}

// NewAPIError builds an APIError for a code, filling the user-facing fields
// from the taxonomy table.
func NewAPIError(code ErrorCode, message string) APIError {
	info, ok := errorMessages[code]
	if !ok {
		info = errorMessages[ErrUnknown]
	}
	return APIError{
		Code:        code,
		Message:     message,
		UserMessage: info.userMessage,
		Recoverable: info.recoverable,
		Action:      info.action,
	}
}

// IsCode reports whether err is an APIError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// ParseError classifies an arbitrary error into the taxonomy by pattern
// matching its text. Errors that are already APIErrors pass through
// unchanged.
func ParseError(err error) APIError {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "not connected"), strings.Contains(lower, "wallet"):
		return NewAPIError(ErrWalletNotConnected, msg)
	case strings.Contains(lower, "rejected"), strings.Contains(lower, "denied"):
		if strings.Contains(lower, "transaction") {
			return NewAPIError(ErrTransactionRejected, msg)
		}
		return NewAPIError(ErrWalletRejected, msg)
	case strings.Contains(lower, "insufficient"), strings.Contains(lower, "balance"):
		return NewAPIError(ErrInsufficientBalance, msg)
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"):
		return NewAPIError(ErrTransactionTimeout, msg)
	case strings.Contains(lower, "not found"), strings.Contains(lower, "does not exist"):
		if strings.Contains(lower, "invoice") {
			return NewAPIError(ErrInvoiceNotFound, msg)
		}
		return NewAPIError(ErrContractNotDeployed, msg)
	case strings.Contains(lower, "not authorized"), strings.Contains(lower, "unauthorized"):
		return NewAPIError(ErrUnauthorized, msg)
	case strings.Contains(lower, "not due"), strings.Contains(lower, "due date"):
		return NewAPIError(ErrInvoiceNotDue, msg)
	case strings.Contains(lower, "already settled"), strings.Contains(lower, "settled"):
		return NewAPIError(ErrInvoiceAlreadySettled, msg)
	case strings.Contains(lower, "network"), strings.Contains(lower, "connection"):
		return NewAPIError(ErrNetwork, msg)
	case strings.Contains(lower, "rpc"):
		return NewAPIError(ErrRPC, msg)
	}

	// Contract execution faults come back as panic/assert strings; map the
	// known invariant messages onto the taxonomy.
	if strings.Contains(lower, "panic") || strings.Contains(lower, "assert") {
		switch {
		case strings.Contains(lower, "not pending"),
			strings.Contains(lower, "not verified"),
			strings.Contains(lower, "not listed"),
			strings.Contains(lower, "not sold"):
			return NewAPIError(ErrInvalidStatusTransition, msg)
		case strings.Contains(lower, "not the owner"),
			strings.Contains(lower, "only designated"),
			strings.Contains(lower, "only original"):
			return NewAPIError(ErrUnauthorized, msg)
		}
	}

	return NewAPIError(ErrUnknown, msg)
}

// HandleError classifies an error and logs it with its context before
// returning the normalized form.
func HandleError(err error, context string) APIError {
	appError := ParseError(err)
	logrus.WithFields(logrus.Fields{
		"code":    appError.Code,
		"context": context,
	}).Error(appError.Message)
	return appError
}

// MapErrorToHTTPStatus maps a normalized error to an HTTP status code.
func MapErrorToHTTPStatus(err error) int {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}
	switch apiErr.Code {
	case ErrInvoiceNotFound, ErrWalletNotFound:
		return http.StatusNotFound
	case ErrInvalidStatusTransition, ErrInvoiceAlreadySettled, ErrInvoiceNotDue:
		return http.StatusConflict
	case ErrInvalidAmount, ErrInvalidDate, ErrMissingRequiredField, ErrInvalidInvoiceID:
		return http.StatusBadRequest
	case ErrUnauthorized, ErrWalletRejected, ErrTransactionRejected, ErrWalletNotConnected:
		return http.StatusForbidden
	case ErrTransactionTimeout:
		return http.StatusGatewayTimeout
	case ErrNetwork, ErrRPC, ErrContractNotDeployed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
