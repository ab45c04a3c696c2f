// Package mastodon fetches the accounts that reblogged a status.
package mastodon

import (
	"errors"
	"fmt"
)

// Account is the subset of a Mastodon account the raffle needs.
type Account struct {
	DisplayName string `json:"display_name"`
	Acct        string `json:"acct"`
}

// Envelope is the {status, message} wrapper some relays put around the account list.
type Envelope struct {
	Status  bool      `json:"status"`
	Message []Account `json:"message"`
}

var (
	// ErrStatusFalse means the envelope reported status != true.
	ErrStatusFalse = errors.New("remote reported status=false")
	// ErrUnexpectedBody means the body was neither an envelope nor an account array.
	ErrUnexpectedBody = errors.New("unexpected response body")
)

// FetchError is a RemoteFetchFailure: any reason the account list could not be obtained.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
