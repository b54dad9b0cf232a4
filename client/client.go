package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/autotestx/prioritizer/internal/model"
)

type TestRecord = model.TestRecord
type FieldError = model.FieldError

type Client struct {
	http *http.Client
	host string
}

// RequestError is returned for any response with a non 2xx status code.
// Detail is only set when the service rejected the payload (422).
type RequestError struct {
	ResponseCode int
	Detail       []FieldError
}

func (e RequestError) Error() string {
	if len(e.Detail) > 0 {
		return fmt.Sprintf("request failed with status %d: %s", e.ResponseCode, model.ValidationError{Details: e.Detail}.Error())
	}

	return fmt.Sprintf("request failed with status %d", e.ResponseCode)
}

// ErrEmptyInput is returned by Prioritize when there are no records to send.
var ErrEmptyInput = errors.New("no test records provided")

func New(host string, c *http.Client) Client {
	return Client{http: c, host: host}
}

// Prioritize sends the records to the service and returns them ordered by
// risk score, highest first.
func (c Client) Prioritize(ctx context.Context, records []TestRecord) ([]TestRecord, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshalling test records: %w", err)
	}

	return c.PrioritizeRaw(ctx, body)
}

// PrioritizeRaw sends an already encoded payload as is. It allows sending
// payloads that the service will reject.
func (c Client) PrioritizeRaw(ctx context.Context, payload []byte) ([]TestRecord, error) {
	req, err := http.NewRequest(http.MethodPost, c.url("/prioritize"), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var sorted []TestRecord

	if err = c.do(ctx, req, &sorted); err != nil {
		return nil, err
	}

	return sorted, nil
}

// Liveness returns the message of the liveness endpoint.
func (c Client) Liveness(ctx context.Context) (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("/"), nil)
	if err != nil {
		return "", err
	}

	var l model.LivenessHTTP

	if err = c.do(ctx, req, &l); err != nil {
		return "", err
	}

	return l.Message, nil
}

func (c Client) url(path string) string {
	return c.host + path
}

func (c Client) do(ctx context.Context, req *http.Request, body any) error {
	req = req.WithContext(ctx)
	req.Header.Add("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		reqErr := RequestError{ResponseCode: res.StatusCode}

		if res.StatusCode == http.StatusUnprocessableEntity {
			var v model.ValidationErrorHTTP
			if err := json.NewDecoder(res.Body).Decode(&v); err == nil {
				reqErr.Detail = v.Detail
			}
		}

		_, _ = io.Copy(io.Discard, res.Body)

		return reqErr
	}

	if body != nil {
		d := json.NewDecoder(res.Body)

		if err = d.Decode(body); err != nil {
			return err
		}
	}

	return nil
}
