package reqnet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ziflex/lecho/v3"
)

// RequestClient talks to a request-network gateway node over its REST API.
type RequestClient struct {
	cfg    *Config
	client *http.Client
	logger *lecho.Logger
}

var _ RequestClientWrapper = (*RequestClient)(nil)

func NewRequestClient(cfg *Config, logger *lecho.Logger) *RequestClient {
	return &RequestClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeout) * time.Second,
		},
		logger: logger,
	}
}

func (rc *RequestClient) CreateRequest(ctx context.Context, params CreateRequestParams) (*Request, error) {
	request := &Request{}
	err := rc.do(ctx, http.MethodPost, "/requests", params, request)
	if err != nil {
		return nil, err
	}
	return request, nil
}

// WaitForConfirmation polls the gateway until the request leaves the pending
// state. The gateway confirms a request once it has been anchored; this
// usually takes a few seconds.
func (rc *RequestClient) WaitForConfirmation(ctx context.Context, requestID string) (*Request, error) {
	var request *Request

	pollPolicy := backoff.NewExponentialBackOff()
	pollPolicy.InitialInterval = time.Duration(rc.cfg.ConfirmationPollDelay) * time.Second
	pollPolicy.Multiplier = 1
	pollPolicy.MaxElapsedTime = time.Duration(rc.cfg.ConfirmationTimeout) * time.Second

	err := backoff.Retry(func() error {
		fresh, err := rc.FromRequestID(ctx, requestID)
		if err != nil {
			return err
		}
		if fresh.State == "pending" {
			return fmt.Errorf("request %s not confirmed yet", requestID)
		}
		request = fresh
		return nil
	}, backoff.WithContext(pollPolicy, ctx))
	if err != nil {
		return nil, fmt.Errorf("waiting for confirmation of request %s: %w", requestID, err)
	}
	return request, nil
}

func (rc *RequestClient) FromIdentity(ctx context.Context, address string) ([]Request, error) {
	response := struct {
		Requests []Request `json:"requests"`
	}{}
	endpoint := fmt.Sprintf("/requests?identity=%s", url.QueryEscape(address))
	err := rc.do(ctx, http.MethodGet, endpoint, nil, &response)
	if err != nil {
		return nil, err
	}
	return response.Requests, nil
}

func (rc *RequestClient) FromRequestID(ctx context.Context, requestID string) (*Request, error) {
	request := &Request{}
	err := rc.do(ctx, http.MethodGet, fmt.Sprintf("/requests/%s", url.PathEscape(requestID)), nil, request)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (rc *RequestClient) do(ctx context.Context, method, endpoint string, body interface{}, response interface{}) error {
	var reader io.Reader
	if body != nil {
		payload := new(bytes.Buffer)
		if err := json.NewEncoder(payload).Encode(body); err != nil {
			return err
		}
		reader = payload
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", rc.cfg.GatewayURL, endpoint), reader)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := rc.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway returned status %d for %s %s: %s", resp.StatusCode, method, httpReq.URL, msg)
	}
	return json.NewDecoder(resp.Body).Decode(response)
}
