package idkit

import (
	"context"
)

// BridgeStatus is the status of a request as reported by the bridge.
type BridgeStatus string

const (
	BridgeStatusInitialized = BridgeStatus("initialized") // World App has not yet fetched the request
	BridgeStatusRetrieved   = BridgeStatus("retrieved")   // World App fetched the request, user is deciding
	BridgeStatusCompleted   = BridgeStatus("completed")   // World App posted a response
)

// BridgeResponse is the bridge's answer to a poll. Response is only present
// when Status is completed.
type BridgeResponse struct {
	Status   BridgeStatus      `json:"status"`
	Response *EncryptedPayload `json:"response"`
}

// Bridge relays encrypted requests to the World App and its encrypted responses back.
// It never sees plaintext.
type Bridge interface {
	// CreateRequest submits an encrypted request. Any failure is a *SessionError
	// with ErrorConnectionFailed.
	CreateRequest(ctx context.Context, payload *EncryptedPayload) (RequestID, error)

	// PollRequest fetches the current status of the request.
	PollRequest(ctx context.Context, id RequestID) (*BridgeResponse, error)
}

// BridgeClient implements Bridge over HTTP.
type BridgeClient struct {
	url       BridgeURL
	transport *HTTPTransport
}

var _ Bridge = (*BridgeClient)(nil)

func NewBridgeClient(url BridgeURL) *BridgeClient {
	return &BridgeClient{
		url:       url,
		transport: NewHTTPTransport(url.String()),
	}
}

func (c *BridgeClient) URL() BridgeURL {
	return c.url
}

func (c *BridgeClient) CreateRequest(ctx context.Context, payload *EncryptedPayload) (RequestID, error) {
	var res struct {
		RequestID string `json:"request_id"`
	}
	if err := c.transport.Post(ctx, "request", &res, payload); err != nil {
		if serr, ok := err.(*SessionError); ok {
			return RequestID{}, &SessionError{AppError: ErrorConnectionFailed, Err: serr.Err, RemoteStatus: serr.RemoteStatus}
		}
		return RequestID{}, newSessionError(ErrorConnectionFailed, err)
	}
	id, err := ParseRequestID(res.RequestID)
	if err != nil {
		return RequestID{}, newSessionError(ErrorConnectionFailed, err)
	}
	return id, nil
}

func (c *BridgeClient) PollRequest(ctx context.Context, id RequestID) (*BridgeResponse, error) {
	res := &BridgeResponse{}
	if err := c.transport.Get(ctx, "response/"+id.String(), res); err != nil {
		return nil, err
	}
	return res, nil
}
