package idkit

import (
	"context"
	"encoding/base64"
	"io"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	canonicaljson "github.com/gibson042/canonicaljson-go"
	"github.com/go-errors/errors"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	connectBaseURL = "https://worldcoin.org/verify"

	// DefaultPollInterval is the time between two polls of the bridge.
	DefaultPollInterval = 3 * time.Second
)

var ErrMissingAction = errors.New("missing action")

// Request is what an app asks the World App to prove.
type Request struct {
	AppID  AppID
	Action string
	// Signal is committed to in the proof; it is encoded with EncodeSignal before sending.
	Signal string
	// ActionDescription is shown to the user; optional.
	ActionDescription string
	VerificationLevel VerificationLevel
	// BridgeURL defaults to DefaultBridgeURL.
	BridgeURL BridgeURL
}

// RequestPayload is the plaintext of the encrypted request sent through the bridge.
type RequestPayload struct {
	AppID             string            `json:"app_id"`
	Action            string            `json:"action"`
	Signal            string            `json:"signal"`
	ActionDescription *string           `json:"action_description"`
	VerificationLevel VerificationLevel `json:"verification_level"`
	CredentialTypes   []CredentialType  `json:"credential_types"`
}

// Validate checks that the request can be sent, normalizing its verification level.
func (r *Request) Validate() error {
	if r.AppID.IsZero() {
		return newSessionError(ErrorMalformedRequest, errors.Errorf("%w: missing", ErrInvalidAppID))
	}
	if r.Action == "" {
		return newSessionError(ErrorMalformedRequest, ErrMissingAction)
	}
	level, err := ParseVerificationLevel(string(r.VerificationLevel))
	if err != nil {
		return newSessionError(ErrorMalformedRequest, err)
	}
	r.VerificationLevel = level
	return nil
}

// Payload returns the plaintext payload of the request.
func (r *Request) Payload() *RequestPayload {
	p := &RequestPayload{
		AppID:             r.AppID.String(),
		Action:            r.Action,
		Signal:            EncodeSignal(r.Signal),
		VerificationLevel: r.VerificationLevel,
		CredentialTypes:   r.VerificationLevel.CredentialTypes(),
	}
	if r.ActionDescription != "" {
		desc := r.ActionDescription
		p.ActionDescription = &desc
	}
	return p
}

// Session is a single request for a proof. It owns the session key and the request ID
// for its entire lifetime; neither is ever reused.
type Session struct {
	key       SessionKey
	requestID RequestID
	bridgeURL BridgeURL
	bridge    Bridge

	clock        clockwork.Clock
	pollInterval time.Duration
	polling      atomic.Bool
}

type sessionOptions struct {
	bridge       Bridge
	clock        clockwork.Clock
	pollInterval time.Duration
	random       io.Reader
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

// WithBridge makes the session use the specified Bridge instead of a BridgeClient
// for the request's bridge URL.
func WithBridge(bridge Bridge) SessionOption {
	return func(o *sessionOptions) {
		o.bridge = bridge
	}
}

// WithClock sets the clock used to schedule polls.
func WithClock(clock clockwork.Clock) SessionOption {
	return func(o *sessionOptions) {
		o.clock = clock
	}
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(interval time.Duration) SessionOption {
	return func(o *sessionOptions) {
		o.pollInterval = interval
	}
}

// WithRandom sets the source of the session key and nonce. Defaults to crypto/rand.
func WithRandom(random io.Reader) SessionOption {
	return func(o *sessionOptions) {
		o.random = random
	}
}

// NewSession encrypts the request under a fresh session key and submits it to the bridge.
func NewSession(ctx context.Context, request *Request, opts ...SessionOption) (*Session, error) {
	options := sessionOptions{
		clock:        clockwork.NewRealClock(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	plaintext, err := canonicaljson.Marshal(request.Payload())
	if err != nil {
		return nil, newSessionError(ErrorMalformedRequest, errors.WrapPrefix(err, "failed to serialize request", 0))
	}
	key, err := GenerateSessionKey(options.random)
	if err != nil {
		return nil, newSessionError(ErrorGenericError, err)
	}
	nonce, err := GenerateNonce(options.random)
	if err != nil {
		return nil, newSessionError(ErrorGenericError, err)
	}
	encrypted, err := EncryptPayload(key, nonce, plaintext)
	if err != nil {
		return nil, newSessionError(ErrorGenericError, err)
	}

	bridge := options.bridge
	if bridge == nil {
		bridge = NewBridgeClient(request.BridgeURL)
	}
	id, err := bridge.CreateRequest(ctx, encrypted)
	if err != nil {
		if !errors.Is(err, ErrorConnectionFailed) {
			err = newSessionError(ErrorConnectionFailed, err)
		}
		return nil, err
	}

	Logger.WithFields(logrus.Fields{"request": id, "app": request.AppID}).Debug("request created")
	return &Session{
		key:          key,
		requestID:    id,
		bridgeURL:    request.BridgeURL,
		bridge:       bridge,
		clock:        options.clock,
		pollInterval: options.pollInterval,
	}, nil
}

func (s *Session) RequestID() RequestID {
	return s.requestID
}

func (s *Session) BridgeURL() BridgeURL {
	return s.bridgeURL
}

// ConnectURL returns the URL with which the World App joins the session. It contains
// the session key: show it only to the user, e.g. as a QR code, and never log it.
func (s *Session) ConnectURL() string {
	var b strings.Builder
	b.WriteString(connectBaseURL)
	b.WriteString("?t=wld")
	b.WriteString("&i=" + url.QueryEscape(s.requestID.String()))
	b.WriteString("&k=" + url.QueryEscape(base64.StdEncoding.EncodeToString(s.key[:])))
	if !s.bridgeURL.IsDefault() {
		b.WriteString("&b=" + url.QueryEscape(s.bridgeURL.String()))
	}
	return b.String()
}
