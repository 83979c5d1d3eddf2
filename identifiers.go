package idkit

import (
	"net"
	"net/url"
	"strings"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

const (
	appIDPrefix        = "app_"
	stagingAppIDPrefix = "app_staging_"
)

var (
	ErrInvalidAppID             = errors.New("invalid app ID")
	ErrInvalidBridgeURL         = errors.New("invalid bridge URL")
	ErrInvalidVerificationLevel = errors.New("invalid verification level")
	ErrInvalidRequestID         = errors.New("invalid request ID")
)

// AppID identifies the application requesting a proof, as registered in the
// developer portal.
type AppID struct {
	id      string
	staging bool
}

func NewAppID(id string) (AppID, error) {
	if !strings.HasPrefix(id, appIDPrefix) {
		return AppID{}, errors.Errorf("%w: %q does not start with %s", ErrInvalidAppID, id, appIDPrefix)
	}
	return AppID{id: id, staging: strings.HasPrefix(id, stagingAppIDPrefix)}, nil
}

func (id AppID) String() string {
	return id.id
}

// IsStaging returns true for app IDs of the staging environment.
func (id AppID) IsStaging() bool {
	return id.staging
}

func (id AppID) IsZero() bool {
	return id.id == ""
}

// DefaultBridgeURL is the bridge operated by Worldcoin.
var DefaultBridgeURL = BridgeURL{url: "https://bridge.worldcoin.org"}

// BridgeURL is the validated base URL of a bridge: https, a bare host and nothing else.
// Loopback hosts may use http and an explicit port, for local testing.
type BridgeURL struct {
	url string
}

func NewBridgeURL(s string) (BridgeURL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return BridgeURL{}, errors.Errorf("%w: %v", ErrInvalidBridgeURL, err)
	}

	loopback := isLoopback(u.Hostname())
	var merr multierror.Error
	violation := func(msg string) {
		merr.Errors = append(merr.Errors, errors.Errorf("%w %q: %s", ErrInvalidBridgeURL, s, msg))
	}
	if u.Scheme != "https" && !(loopback && u.Scheme == "http") {
		violation("must use https")
	}
	if u.Host == "" {
		violation("missing host")
	}
	if u.User != nil {
		violation("must not contain credentials")
	}
	if u.Port() != "" && !loopback {
		violation("must not specify a port")
	}
	if u.Path != "" && u.Path != "/" {
		violation("must not have a path")
	}
	if u.RawQuery != "" || u.ForceQuery {
		violation("must not have a query string")
	}
	if u.Fragment != "" {
		violation("must not have a fragment")
	}
	if err := merr.ErrorOrNil(); err != nil {
		return BridgeURL{}, err
	}

	return BridgeURL{url: u.Scheme + "://" + u.Host}, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// String returns the URL without trailing slash.
func (b BridgeURL) String() string {
	if b.url == "" {
		return DefaultBridgeURL.url
	}
	return b.url
}

func (b BridgeURL) IsDefault() bool {
	return b.String() == DefaultBridgeURL.url
}

// VerificationLevel is the minimum credential tier acceptable to the requesting app.
type VerificationLevel string

const (
	VerificationLevelOrb    = VerificationLevel("orb")
	VerificationLevelDevice = VerificationLevel("device")
)

func ParseVerificationLevel(s string) (VerificationLevel, error) {
	switch l := VerificationLevel(strings.ToLower(s)); l {
	case VerificationLevelOrb, VerificationLevelDevice:
		return l, nil
	}
	return "", errors.Errorf("%w: %q", ErrInvalidVerificationLevel, s)
}

// CredentialTypes returns the credential types that satisfy the verification level.
func (l VerificationLevel) CredentialTypes() []CredentialType {
	if l == VerificationLevelOrb {
		return []CredentialType{CredentialTypeOrb}
	}
	return []CredentialType{CredentialTypeOrb, CredentialTypeDevice}
}

// CredentialType is the kind of credential a proof was generated with.
type CredentialType string

const (
	CredentialTypeOrb    = CredentialType("orb")
	CredentialTypeDevice = CredentialType("device")
)

func (c CredentialType) valid() bool {
	return c == CredentialTypeOrb || c == CredentialTypeDevice
}

// RequestID is assigned by the bridge to an encrypted request.
type RequestID struct {
	uuid.UUID
}

func ParseRequestID(s string) (RequestID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RequestID{}, errors.Errorf("%w: %v", ErrInvalidRequestID, err)
	}
	return RequestID{UUID: id}, nil
}
