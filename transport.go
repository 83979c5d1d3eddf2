package idkit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/worldcoin/idkit-go/internal/common"
)

const (
	requestTimeout = 30 * time.Second

	// maxResponseSize bounds the bridge responses that are read into memory.
	maxResponseSize = 1 << 20
)

var ErrResponseTooLarge = errors.New("response too large")

// HTTPTransport sends and receives JSON messages to a HTTP server.
type HTTPTransport struct {
	Server  string
	client  *retryablehttp.Client
	headers http.Header
}

// Logger is used for logging. init() sets it to a logger with the prefixed text formatter; use SetLogger to replace it.
var Logger *logrus.Logger

var transportlogger *log.Logger

func init() {
	logger := logrus.New()
	logger.SetFormatter(&prefixed.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	SetLogger(logger)
}

func SetLogger(logger *logrus.Logger) {
	Logger = logger
	common.Logger = Logger
}

// NewHTTPTransport returns a new HTTPTransport.
func NewHTTPTransport(serverURL string) *HTTPTransport {
	if Logger.IsLevelEnabled(logrus.TraceLevel) {
		transportlogger = log.New(Logger.WriterLevel(logrus.TraceLevel), "transport: ", 0)
	} else {
		transportlogger = log.New(io.Discard, "", 0)
	}

	if serverURL != "" && !strings.HasSuffix(serverURL, "/") {
		serverURL += "/"
	}

	client := &retryablehttp.Client{
		Logger:       transportlogger,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 200 * time.Millisecond,
		RetryMax:     2,
		Backoff:      retryablehttp.DefaultBackoff,
		CheckRetry: func(ctx context.Context, resp *http.Response, err error) (bool, error) {
			if cerr := ctx.Err(); cerr != nil {
				return false, cerr
			}
			// Only retry on connection errors, not on any response of the bridge
			return err != nil || resp.StatusCode == 0, err
		},
		HTTPClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
	}

	headers := http.Header{}
	headers.Set("User-Agent", "idkit-go/"+Version)
	return &HTTPTransport{
		Server:  serverURL,
		headers: headers,
		client:  client,
	}
}

func (transport *HTTPTransport) log(prefix string, message interface{}) {
	if !Logger.IsLevelEnabled(logrus.TraceLevel) {
		return // do nothing if nothing would be printed anyway
	}
	var str string
	switch s := message.(type) {
	case []byte:
		str = string(s)
	case string:
		str = s
	default:
		tmp, _ := json.Marshal(message)
		str = string(tmp)
	}
	Logger.Tracef("transport: %s: %s", prefix, str)
}

// SetHeader sets a header to be sent in requests.
func (transport *HTTPTransport) SetHeader(name, val string) {
	transport.headers.Set(name, val)
}

func (transport *HTTPTransport) request(
	ctx context.Context,
	url string,
	method string,
	reader io.Reader,
	contenttype string,
) (response *http.Response, err error) {
	u := transport.Server + url

	// retryablehttp buffers the body so that it can be resent on each attempt
	var body interface{}
	if reader != nil {
		body = reader
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, newSessionError(ErrorGenericError, errors.WrapPrefix(err, "failed to create request", 0))
	}
	req.Header = transport.headers.Clone()
	req.Header.Set("Accept", "application/json")
	if reader != nil && contenttype != "" {
		req.Header.Set("Content-Type", contenttype)
	}
	Logger.Debugf("bridge call: %s %s", method, u)
	res, err := transport.client.Do(req)
	if err != nil {
		return nil, newSessionError(ErrorGenericError, errors.WrapPrefix(err, "transport error", 0))
	}
	return res, nil
}

func (transport *HTTPTransport) jsonRequest(ctx context.Context, url string, method string, result interface{}, object interface{}) error {
	if method != http.MethodPost && method != http.MethodGet {
		panic("Unsupported HTTP method " + method)
	}
	if method == http.MethodGet && object != nil {
		panic("Cannot GET and also post an object")
	}

	var reader io.Reader
	var contenttype string
	if object != nil {
		marshaled, err := json.Marshal(object)
		if err != nil {
			return newSessionError(ErrorGenericError, errors.WrapPrefix(err, "failed to serialize request", 0))
		}
		transport.log("body", marshaled)
		contenttype = "application/json; charset=UTF-8"
		reader = bytes.NewBuffer(marshaled)
	}

	res, err := transport.request(ctx, url, method, reader, contenttype)
	if err != nil {
		return err
	}
	defer common.Close(res.Body)

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize+1))
	if err != nil {
		return &SessionError{AppError: ErrorGenericError, Err: errors.WrapPrefix(err, "failed to read response", 0), RemoteStatus: res.StatusCode}
	}
	if len(body) > maxResponseSize {
		return &SessionError{AppError: ErrorGenericError, Err: ErrResponseTooLarge, RemoteStatus: res.StatusCode}
	}
	transport.log("response", body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &SessionError{
			AppError:     ErrorGenericError,
			Err:          errors.Errorf("unexpected status %s", res.Status),
			RemoteStatus: res.StatusCode,
		}
	}
	if result == nil { // caller doesn't care about server response
		return nil
	}
	if res.StatusCode == http.StatusNoContent {
		return &SessionError{
			AppError:     ErrorGenericError,
			Err:          errors.New("'204 No Content' received, but result was expected"),
			RemoteStatus: res.StatusCode,
		}
	}
	if err = json.Unmarshal(body, result); err != nil {
		return &SessionError{AppError: ErrorGenericError, Err: errors.WrapPrefix(err, "failed to parse response", 0), RemoteStatus: res.StatusCode}
	}
	return nil
}

// Post sends the object to the server and parses its response into result.
func (transport *HTTPTransport) Post(ctx context.Context, url string, result interface{}, object interface{}) error {
	return transport.jsonRequest(ctx, url, http.MethodPost, result, object)
}

// Get performs a GET request and parses the server's response into result.
func (transport *HTTPTransport) Get(ctx context.Context, url string, result interface{}) error {
	return transport.jsonRequest(ctx, url, http.MethodGet, result, nil)
}
