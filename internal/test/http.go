// Package test contains functionality that should be available to
// all unit tests (which live in separate packages).
package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func HTTPPut(t *testing.T, url, body string, expectedStatus int, result interface{}) {
	httpDo(t, url, http.MethodPut, body, expectedStatus, result)
}

func HTTPGet(t *testing.T, url string, expectedStatus int, result interface{}) {
	httpDo(t, url, http.MethodGet, "", expectedStatus, result)
}

func httpDo(t *testing.T, url, method, body string, expectedStatus int, result interface{}) {
	var buf io.Reader
	if body != "" {
		buf = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, res.StatusCode)

	if result != nil {
		bts, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
			require.NoError(t, json.Unmarshal(bts, result))
		} else {
			require.IsType(t, &bts, result)
			*result.(*[]byte) = bts
		}
	}

	require.NoError(t, res.Body.Close())
}
