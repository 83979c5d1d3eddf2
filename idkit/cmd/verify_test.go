package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mdp/qrterminal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	idkit "github.com/worldcoin/idkit-go"
	"github.com/worldcoin/idkit-go/internal/test"
)

func init() {
	logger.SetLevel(logrus.FatalLevel)
	idkit.Logger.SetLevel(logrus.FatalLevel)
}

// respond plays the part of the World App: it joins the session through the connect URL
// and posts the specified response.
func respond(t *testing.T, bridge *test.Bridge, connectURL string, response interface{}) {
	u, err := url.Parse(strings.TrimSpace(connectURL))
	require.NoError(t, err)
	id := u.Query().Get("i")
	keybts, err := base64.StdEncoding.DecodeString(u.Query().Get("k"))
	require.NoError(t, err)
	key := idkit.SessionKey(keybts)

	var encrypted idkit.EncryptedPayload
	test.HTTPGet(t, bridge.URL+"/request/"+id, http.StatusOK, &encrypted)
	_, err = idkit.DecryptPayload(key, &encrypted)
	require.NoError(t, err)

	bts, err := json.Marshal(response)
	require.NoError(t, err)
	nonce, err := idkit.GenerateNonce(nil)
	require.NoError(t, err)
	payload, err := idkit.EncryptPayload(key, nonce, bts)
	require.NoError(t, err)
	bts, err = json.Marshal(payload)
	require.NoError(t, err)
	test.HTTPPut(t, bridge.URL+"/response/"+id, string(bts), http.StatusCreated, nil)
}

func startVerify(t *testing.T, bridge *test.Bridge) (*bufio.Reader, chan *idkit.Proof, chan error) {
	bridgeURL, err := idkit.NewBridgeURL(bridge.URL)
	require.NoError(t, err)
	appID, err := idkit.NewAppID("app_staging_45068dca85829d2fd90e2dd6f0bff997")
	require.NoError(t, err)
	request := &idkit.Request{
		AppID:             appID,
		Action:            "vote",
		VerificationLevel: idkit.VerificationLevelOrb,
		BridgeURL:         bridgeURL,
	}

	r, w := io.Pipe()
	proofchan, errchan := make(chan *idkit.Proof, 1), make(chan error, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	go func() {
		proof, err := verify(ctx, w, request, 5*time.Millisecond, true)
		_ = w.Close()
		proofchan <- proof
		errchan <- err
	}()
	return bufio.NewReader(r), proofchan, errchan
}

func TestVerify(t *testing.T) {
	bridge := test.StartBridge(t)
	out, proofchan, errchan := startVerify(t, bridge)

	connectURL, err := out.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(connectURL, "https://worldcoin.org/verify?t=wld&"))

	expected := &idkit.Proof{
		Proof:          "0x01",
		MerkleRoot:     "0x02",
		NullifierHash:  "0x03",
		CredentialType: idkit.CredentialTypeOrb,
	}
	respond(t, bridge, connectURL, expected)

	require.Equal(t, expected, <-proofchan)
	require.NoError(t, <-errchan)
}

func TestVerifyRejected(t *testing.T) {
	bridge := test.StartBridge(t)
	out, proofchan, errchan := startVerify(t, bridge)

	connectURL, err := out.ReadString('\n')
	require.NoError(t, err)
	respond(t, bridge, connectURL, map[string]string{"error_code": "verification_rejected"})

	require.Nil(t, <-proofchan)
	require.ErrorIs(t, <-errchan, idkit.ErrorVerificationRejected)
}

func TestSignalCommand(t *testing.T) {
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs([]string{"signal", ""})
	require.NoError(t, RootCmd.Execute())
	require.Equal(t, idkit.EncodeSignal("")+"\n", out.String())

	out.Reset()
	RootCmd.SetArgs([]string{"version"})
	require.NoError(t, RootCmd.Execute())
	require.Contains(t, out.String(), idkit.Version)
}

func TestPrintQr(t *testing.T) {
	var out bytes.Buffer
	printQr(&out, "https://worldcoin.org/verify?t=wld", true)
	require.Equal(t, "https://worldcoin.org/verify?t=wld\n", out.String())

	out.Reset()
	printQr(&out, "https://worldcoin.org/verify?t=wld", false)
	require.Contains(t, out.String(), qrterminal.BLACK)
}
