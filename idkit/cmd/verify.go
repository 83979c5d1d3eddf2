package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-errors/errors"
	"github.com/mdp/qrterminal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	idkit "github.com/worldcoin/idkit-go"
	"golang.org/x/term"
)

var logger = newLogger(0, false)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Request a proof of personhood from the World App",
	Long: `Request a proof of personhood from the World App

The request is encrypted and sent to the bridge; the URL with which the World App joins the
session is printed as a QR code (or as text with --noqr, or when stdout is not a terminal).
Status changes are logged until the user accepts or rejects the request. On success the proof
is printed as JSON, to be verified by the backend of the app.

All flags can also be set as environment variables prefixed with IDKIT_ (e.g. IDKIT_APP_ID),
or in a configuration file.`,
	Example: `idkit verify --app-id app_staging_45068dca85829d2fd90e2dd6f0bff997 --action vote --signal 0x12312
idkit verify --app-id app_ce4cb73276d954d7fe5a9ae7bd8ff7ad --action login --verification-level orb --noqr
idkit verify --config ./idkit.yml --bridge-url http://localhost:8000`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := readConfig(cmd.Flags())
		if err != nil {
			die("Failed to read configuration", err)
		}
		logger = newLogger(conf.Verbose, conf.Quiet)
		idkit.SetLogger(logger)

		request, err := conf.request()
		if err != nil {
			die("Invalid request", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		noqr := conf.NoQR || !term.IsTerminal(int(os.Stdout.Fd()))
		proof, err := verify(ctx, cmd.OutOrStdout(), request, conf.PollInterval, noqr)
		if err != nil {
			die("Verification failed", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), prettyprint(proof))
	},
}

func verify(ctx context.Context, out io.Writer, request *idkit.Request, interval time.Duration, noqr bool) (*idkit.Proof, error) {
	session, err := idkit.NewSession(ctx, request, idkit.WithPollInterval(interval))
	if err != nil {
		return nil, err
	}
	logger.WithField("request", session.RequestID()).Info("Session started")
	printQr(out, session.ConnectURL(), noqr)

	statuschan, err := session.Status(ctx)
	if err != nil {
		return nil, err
	}
	for status := range statuschan {
		logger.WithField("request", session.RequestID()).Info("Status: ", status)
		switch status.Kind {
		case idkit.StatusConfirmed:
			return status.Proof, nil
		case idkit.StatusFailed:
			if status.Err != nil {
				logger.WithFields(logrus.Fields{"request": session.RequestID()}).Debug("Cause: ", status.Err)
			}
			return nil, *status.Error
		}
	}
	if err = ctx.Err(); err == nil {
		err = errors.New("status stream ended unexpectedly")
	}
	return nil, errors.WrapPrefix(err, "Session aborted", 0)
}

func printQr(out io.Writer, connectURL string, noqr bool) {
	if noqr {
		fmt.Fprintln(out, connectURL)
		return
	}
	qrterminal.GenerateWithConfig(connectURL, qrterminal.Config{
		Level:     qrterminal.L,
		Writer:    out,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
	})
}

func prettyprint(ob interface{}) string {
	b, err := json.MarshalIndent(ob, "", "  ")
	if err != nil {
		fmt.Println("error:", err)
	}
	return string(b)
}

func init() {
	RootCmd.AddCommand(verifyCmd)

	flags := verifyCmd.Flags()
	flags.SortFlags = false
	flags.StringP("config", "c", "", "path to configuration file")

	flags.StringP("app-id", "a", "", "app ID from the Developer Portal (app_...)")
	flags.String("action", "", "action the proof is scoped to")
	flags.StringP("signal", "s", "", "signal committed to in the proof")
	flags.String("action-description", "", "description of the action shown to the user")
	flags.StringP("verification-level", "l", string(idkit.VerificationLevelOrb), "minimum verification level (orb, device)")

	flags.String("bridge-url", idkit.DefaultBridgeURL.String(), "URL of the bridge relaying the request")
	flags.Duration("poll-interval", idkit.DefaultPollInterval, "time between polls of the bridge")

	flags.Bool("noqr", false, "print the connect URL instead of a QR code")
	flags.CountP("verbose", "v", "verbose (repeatable)")
	flags.BoolP("quiet", "q", false, "quiet")

	flagHeaders["idkit verify"] = map[string]string{
		"config":     "Configuration",
		"app-id":     "Request",
		"bridge-url": "Bridge",
		"noqr":       "Output",
	}
	verifyCmd.SetUsageTemplate(headerFlagsTemplate)
}
