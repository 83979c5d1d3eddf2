package cmd

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	idkit "github.com/worldcoin/idkit-go"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// configuration holds the settings of the verify command, from flags, IDKIT_* environment
// variables or a configuration file, in that order of precedence.
type configuration struct {
	AppID             string        `mapstructure:"app-id"`
	Action            string        `mapstructure:"action"`
	Signal            string        `mapstructure:"signal"`
	ActionDescription string        `mapstructure:"action-description"`
	VerificationLevel string        `mapstructure:"verification-level"`
	BridgeURL         string        `mapstructure:"bridge-url"`
	PollInterval      time.Duration `mapstructure:"poll-interval"`

	NoQR    bool `mapstructure:"noqr"`
	Verbose int  `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
}

var configPaths = []string{".", "/etc/idkit"}

func readConfig(flags *pflag.FlagSet) (*configuration, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("IDKIT")
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	confpath := v.GetString("config")
	if confpath != "" {
		dir, file := filepath.Dir(confpath), filepath.Base(confpath)
		v.SetConfigName(strings.TrimSuffix(file, filepath.Ext(file)))
		v.AddConfigPath(dir)
	} else {
		v.SetConfigName("idkit")
		for _, path := range configPaths {
			v.AddConfigPath(path)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notfound := err.(viper.ConfigFileNotFoundError); !notfound || confpath != "" {
			return nil, errors.WrapPrefix(err, "Failed to read configuration file", 0)
		}
	}

	conf := &configuration{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.WrapPrefix(err, "Failed to unmarshal configuration", 0)
	}
	return conf, nil
}

// request validates the configured request parameters, reporting all problems at once.
func (conf *configuration) request() (*idkit.Request, error) {
	var (
		merr    *multierror.Error
		request = &idkit.Request{
			Action:            conf.Action,
			Signal:            conf.Signal,
			ActionDescription: conf.ActionDescription,
		}
		err error
	)

	if request.AppID, err = idkit.NewAppID(conf.AppID); err != nil {
		merr = multierror.Append(merr, err)
	}
	if conf.Action == "" {
		merr = multierror.Append(merr, idkit.ErrMissingAction)
	}
	if request.VerificationLevel, err = idkit.ParseVerificationLevel(conf.VerificationLevel); err != nil {
		merr = multierror.Append(merr, err)
	}
	if conf.BridgeURL != "" {
		if request.BridgeURL, err = idkit.NewBridgeURL(conf.BridgeURL); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if conf.PollInterval <= 0 {
		merr = multierror.Append(merr, errors.New("poll-interval must be positive"))
	}

	if err = merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return request, nil
}

// Verbosity converts the amount of -v flags into a log level.
func Verbosity(level int) logrus.Level {
	switch {
	case level == 1:
		return logrus.DebugLevel
	case level > 1:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

func newLogger(verbosity int, quiet bool) *logrus.Logger {
	logger := logrus.New()
	logger.Level = Verbosity(verbosity)
	logger.Formatter = &prefixed.TextFormatter{FullTimestamp: true}
	if quiet {
		logger.Out = io.Discard
	}
	return logger
}
