package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	Log.SetOutput(os.Stdout)
	Log.SetLevel(logrus.InfoLevel)
}

// SetDebug switches diagnostic output on or off
func SetDebug(enabled bool) {
	if enabled {
		Log.SetLevel(logrus.DebugLevel)
		return
	}
	Log.SetLevel(logrus.InfoLevel)
}

// DebugEnabled reports whether diagnostic output is currently logged
func DebugEnabled() bool {
	return Log.IsLevelEnabled(logrus.DebugLevel)
}

// SetOutput redirects log lines, e.g. away from stdout while the console owns it
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}
