package main

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/solcore/flowrt/cmd/flowrun/cmd"
)

const sentryFlushTimeout = 2 * time.Second

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if dsn := os.Getenv("FLOWRUN_SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			logrus.WithError(err).Warn("failed to init Sentry")
		}
		defer sentry.Flush(sentryFlushTimeout)
	}
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			sentry.Flush(sentryFlushTimeout)
			panic(r)
		}
	}()

	if err := cmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("flowrun failed")
	}
}
