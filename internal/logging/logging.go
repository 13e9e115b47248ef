// Package logging builds the process logger. Components receive a
// logrus.FieldLogger and attach the standard fields below.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/valeriaulyamaeva/budget-ledger/internal/config"
)

// Standard field names for structured log output.
const (
	FieldUserID        = "user_id"
	FieldAccountID     = "account_id"
	FieldAccountName   = "account_name"
	FieldTransactionID = "transaction_id"
	FieldTransferID    = "transfer_id"
	FieldCategoryID    = "category_id"
	FieldOperation     = "operation"
	FieldStored        = "stored"
	FieldRecomputed    = "recomputed"
	FieldDifference    = "difference"
	FieldCount         = "count"
	FieldStatus        = "status"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldDuration      = "duration_ms"
	FieldComponent     = "component"
)

// New returns a logger writing to stderr with the configured level and format.
// An unknown level falls back to info.
func New(cfg config.Log) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

func NewWithOutput(cfg config.Log, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", cfg.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Discard returns a logger that drops everything, for tests and dry runs.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
