package handlers

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/internal/reports"
)

var contentTypes = map[reports.Format]string{
	reports.FormatTable: "text/plain; charset=utf-8",
	reports.FormatJSON:  "application/json",
	reports.FormatYAML:  "application/yaml",
	reports.FormatCSV:   "text/csv",
}

// writeBody sends a rendered response. A failed write only reaches the log,
// since the status line is already out.
func writeBody(w http.ResponseWriter, log logrus.FieldLogger, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.WithError(err).WithField(logging.FieldStatus, status).Warn("Failed to write response")
	}
}

func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"Internal Server Error"}` + "\n")
	}
	writeBody(w, log, status, "application/json", buf.Bytes())
}

func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Admin request failed")
		msg = http.StatusText(status)
	}
	writeJSON(w, log, status, map[string]string{"error": msg})
}

func varID(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeJSON(w, log, http.StatusBadRequest, map[string]string{"error": "invalid " + name + " id"})
		return uuid.Nil, false
	}
	return id, true
}

// AdminToken guards the operator router with a shared token sent as
// "Authorization: Bearer <token>" or X-Admin-Token.
func AdminToken(token string, log logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Admin-Token")
			if got == "" {
				got = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, log, http.StatusUnauthorized, map[string]string{"error": "invalid admin token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VerifyOwnerHandler reports every drifted account of a user, rendered as
// ?format=json (default), yaml, csv or table.
func VerifyOwnerHandler(rec *ledger.Reconciler, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := varID(w, r, log, "user")
		if !ok {
			return
		}
		format := reports.FormatJSON
		if s := r.URL.Query().Get("format"); s != "" {
			f, err := reports.ParseFormat(s)
			if err != nil {
				writeJSON(w, log, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			format = f
		}
		report, err := rec.VerifyAll(r.Context(), owner)
		if err != nil {
			writeError(w, log, err)
			return
		}
		var buf bytes.Buffer
		if err := reports.WriteIntegrity(&buf, format, report); err != nil {
			writeError(w, log, fmt.Errorf("failed to render integrity report: %w", err))
			return
		}
		writeBody(w, log, http.StatusOK, contentTypes[format], buf.Bytes())
	}
}

// FixAccountHandler rewrites one account's stored balance from its history.
func FixAccountHandler(rec *ledger.Reconciler, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := varID(w, r, log, "user")
		if !ok {
			return
		}
		accountID, ok := varID(w, r, log, "account")
		if !ok {
			return
		}
		account, err := rec.Fix(r.Context(), owner, accountID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		log.WithFields(logrus.Fields{
			logging.FieldUserID:    owner,
			logging.FieldAccountID: accountID,
		}).Info("Operator fix completed")
		writeJSON(w, log, http.StatusOK, account)
	}
}

// FixOwnerHandler fixes every drifted account of a user and returns what changed.
func FixOwnerHandler(rec *ledger.Reconciler, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := varID(w, r, log, "user")
		if !ok {
			return
		}
		corrected, err := rec.FixAll(r.Context(), owner)
		if err != nil {
			writeError(w, log, err)
			return
		}
		log.WithFields(logrus.Fields{
			logging.FieldUserID: owner,
			logging.FieldCount:  len(corrected),
		}).Info("Operator fix completed")
		writeJSON(w, log, http.StatusOK, corrected)
	}
}

func HealthHandler(log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	}
}
