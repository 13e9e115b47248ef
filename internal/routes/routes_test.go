package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valeriaulyamaeva/budget-ledger/internal/auth"
	"github.com/valeriaulyamaeva/budget-ledger/internal/handlers"
	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger/ledgertest"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/internal/reports"
	"github.com/valeriaulyamaeva/budget-ledger/internal/routes"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

const adminToken = "operator-token"

type api struct {
	t      *testing.T
	engine *gin.Engine
	admin  *mux.Router
	store  *ledgertest.Store
	owner  uuid.UUID
	token  string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logging.Discard()
	store := ledgertest.New()
	svc := ledger.NewService(store, log)
	rec := ledger.NewReconciler(store, log)
	clock := func() time.Time { return time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC) }
	h := handlers.New(svc, rec, reports.NewReader(store), log, handlers.WithClock(clock))
	signer := auth.NewSigner("0123456789abcdef", "budget-ledger", time.Hour)

	owner := uuid.New()
	token, err := signer.Sign(owner)
	require.NoError(t, err)

	return &api{
		t:      t,
		engine: routes.SetupRouter(h, signer, []string{"http://localhost:3000"}, log),
		admin:  routes.SetupAdminRouter(rec, adminToken, log),
		store:  store,
		owner:  owner,
		token:  token,
	}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *api) create(path string, body any, out any) {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out))
}

func (a *api) balance(id uuid.UUID) string {
	a.t.Helper()
	w := a.do(http.MethodGet, "/api/v1/accounts/"+id.String(), nil)
	require.Equal(a.t, http.StatusOK, w.Code)
	var acc models.Account
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &acc))
	return acc.CurrentBalance.StringFixed(2)
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAPI_RequiresToken(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_CORSPreflight(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/accounts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPI_LedgerFlow(t *testing.T) {
	a := newAPI(t)

	var salary, food models.Category
	a.create("/api/v1/categories", map[string]any{"name": "Salary", "type": "income"}, &salary)
	a.create("/api/v1/categories", map[string]any{"name": "Food", "type": "expense_necessity"}, &food)

	var main, savings models.Account
	a.create("/api/v1/accounts", map[string]any{"name": "Main", "type": "checking", "initial_balance": "1000.00"}, &main)
	a.create("/api/v1/accounts", map[string]any{"name": "Savings", "type": "savings", "initial_balance": "500.00"}, &savings)
	assert.Equal(t, "EUR", main.Currency)

	var income, expense models.Transaction
	a.create("/api/v1/transactions", map[string]any{
		"account_id": main.ID, "category_id": salary.ID, "amount": "500.00", "date": "2024-03-01",
	}, &income)
	assert.Equal(t, models.Income, income.Type)
	a.create("/api/v1/transactions", map[string]any{
		"account_id": main.ID, "category_id": food.ID, "amount": "100.00", "date": "2024-03-02", "tags": []string{"Weekly"},
	}, &expense)
	assert.Equal(t, "1400.00", a.balance(main.ID))

	var tr models.Transfer
	a.create("/api/v1/transfers", map[string]any{
		"from_account_id": main.ID, "to_account_id": savings.ID, "transfer_type": "savings", "amount": "200.00", "date": "2024-03-03",
	}, &tr)
	assert.Equal(t, "1200.00", a.balance(main.ID))
	assert.Equal(t, "700.00", a.balance(savings.ID))

	w := a.do(http.MethodPut, "/api/v1/transactions/"+expense.ID.String(), map[string]any{"amount": "150.00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1150.00", a.balance(main.ID))

	w = a.do(http.MethodGet, "/api/v1/transactions?tags=weekly&start_date=2024-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, expense.ID, listed[0].ID)

	w = a.do(http.MethodGet, "/api/v1/transfers?account_id="+savings.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var transfers []models.Transfer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &transfers))
	assert.Len(t, transfers, 1)

	w = a.do(http.MethodGet, "/api/v1/analytics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary reports.SummaryReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "2024-03-01", summary.Period.From.String())
	assert.Equal(t, "500.00", summary.Totals.Income.StringFixed(2))
	assert.Equal(t, "1850.00", summary.TotalBalance.StringFixed(2))

	w = a.do(http.MethodGet, "/api/v1/accounts/integrity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"consistent": true, "discrepancies": []}`, w.Body.String())

	w = a.do(http.MethodDelete, "/api/v1/transfers/"+tr.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1350.00", a.balance(main.ID))
	assert.Equal(t, "500.00", a.balance(savings.ID))
}

func TestAPI_ErrorMapping(t *testing.T) {
	a := newAPI(t)
	var food models.Category
	a.create("/api/v1/categories", map[string]any{"name": "Food", "type": "expense_necessity"}, &food)
	var wallet, main models.Account
	a.create("/api/v1/accounts", map[string]any{"name": "Wallet", "type": "cash"}, &wallet)
	a.create("/api/v1/accounts", map[string]any{"name": "Main", "type": "checking"}, &main)

	w := a.do(http.MethodGet, "/api/v1/accounts/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/v1/accounts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"account_id": uuid.New(), "category_id": food.ID, "amount": "1.00", "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"account_id": wallet.ID, "category_id": food.ID, "amount": "-1.00", "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/v1/transfers", map[string]any{
		"from_account_id": wallet.ID, "to_account_id": main.ID, "transfer_type": "savings", "amount": "5.00", "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "source account must be of type: checking")
	assert.Equal(t, "0.00", a.balance(wallet.ID))

	w = a.do(http.MethodPost, "/api/v1/accounts/"+wallet.ID.String()+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"account_id": wallet.ID, "category_id": food.ID, "amount": "1.00", "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "inactive")

	w = a.do(http.MethodPost, "/api/v1/accounts", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/v1/analytics/daily?start_date=2024-03-05&end_date=2024-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_TransferTypesAndRules(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/api/v1/transfers/types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	require.Len(t, types, len(models.TransferTypes))
	assert.Equal(t, "generic", types[0]["value"])

	w = a.do(http.MethodGet, "/api/v1/transfers/types/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"from_account_types":["checking"]`)
}

func TestAPI_UpdateAccountKeepsBalance(t *testing.T) {
	a := newAPI(t)
	var main models.Account
	a.create("/api/v1/accounts", map[string]any{"name": "Main", "type": "checking", "initial_balance": "10.00"}, &main)

	w := a.do(http.MethodPut, "/api/v1/accounts/"+main.ID.String(), map[string]any{
		"name": "Renamed", "initial_balance": "999.00", "current_balance": "999.00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "10.00", a.balance(main.ID))
}

func TestAdmin_VerifyAndFix(t *testing.T) {
	a := newAPI(t)
	var main models.Account
	a.create("/api/v1/accounts", map[string]any{"name": "Main", "type": "checking", "initial_balance": "100.00"}, &main)
	a.store.CorruptBalance(main.ID, decimal.RequireFromString("90.00"))

	req := httptest.NewRequest(http.MethodGet, "/admin/users/"+a.owner.String()+"/integrity", nil)
	w := httptest.NewRecorder()
	a.admin.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/users/"+a.owner.String()+"/integrity?format=csv", nil)
	req.Header.Set("X-Admin-Token", adminToken)
	w = httptest.NewRecorder()
	a.admin.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Main,90.00,100.00,-10.00")

	req = httptest.NewRequest(http.MethodPost, "/admin/users/"+a.owner.String()+"/accounts/"+main.ID.String()+"/fix", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	a.admin.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "100.00", a.balance(main.ID))

	req = httptest.NewRequest(http.MethodPost, "/admin/users/"+a.owner.String()+"/fix", nil)
	req.Header.Set("X-Admin-Token", adminToken)
	w = httptest.NewRecorder()
	a.admin.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/admin/users/"+a.owner.String()+"/accounts/"+uuid.NewString()+"/fix", nil)
	req.Header.Set("X-Admin-Token", adminToken)
	w = httptest.NewRecorder()
	a.admin.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_OwnerFix(t *testing.T) {
	a := newAPI(t)
	var main models.Account
	a.create("/api/v1/accounts", map[string]any{"name": "Main", "type": "checking", "initial_balance": "100.00"}, &main)
	a.store.CorruptBalance(main.ID, decimal.RequireFromString("1.00"))

	w := a.do(http.MethodGet, "/api/v1/accounts/integrity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"consistent":false`)

	w = a.do(http.MethodPost, "/api/v1/accounts/"+main.ID.String()+"/fix", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100.00", a.balance(main.ID))
}
