package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
	"paisa/internal/pagination"
	"paisa/internal/services"
)

type mockTransactionService struct {
	createTransactionFn func(in services.TransactionInput) (*models.Transaction, error)
	createTransferFn    func(fromAccountID, toAccountID string, amount int64, date time.Time, description, notes string) (*models.Transaction, error)
	getTransactionsFn   func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	deleteTransactionFn func(id string) error
	bulkTagFn           func(ids []string, categoryID, payeeAccountID *string) (int, error)
}

func (m *mockTransactionService) CreateTransaction(in services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) CreateTransfer(fromAccountID, toAccountID string, amount int64, date time.Time, description, notes string) (*models.Transaction, error) {
	if m.createTransferFn != nil {
		return m.createTransferFn(fromAccountID, toAccountID, amount, date, description, notes)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsFn != nil {
		return m.getTransactionsFn(page, filter)
	}
	return &pagination.PageResponse[models.Transaction]{}, nil
}

func (m *mockTransactionService) GetTransactionByID(id string) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(id string, in services.TransactionUpdate) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(id string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(id)
	}
	return nil
}

func (m *mockTransactionService) BulkTag(ids []string, categoryID, payeeAccountID *string) (int, error) {
	if m.bulkTagFn != nil {
		return m.bulkTagFn(ids, categoryID, payeeAccountID)
	}
	return len(ids), nil
}

func (m *mockTransactionService) SaveImported(accountID string, rows []services.StatementRow) (*services.ImportResult, error) {
	return &services.ImportResult{Imported: len(rows)}, nil
}

func newTransactionRouter(svc services.TransactionServicer) *gin.Engine {
	h := NewTransactionHandler(svc)
	router := gin.New()
	router.POST("/transactions", h.CreateTransaction)
	router.POST("/transactions/transfer", h.CreateTransfer)
	router.GET("/transactions", h.ListTransactions)
	router.DELETE("/transactions/:id", h.DeleteTransaction)
	router.POST("/transactions/bulk-tag", h.BulkTag)
	return router
}

func TestTransactionHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got services.TransactionInput
		svc := &mockTransactionService{
			createTransactionFn: func(in services.TransactionInput) (*models.Transaction, error) {
				got = in
				return &models.Transaction{Amount: in.Amount, Type: in.Type}, nil
			},
		}
		router := newTransactionRouter(svc)

		body := `{"account_id":"acc-1","type":"expense","amount":45050,"description":"Coffee","date":"2026-08-01"}`
		w := performRequest(router, http.MethodPost, "/transactions", body, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if got.Amount != 45050 || got.Type != models.TransactionTypeExpense {
			t.Errorf("unexpected input passed to service: %+v", got)
		}
		if got.Date.Format("2006-01-02") != "2026-08-01" {
			t.Errorf("expected parsed date 2026-08-01, got %v", got.Date)
		}
	})

	t.Run("transfer_type_fails_binding", func(t *testing.T) {
		router := newTransactionRouter(&mockTransactionService{})

		body := `{"account_id":"acc-1","type":"transfer","amount":100}`
		w := performRequest(router, http.MethodPost, "/transactions", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for transfer type, got %d", w.Code)
		}
	})

	t.Run("zero_amount_fails_binding", func(t *testing.T) {
		router := newTransactionRouter(&mockTransactionService{})

		body := `{"account_id":"acc-1","type":"expense","amount":0}`
		w := performRequest(router, http.MethodPost, "/transactions", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for zero amount, got %d", w.Code)
		}
	})

	t.Run("bad_date", func(t *testing.T) {
		router := newTransactionRouter(&mockTransactionService{})

		body := `{"account_id":"acc-1","type":"expense","amount":100,"date":"01/08/2026"}`
		w := performRequest(router, http.MethodPost, "/transactions", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unparseable date, got %d", w.Code)
		}
	})
}

func TestTransactionHandler_CreateTransfer(t *testing.T) {
	t.Run("same_account", func(t *testing.T) {
		svc := &mockTransactionService{
			createTransferFn: func(string, string, int64, time.Time, string, string) (*models.Transaction, error) {
				return nil, apperrors.ErrSameAccountTransfer
			},
		}
		router := newTransactionRouter(svc)

		body := `{"from_account_id":"acc-1","to_account_id":"acc-1","amount":100}`
		w := performRequest(router, http.MethodPost, "/transactions/transfer", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "SAME_ACCOUNT_TRANSFER" {
			t.Errorf("expected SAME_ACCOUNT_TRANSFER, got %s", code)
		}
	})
}

func TestTransactionHandler_List(t *testing.T) {
	t.Run("passes_filters_through", func(t *testing.T) {
		var gotPage pagination.PageRequest
		var gotFilter services.TransactionFilter
		svc := &mockTransactionService{
			getTransactionsFn: func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotPage, gotFilter = page, filter
				return &pagination.PageResponse[models.Transaction]{Data: []models.Transaction{}}, nil
			},
		}
		router := newTransactionRouter(svc)

		w := performRequest(router, http.MethodGet,
			"/transactions?page=2&page_size=10&account_id=acc-1&type=expense&untagged=true&from_date=2026-08-01", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 10 {
			t.Errorf("unexpected page request: %+v", gotPage)
		}
		if gotFilter.AccountID == nil || *gotFilter.AccountID != "acc-1" {
			t.Error("expected account filter passed through")
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TransactionTypeExpense {
			t.Error("expected type filter passed through")
		}
		if !gotFilter.Untagged {
			t.Error("expected untagged filter passed through")
		}
		if gotFilter.FromDate == nil {
			t.Error("expected from_date filter passed through")
		}
	})

	t.Run("invalid_type_fails_binding", func(t *testing.T) {
		router := newTransactionRouter(&mockTransactionService{})

		w := performRequest(router, http.MethodGet, "/transactions?type=refund", "", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for invalid type filter, got %d", w.Code)
		}
	})
}

func TestTransactionHandler_Delete(t *testing.T) {
	svc := &mockTransactionService{
		deleteTransactionFn: func(id string) error {
			if id != "txn-1" {
				return apperrors.ErrTransactionNotFound
			}
			return nil
		},
	}
	router := newTransactionRouter(svc)

	w := performRequest(router, http.MethodDelete, "/transactions/txn-1", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = performRequest(router, http.MethodDelete, "/transactions/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestTransactionHandler_BulkTag(t *testing.T) {
	t.Run("returns_updated_count", func(t *testing.T) {
		router := newTransactionRouter(&mockTransactionService{})

		body := `{"transaction_ids":["a","b","c"],"category_id":"cat-1"}`
		w := performRequest(router, http.MethodPost, "/transactions/bulk-tag", body, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Updated int `json:"updated"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if resp.Updated != 3 {
			t.Errorf("expected 3 updated, got %d", resp.Updated)
		}
	})

	t.Run("empty_ids_fails_binding", func(t *testing.T) {
		router := newTransactionRouter(&mockTransactionService{})

		w := performRequest(router, http.MethodPost, "/transactions/bulk-tag", `{"transaction_ids":[]}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for empty id list, got %d", w.Code)
		}
	})
}
