package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dealership/internal/adapter/http/handlers/mocks"
	"dealership/internal/adapter/http/middleware"
	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"
	"dealership/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const testCPF = "52998224725"

var testCustomer = entities.Customer{Name: "Maria Silva", CPF: testCPF}

func sampleSale(status entities.SaleStatus) entities.SaleOrder {
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	s := entities.SaleOrder{
		ID:           "sale-1",
		CustomerName: testCustomer.Name,
		CustomerCPF:  valueobjects.MustCPF(testCPF),
		VehicleVIN:   "9BWZZZ377VT004251",
		VehicleID:    "veh-1",
		SalePrice:    decimal.RequireFromString("96000"),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if status == entities.SaleStatusCompleted {
		s.CompletedAt = now
	}
	return s
}

func withCustomer(customer entities.Customer) gin.HandlerFunc {
	return middleware.Identity(func(*gin.Context) (entities.Customer, error) {
		return customer, nil
	}, zap.NewNop())
}

func TestSaleHandler_CreateSale(t *testing.T) {
	const body = `{"vehicle_vin":"9BWZZZ377VT004251","sale_price":96000}`

	t.Run("missing identity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewSaleHandler(mocks.NewMockISaleUseCase(ctrl), zap.NewNop())
		r := gin.New()
		r.POST("/v1/sales", h.CreateSale)

		req := httptest.NewRequest(http.MethodPost, "/v1/sales", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("missing vin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewSaleHandler(mocks.NewMockISaleUseCase(ctrl), zap.NewNop())
		r := gin.New()
		r.POST("/v1/sales", withCustomer(testCustomer), h.CreateSale)

		req := httptest.NewRequest(http.MethodPost, "/v1/sales", bytes.NewBufferString(`{"sale_price":96000}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("vehicle not available", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)
		h := NewSaleHandler(uc, zap.NewNop())
		r := gin.New()
		r.POST("/v1/sales", withCustomer(testCustomer), h.CreateSale)

		msg := "vehicle with VIN 9BWZZZ377VT004251 is not available for sale"
		uc.EXPECT().CreateSale(gomock.Any(), testCustomer, "9BWZZZ377VT004251", gomock.Any()).
			Return(entities.SaleOrder{}, fmt.Errorf("%w: %s", entities.ErrSaleInvalid, msg))

		req := httptest.NewRequest(http.MethodPost, "/v1/sales", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var res map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if res["code"] != "SALE_INVALID" || !bytes.Contains(w.Body.Bytes(), []byte("not available")) {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)
		h := NewSaleHandler(uc, zap.NewNop())
		r := gin.New()
		r.POST("/v1/sales", withCustomer(testCustomer), h.CreateSale)

		uc.EXPECT().CreateSale(gomock.Any(), testCustomer, "9BWZZZ377VT004251", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ entities.Customer, _ string, price decimal.Decimal) (entities.SaleOrder, error) {
				if !price.Equal(decimal.NewFromInt(96000)) {
					t.Fatalf("unexpected price %s", price)
				}
				return sampleSale(entities.SaleStatusPending), nil
			})

		req := httptest.NewRequest(http.MethodPost, "/v1/sales", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var res map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if res["id"] != "sale-1" || res["status"] != "PENDING" || res["customer_cpf"] != "529.982.247-25" {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
		if _, ok := res["completed_at"]; ok {
			t.Fatalf("pending sale must not expose completed_at: %s", w.Body.String())
		}
	})
}

func TestSaleHandler_Queries(t *testing.T) {
	newRouter := func(uc *mocks.MockISaleUseCase) *gin.Engine {
		h := NewSaleHandler(uc, zap.NewNop())
		r := gin.New()
		r.GET("/v1/sales", h.ListSales)
		r.GET("/v1/sales/:id", h.GetSale)
		return r
	}

	t.Run("get not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)
		r := newRouter(uc)

		uc.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.SaleOrder{}, usecase.ErrSaleNotFound)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sales/missing", nil))

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("list all", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)
		r := newRouter(uc)

		uc.EXPECT().ListAll(gomock.Any()).Return([]entities.SaleOrder{
			sampleSale(entities.SaleStatusPending),
			sampleSale(entities.SaleStatusCompleted),
		}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sales", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var res []map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if len(res) != 2 {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
	})

	t.Run("filter by cpf", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)
		r := newRouter(uc)

		uc.EXPECT().ListByCustomerCPF(gomock.Any(), "529.982.247-25").Return([]entities.SaleOrder{sampleSale(entities.SaleStatusPending)}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sales?cpf=529.982.247-25", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("invalid cpf filter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)
		r := newRouter(uc)

		uc.EXPECT().ListByCustomerCPF(gomock.Any(), "123").
			Return(nil, fmt.Errorf("%w: %w", entities.ErrSaleInvalid, valueobjects.ErrInvalidCPF))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sales?cpf=123", nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var res map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if res["code"] != "SALE_INVALID" {
			t.Fatalf("expected SALE_INVALID, got %s", w.Body.String())
		}
	})
}

func TestMapError_InvalidCPF(t *testing.T) {
	bare := mapError(valueobjects.ErrInvalidCPF)
	if bare.Code != "INVALID_CPF" || bare.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected mapping for bare cpf error: %+v", bare)
	}
	wrapped := mapError(fmt.Errorf("%w: %w", entities.ErrSaleInvalid, valueobjects.ErrInvalidCPF))
	if wrapped.Code != "SALE_INVALID" || wrapped.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected mapping for wrapped cpf error: %+v", wrapped)
	}
}

func TestSaleHandler_PaymentWebhook(t *testing.T) {
	newRouter := func(uc *mocks.MockISaleUseCase) *gin.Engine {
		h := NewSaleHandler(uc, zap.NewNop())
		r := gin.New()
		r.POST("/v1/sales/payment-webhook/:id", h.PaymentWebhook)
		return r
	}
	post := func(r *gin.Engine, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/sales/payment-webhook/sale-1", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	cases := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: "{"},
		{name: "missing success", body: `{"payer_cpf":"52998224725"}`},
		{name: "missing cpf", body: `{"success":true}`},
		{name: "malformed cpf", body: `{"success":true,"payer_cpf":"11111111111"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			w := post(newRouter(mocks.NewMockISaleUseCase(ctrl)), tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}

	t.Run("payment approved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)

		uc.EXPECT().CompleteSale(gomock.Any(), "sale-1", true, "529.982.247-25").Return(sampleSale(entities.SaleStatusCompleted), nil)

		w := post(newRouter(uc), `{"success":true,"payer_cpf":" 529.982.247-25 "}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var res map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if res["status"] != "COMPLETED" || res["completed_at"] == nil {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
	})

	t.Run("payment refused", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)

		uc.EXPECT().CompleteSale(gomock.Any(), "sale-1", false, testCPF).Return(sampleSale(entities.SaleStatusCanceled), nil)

		w := post(newRouter(uc), `{"success":false,"payer_cpf":"52998224725"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("sale already settled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)

		uc.EXPECT().CompleteSale(gomock.Any(), "sale-1", true, testCPF).Return(entities.SaleOrder{}, entities.ErrSaleInvalidStatus)

		w := post(newRouter(uc), `{"success":true,"payer_cpf":"52998224725"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("vehicle already sold", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)

		uc.EXPECT().CompleteSale(gomock.Any(), "sale-1", true, testCPF).Return(entities.SaleOrder{}, entities.ErrVehicleAlreadySold)

		w := post(newRouter(uc), `{"success":true,"payer_cpf":"52998224725"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		var res map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if res["code"] != "VEHICLE_ALREADY_SOLD" {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
	})

	t.Run("payer mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockISaleUseCase(ctrl)

		uc.EXPECT().CompleteSale(gomock.Any(), "sale-1", true, "11144477735").
			Return(entities.SaleOrder{}, fmt.Errorf("%w: payer CPF does not match the customer CPF", entities.ErrSaleInvalid))

		w := post(newRouter(uc), `{"success":true,"payer_cpf":"11144477735"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
