package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fasalbajar-api/internal/gateway"
	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testGatewaySecret = "test-secret-key"

func newPaymentEnv(t *testing.T, baseURL string) (PaymentService, OrderService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	hub := newTestHub()
	gw := gateway.NewClient(gateway.Config{
		ProductCode: "EPAYTEST",
		SecretKey:   testGatewaySecret,
		BaseURL:     baseURL,
	})
	orderSvc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, hub)
	paySvc := NewPaymentService(repository.NewPaymentRepo(db), repository.NewOrderRepo(db), gw, db, hub)
	return paySvc, orderSvc, db
}

func placeOnlineOrder(t *testing.T, db *gorm.DB, orderSvc OrderService) (*model.Order, uuid.UUID) {
	t.Helper()

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	product := createTestProduct(t, db, farmer.ID, "65", 10)

	order, err := orderSvc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod: model.PaymentOnline,
	})
	require.NoError(t, err)
	return order, buyer.ID
}

// signedCallback forges a gateway callback blob signed with the given
// secret, the same way the gateway builds its redirect payload.
func signedCallback(t *testing.T, secret, status, totalAmount, reference string) string {
	t.Helper()

	signedFields := "transaction_code,status,total_amount,transaction_uuid,product_code,signed_field_names"
	message := fmt.Sprintf(
		"transaction_code=%s,status=%s,total_amount=%s,transaction_uuid=%s,product_code=%s,signed_field_names=%s",
		"0001TX", status, totalAmount, reference, "EPAYTEST", signedFields,
	)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))

	payload := map[string]string{
		"transaction_code":   "0001TX",
		"status":             status,
		"total_amount":       totalAmount,
		"transaction_uuid":   reference,
		"product_code":       "EPAYTEST",
		"signed_field_names": signedFields,
		"signature":          base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestInitiate_BuildsSignedFormAndPendingTransaction(t *testing.T) {
	paySvc, orderSvc, db := newPaymentEnv(t, "")
	order, buyerID := placeOnlineOrder(t, db, orderSvc)

	form, txn, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)

	assert.Equal(t, "130.00", form.TotalAmount)
	assert.Equal(t, txn.Reference, form.TransactionUUID)
	assert.Equal(t, "EPAYTEST", form.ProductCode)
	assert.NotEmpty(t, form.Signature)
	assert.Equal(t, model.PaymentPending, txn.Status)

	// initiating again reuses the pending transaction
	_, again, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, again.ID)
}

func TestInitiate_RejectsWrongBuyerAndCOD(t *testing.T) {
	paySvc, orderSvc, db := newPaymentEnv(t, "")
	order, _ := placeOnlineOrder(t, db, orderSvc)

	stranger := createTestUser(t, db, model.RoleBuyer)
	_, _, err := paySvc.Initiate(stranger.ID, order.ID)
	require.ErrorIs(t, err, ErrNotOrderBuyer)

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	product := createTestProduct(t, db, farmer.ID, "10", 5)
	codOrder, err := orderSvc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	_, _, err = paySvc.Initiate(buyer.ID, codOrder.ID)
	require.ErrorIs(t, err, ErrNotOnlineOrder)
}

func TestHandleCallback_CompletesOnce(t *testing.T) {
	paySvc, orderSvc, db := newPaymentEnv(t, "")
	order, buyerID := placeOnlineOrder(t, db, orderSvc)

	_, txn, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)

	data := signedCallback(t, testGatewaySecret, gateway.StatusComplete, "130.00", txn.Reference)

	settled, err := paySvc.HandleCallback(data)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, settled.Status)
	assert.Equal(t, "0001TX", settled.GatewayRef)
	require.NotNil(t, settled.PaidAt)

	var parent model.Order
	require.NoError(t, db.First(&parent, "id = ?", order.ID).Error)
	assert.True(t, parent.PaymentSettled)

	// replaying the identical callback is a no-op success
	replayed, err := paySvc.HandleCallback(data)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, replayed.Status)
	assert.Equal(t, settled.PaidAt.Unix(), replayed.PaidAt.Unix())
}

func TestHandleCallback_TamperedSignatureLeavesStateUnchanged(t *testing.T) {
	paySvc, orderSvc, db := newPaymentEnv(t, "")
	order, buyerID := placeOnlineOrder(t, db, orderSvc)

	_, txn, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)

	// signed with the wrong secret
	data := signedCallback(t, "attacker-secret", gateway.StatusComplete, "130.00", txn.Reference)

	_, err = paySvc.HandleCallback(data)
	require.ErrorIs(t, err, ErrTamperedPayment)

	var unchanged model.PaymentTransaction
	require.NoError(t, db.First(&unchanged, "id = ?", txn.ID).Error)
	assert.Equal(t, model.PaymentPending, unchanged.Status)

	var parent model.Order
	require.NoError(t, db.First(&parent, "id = ?", order.ID).Error)
	assert.False(t, parent.PaymentSettled)
}

func TestHandleCallback_AmountMismatchLeavesPending(t *testing.T) {
	paySvc, orderSvc, db := newPaymentEnv(t, "")
	order, buyerID := placeOnlineOrder(t, db, orderSvc)

	_, txn, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)

	// correctly signed, but for a different amount than we charged
	data := signedCallback(t, testGatewaySecret, gateway.StatusComplete, "999.00", txn.Reference)

	_, err = paySvc.HandleCallback(data)
	require.ErrorIs(t, err, ErrAmountMismatch)

	var unchanged model.PaymentTransaction
	require.NoError(t, db.First(&unchanged, "id = ?", txn.ID).Error)
	assert.Equal(t, model.PaymentPending, unchanged.Status)

	var parent model.Order
	require.NoError(t, db.First(&parent, "id = ?", order.ID).Error)
	assert.False(t, parent.PaymentSettled)
}

func TestHandleCallback_CanceledMarksFailed(t *testing.T) {
	paySvc, orderSvc, db := newPaymentEnv(t, "")
	order, buyerID := placeOnlineOrder(t, db, orderSvc)

	_, txn, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)

	data := signedCallback(t, testGatewaySecret, gateway.StatusCanceled, "130.00", txn.Reference)
	settled, err := paySvc.HandleCallback(data)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, settled.Status)

	var parent model.Order
	require.NoError(t, db.First(&parent, "id = ?", order.ID).Error)
	assert.False(t, parent.PaymentSettled)
}

func TestHandleCallback_MalformedPayload(t *testing.T) {
	paySvc, _, _ := newPaymentEnv(t, "")

	_, err := paySvc.HandleCallback("not-base64!!")
	require.ErrorIs(t, err, gateway.ErrMalformedPayload)

	_, err = paySvc.HandleCallback(base64.StdEncoding.EncodeToString([]byte(`{"status":""}`)))
	require.ErrorIs(t, err, gateway.ErrMalformedPayload)
}

func TestCheckStatus_CompletesPendingTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/epay/transaction/status/", r.URL.Path)
		json.NewEncoder(w).Encode(gateway.StatusResponse{
			ProductCode:     "EPAYTEST",
			TransactionUUID: r.URL.Query().Get("transaction_uuid"),
			TotalAmount:     r.URL.Query().Get("total_amount"),
			Status:          gateway.StatusComplete,
			RefID:           "REF-42",
		})
	}))
	defer server.Close()

	paySvc, orderSvc, db := newPaymentEnv(t, server.URL)
	order, buyerID := placeOnlineOrder(t, db, orderSvc)

	_, txn, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)

	updated, err := paySvc.CheckStatus(context.Background(), buyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, updated.Status)
	assert.Equal(t, "REF-42", updated.GatewayRef)
	assert.Equal(t, txn.Reference, updated.Reference)

	var parent model.Order
	require.NoError(t, db.First(&parent, "id = ?", order.ID).Error)
	assert.True(t, parent.PaymentSettled)
}

func TestCheckStatus_GatewayErrorLeavesPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	paySvc, orderSvc, db := newPaymentEnv(t, server.URL)
	order, buyerID := placeOnlineOrder(t, db, orderSvc)

	_, txn, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)

	_, err = paySvc.CheckStatus(context.Background(), buyerID, order.ID)
	require.Error(t, err)

	var unchanged model.PaymentTransaction
	require.NoError(t, db.First(&unchanged, "id = ?", txn.ID).Error)
	assert.Equal(t, model.PaymentPending, unchanged.Status)
}

func TestPaymentReads_RequireOrderBuyer(t *testing.T) {
	paySvc, orderSvc, db := newPaymentEnv(t, "")
	order, buyerID := placeOnlineOrder(t, db, orderSvc)

	_, _, err := paySvc.Initiate(buyerID, order.ID)
	require.NoError(t, err)

	stranger := createTestUser(t, db, model.RoleBuyer)
	_, err = paySvc.CheckStatus(context.Background(), stranger.ID, order.ID)
	require.ErrorIs(t, err, ErrNotOrderBuyer)

	_, err = paySvc.ListByOrder(stranger.ID, order.ID)
	require.ErrorIs(t, err, ErrNotOrderBuyer)

	txns, err := paySvc.ListByOrder(buyerID, order.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
}

func TestCompleteCashOnDeliveryAndRefund(t *testing.T) {
	paySvc, orderSvc, db := newPaymentEnv(t, "")

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	product := createTestProduct(t, db, farmer.ID, "40", 5)
	order, err := orderSvc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	txn, err := paySvc.CompleteCashOnDelivery(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, txn.Status)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("40")))

	// completing again has nothing pending to settle
	_, err = paySvc.CompleteCashOnDelivery(order.ID)
	require.Error(t, err)

	refunded, err := paySvc.Refund(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, refunded.Status)

	// a refunded transaction cannot be refunded twice
	_, err = paySvc.Refund(txn.ID)
	require.ErrorIs(t, err, ErrNotRefundable)
}
