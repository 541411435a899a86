package service

import (
	"testing"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_TotalsAndSubtotals(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, newTestHub())

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	productA := createTestProduct(t, db, farmer.ID, "50", 10)
	productB := createTestProduct(t, db, farmer.ID, "30", 5)

	order, err := svc.Create(buyer.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: productA.ID, Quantity: 2},
			{ProductID: productB.ID, Quantity: 1},
		},
		PaymentMethod:   model.PaymentCashOnDelivery,
		DeliveryAddress: "Ward 4, Pokhara",
	})
	require.NoError(t, err)

	assert.Equal(t, "130", order.TotalAmount.String())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "100", order.Items[0].Subtotal.String())
	assert.Equal(t, "30", order.Items[1].Subtotal.String())
	assert.Equal(t, model.OrderPending, order.Status)
	for _, item := range order.Items {
		assert.Equal(t, model.ItemPending, item.Status)
	}

	// stock reserved at creation
	var a model.Product
	require.NoError(t, db.First(&a, "id = ?", productA.ID).Error)
	assert.Equal(t, 8, a.Quantity)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, newTestHub())

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	product := createTestProduct(t, db, farmer.ID, "50", 1)

	_, err := svc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// nothing reserved on failure
	var p model.Product
	require.NoError(t, db.First(&p, "id = ?", product.ID).Error)
	assert.Equal(t, 1, p.Quantity)
}

func TestCreateOrder_EmptyAndUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, newTestHub())
	buyer := createTestUser(t, db, model.RoleBuyer)

	_, err := svc.Create(buyer.ID, &CreateOrderRequest{PaymentMethod: model.PaymentCashOnDelivery})
	require.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: uuid.New(), Quantity: 1}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateItemStatus_AcceptOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, newTestHub())

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	product := createTestProduct(t, db, farmer.ID, "25", 10)

	order, err := svc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 3}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.NoError(t, err)
	itemID := order.Items[0].ID

	item, err := svc.UpdateItemStatus(farmer.ID, itemID, model.ItemAccepted, "ready friday")
	require.NoError(t, err)
	assert.Equal(t, model.ItemAccepted, item.Status)
	assert.Equal(t, "ready friday", item.FarmerNotes)
	require.NotNil(t, item.StatusUpdatedAt)

	// a second transition from a non-pending state is rejected
	_, err = svc.UpdateItemStatus(farmer.ID, itemID, model.ItemDeclined, "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	var persisted model.OrderItem
	require.NoError(t, db.First(&persisted, "id = ?", itemID).Error)
	assert.Equal(t, model.ItemAccepted, persisted.Status)
}

func TestUpdateItemStatus_OwnershipAndInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, newTestHub())

	farmer := createTestUser(t, db, model.RoleFarmer)
	other := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	product := createTestProduct(t, db, farmer.ID, "25", 10)

	order, err := svc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.NoError(t, err)
	itemID := order.Items[0].ID

	_, err = svc.UpdateItemStatus(other.ID, itemID, model.ItemAccepted, "")
	require.ErrorIs(t, err, ErrNotItemOwner)

	_, err = svc.UpdateItemStatus(farmer.ID, itemID, model.ItemPending, "")
	require.Error(t, err)

	_, err = svc.UpdateItemStatus(farmer.ID, uuid.New(), model.ItemAccepted, "")
	require.ErrorIs(t, err, ErrOrderItemNotFound)
}

func TestUpdateItemStatus_DeclineRestoresStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, newTestHub())

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	product := createTestProduct(t, db, farmer.ID, "25", 10)

	order, err := svc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 4}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	var reserved model.Product
	require.NoError(t, db.First(&reserved, "id = ?", product.ID).Error)
	require.Equal(t, 6, reserved.Quantity)

	_, err = svc.UpdateItemStatus(farmer.ID, order.Items[0].ID, model.ItemDeclined, "out of season")
	require.NoError(t, err)

	var restored model.Product
	require.NoError(t, db.First(&restored, "id = ?", product.ID).Error)
	assert.Equal(t, 10, restored.Quantity)

	// a fully declined order is cancelled
	var parent model.Order
	require.NoError(t, db.First(&parent, "id = ?", order.ID).Error)
	assert.Equal(t, model.OrderCancelled, parent.Status)
}

func TestDerivedOrderStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, newTestHub())

	farmerA := createTestUser(t, db, model.RoleFarmer)
	farmerB := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	productA := createTestProduct(t, db, farmerA.ID, "10", 10)
	productB := createTestProduct(t, db, farmerB.ID, "20", 10)

	order, err := svc.Create(buyer.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: productA.ID, Quantity: 1},
			{ProductID: productB.ID, Quantity: 1},
		},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	// one item resolved, one still pending: order stays pending
	_, err = svc.UpdateItemStatus(farmerA.ID, order.Items[0].ID, model.ItemAccepted, "")
	require.NoError(t, err)

	var parent model.Order
	require.NoError(t, db.First(&parent, "id = ?", order.ID).Error)
	assert.Equal(t, model.OrderPending, parent.Status)

	// all resolved with one accepted: processing
	_, err = svc.UpdateItemStatus(farmerB.ID, order.Items[1].ID, model.ItemDeclined, "")
	require.NoError(t, err)

	require.NoError(t, db.First(&parent, "id = ?", order.ID).Error)
	assert.Equal(t, model.OrderProcessing, parent.Status)
}

func TestGetOrder_Participants(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repository.NewOrderRepo(db), repository.NewProductRepo(db), db, newTestHub())

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)
	stranger := createTestUser(t, db, model.RoleBuyer)
	product := createTestProduct(t, db, farmer.ID, "25", 10)

	order, err := svc.Create(buyer.ID, &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	require.NoError(t, err)

	_, err = svc.Get(buyer.ID, order.ID)
	require.NoError(t, err)

	_, err = svc.Get(farmer.ID, order.ID)
	require.NoError(t, err)

	_, err = svc.Get(stranger.ID, order.ID)
	require.ErrorIs(t, err, ErrNotOrderParticipant)
}
