package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/models"

	"github.com/google/uuid"
)

func fruitGoods(stock, limit int) CreateGoodsInput {
	g := CreateGoodsInput{
		Name:  "阳光玫瑰",
		Price: models.MustMoney("19.90"),
		Stock: stock,
		Cost:  nullMoney("12.00"),
	}
	if limit > 0 {
		g.PurchaseLimit = intPtr(limit)
	}
	return g
}

func TestPlaceOrderHappyPath(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 5))

	order := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 2})
	if order.Status != constants.OrderStatusCreated {
		t.Fatalf("expected created, got %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNo, constants.OrderNoPrefixDefault) || len(order.OrderNo) != 16 {
		t.Fatalf("unexpected order no: %s", order.OrderNo)
	}
	if len(order.Items) != 1 || order.Items[0].Subtotal.String() != "39.80" {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if order.TotalAmount.String() != "39.80" || order.GoodsCost.String() != "24.00" {
		t.Fatalf("unexpected amounts: total=%s cost=%s", order.TotalAmount, order.GoodsCost)
	}

	g := f.mustGoods(t, goods[0].ID)
	if g.Stock != 98 || g.SoldCount != 2 {
		t.Fatalf("expected stock 98 sold 2, got stock %d sold %d", g.Stock, g.SoldCount)
	}

	stored := f.mustOrder(t, order.ID)
	if len(stored.Tracks) != 1 || stored.Tracks[0].Description != "订单已创建" {
		t.Fatalf("unexpected tracks: %+v", stored.Tracks)
	}
	row, err := f.participation.GetByMartAndUser(mart.ID, testBuyerID)
	if err != nil || row == nil || row.OrderID != order.ID {
		t.Fatalf("expected participation for order, got %+v err=%v", row, err)
	}
}

func TestPlaceOrderFreightAndMoneyExactness(t *testing.T) {
	f := newServiceFixture(t)
	cheap := CreateGoodsInput{Name: "小葱", Price: models.MustMoney("0.10"), Stock: 10}
	mart, goods := f.createMart(t, "5.00", cheap)

	order := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 3})
	if order.TotalAmount.String() != "5.30" {
		t.Fatalf("expected 5.30, got %s", order.TotalAmount.String())
	}
	stored := f.mustOrder(t, order.ID)
	if stored.TotalAmount.String() != "5.30" || stored.FreightAmount.String() != "5.00" {
		t.Fatalf("unexpected stored amounts: total=%s freight=%s", stored.TotalAmount, stored.FreightAmount)
	}
}

func TestPlaceOrderLimitViolation(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 5))

	f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 4})
	_, err := f.place(testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 2})
	if !errors.Is(err, ErrPurchaseLimitExceeded) {
		t.Fatalf("expected purchase limit exceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "已购买 4 件") {
		t.Fatalf("expected prior quantity in reason, got %s", err.Error())
	}
	if g := f.mustGoods(t, goods[0].ID); g.Stock != 96 {
		t.Fatalf("expected stock 96, got %d", g.Stock)
	}
	// 其他买家不受影响
	f.mustPlace(t, testOtherBuyer, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 5})
}

func TestPlaceOrderCanceledOrdersFreeLimit(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 5))

	first := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 5})
	if _, err := f.transition(testBuyerID, first.ID, constants.OrderStatusCanceled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 5})
}

func TestPlaceOrderExpiredMartRejected(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 5))
	past := time.Now().Add(-time.Hour)
	if err := f.db.Model(&models.Mart{}).Where("id = ?", mart.ID).Updates(map[string]interface{}{
		"set_finish_time": true,
		"finish_time":     past,
	}).Error; err != nil {
		t.Fatalf("update finish time failed: %v", err)
	}

	_, err := f.place(testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	if !errors.Is(err, ErrMartExpired) {
		t.Fatalf("expected mart expired, got %v", err)
	}
	if KindOf(err) != KindPrecondition {
		t.Fatalf("expected precondition kind, got %s", KindOf(err))
	}
	if g := f.mustGoods(t, goods[0].ID); g.Stock != 100 || g.SoldCount != 0 {
		t.Fatalf("goods should be untouched, got stock %d sold %d", g.Stock, g.SoldCount)
	}
}

func TestPlaceOrderExpiredAfterAutoCloseStillReportsExpired(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 5))
	if err := f.db.Model(&models.Mart{}).Where("id = ?", mart.ID).Updates(map[string]interface{}{
		"set_finish_time": true,
		"finish_time":     time.Now().Add(-time.Hour),
	}).Error; err != nil {
		t.Fatalf("update finish time failed: %v", err)
	}
	ok, err := f.martService.AutoCloseMart(context.Background(), mart.ID)
	if err != nil || !ok {
		t.Fatalf("auto close should succeed: ok=%v err=%v", ok, err)
	}

	_, err = f.place(testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	if !errors.Is(err, ErrMartExpired) {
		t.Fatalf("expected mart expired after auto close, got %v", err)
	}

	if _, _, err := f.martService.EndMart(context.Background(), testOrganizerID, mart.ID); err != nil {
		t.Fatalf("end mart failed: %v", err)
	}
	_, err = f.place(testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	if !errors.Is(err, ErrMartNotOpen) {
		t.Fatalf("expected mart not open once ended, got %v", err)
	}
}

func TestPlaceOrderRejectsClosedAndMissingMart(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))
	if _, err := f.martService.CloseMart(context.Background(), testOrganizerID, mart.ID); err != nil {
		t.Fatalf("close mart failed: %v", err)
	}
	if _, err := f.place(testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1}); !errors.Is(err, ErrMartNotOpen) {
		t.Fatalf("expected mart not open, got %v", err)
	}
	missing := &models.Mart{ID: uuid.NewString()}
	if _, err := f.place(testBuyerID, missing, OrderLine{GoodsID: goods[0].ID, Quantity: 1}); !errors.Is(err, ErrMartNotFound) {
		t.Fatalf("expected mart not found, got %v", err)
	}
}

func TestPlaceOrderGoodsFromOtherMartRejected(t *testing.T) {
	f := newServiceFixture(t)
	mart, _ := f.createMart(t, "0", fruitGoods(100, 0))
	_, otherGoods := f.createMart(t, "0", fruitGoods(100, 0))

	_, err := f.place(testBuyerID, mart, OrderLine{GoodsID: otherGoods[0].ID, Quantity: 1})
	if !errors.Is(err, ErrGoodsNotFound) {
		t.Fatalf("expected goods not found, got %v", err)
	}
	if g := f.mustGoods(t, otherGoods[0].ID); g.Stock != 100 {
		t.Fatalf("other mart goods should be untouched, got %d", g.Stock)
	}
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(10, 0), CreateGoodsInput{Name: "车厘子", Price: models.MustMoney("59.00"), Stock: 1})

	_, err := f.place(testBuyerID, mart,
		OrderLine{GoodsID: goods[0].ID, Quantity: 3},
		OrderLine{GoodsID: goods[1].ID, Quantity: 2},
	)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if g := f.mustGoods(t, goods[0].ID); g.Stock != 10 || g.SoldCount != 0 {
		t.Fatalf("first goods should be untouched, got stock %d sold %d", g.Stock, g.SoldCount)
	}
	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no orders, got %d", count)
	}
}

func TestPlaceOrderValidatesInput(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(10, 0))

	if _, err := f.place("", mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for anonymous buyer, got %v", err)
	}
	if _, err := f.place(testBuyerID, mart); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected invalid order item, got %v", err)
	}
	_, err := f.orderService.PlaceOrder(context.Background(), PlaceOrderInput{
		BuyerID: testBuyerID,
		MartID:  mart.ID,
		Items:   []OrderLine{{GoodsID: goods[0].ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected address validation error, got %v", err)
	}
	_, err = f.orderService.PlaceOrder(context.Background(), PlaceOrderInput{
		BuyerID: testBuyerID,
		MartID:  mart.ID,
		Address: ShippingAddress{
			ReceiverName:  "张三",
			ReceiverPhone: "13800000000",
			Province:      "浙江省",
			City:          "杭州市",
			District:      "  ",
			DetailAddress: "文三路 1 号",
		},
		Items: []OrderLine{{GoodsID: goods[0].ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected incomplete address to be rejected, got %v", err)
	}
	if g := f.mustGoods(t, goods[0].ID); g.SoldCount != 0 {
		t.Fatalf("rejected orders must not touch stock, sold %d", g.SoldCount)
	}
}

func TestPlaceOrderRetriesOrderNoConflict(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))

	first := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	calls := 0
	f.orderService.orderNoFn = func(prefix string, now time.Time) string {
		calls++
		if calls == 1 {
			return first.OrderNo
		}
		return generateOrderNo(prefix, now)
	}
	second := f.mustPlace(t, testOtherBuyer, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	if calls != 2 || second.OrderNo == first.OrderNo {
		t.Fatalf("expected retry with fresh order no, calls=%d no=%s", calls, second.OrderNo)
	}
	if g := f.mustGoods(t, goods[0].ID); g.Stock != 98 {
		t.Fatalf("expected stock 98 after retry, got %d", g.Stock)
	}
}

func TestPlaceOrderOrderNoConflictExhausted(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))
	first := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	f.orderService.orderNoFn = func(prefix string, now time.Time) string {
		return first.OrderNo
	}
	_, err := f.place(testOtherBuyer, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	if !errors.Is(err, ErrOrderCreateFailed) {
		t.Fatalf("expected order create failed, got %v", err)
	}
	if g := f.mustGoods(t, goods[0].ID); g.Stock != 99 {
		t.Fatalf("expected stock 99, got %d", g.Stock)
	}
}

func TestPlaceOrderConcurrentNoOversell(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(10, 0))

	const buyers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.place(fmt.Sprintf("buyer-%02d", i), mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	g := f.mustGoods(t, goods[0].ID)
	if succeeded != 10 {
		t.Fatalf("expected 10 successful orders, got %d", succeeded)
	}
	if g.Stock != 0 || g.SoldCount != 10 {
		t.Fatalf("expected stock 0 sold 10, got stock %d sold %d", g.Stock, g.SoldCount)
	}
}

func TestPlaceOrderConcurrentLimitRace(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 5))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.place(testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 3})
		}(i)
	}
	wg.Wait()

	okCount := 0
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		if !errors.Is(err, ErrPurchaseLimitExceeded) && !errors.Is(err, ErrOrderInProgress) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 {
		t.Fatalf("expected exactly one success, got %d", okCount)
	}
	sums, err := f.orderRepo.SumPurchasedQuantities(testBuyerID, mart.ID, []string{goods[0].ID})
	if err != nil {
		t.Fatalf("sum purchased failed: %v", err)
	}
	if sums[goods[0].ID] != 3 {
		t.Fatalf("expected purchased 3, got %d", sums[goods[0].ID])
	}
}

func TestCancelRestoresStock(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 5))

	order := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 2})
	canceled, err := f.orderService.TransitionOrderStatus(context.Background(), TransitionInput{
		ActorID:      testBuyerID,
		OrderID:      order.ID,
		Status:       constants.OrderStatusCanceled,
		CancelReason: "买错了",
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled || canceled.CancelReason != "买错了" || canceled.CanceledAt == nil {
		t.Fatalf("unexpected canceled order: %+v", canceled)
	}
	g := f.mustGoods(t, goods[0].ID)
	if g.Stock != 100 || g.SoldCount != 0 {
		t.Fatalf("expected stock 100 sold 0, got stock %d sold %d", g.Stock, g.SoldCount)
	}
	if len(canceled.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(canceled.Tracks))
	}
}

func TestCancelRestoresOnlyOwnQuantities(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))

	mine := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 2})
	f.mustPlace(t, testOtherBuyer, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 7})
	if _, err := f.transition(testBuyerID, mine.ID, constants.OrderStatusCanceled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	g := f.mustGoods(t, goods[0].ID)
	if g.Stock != 93 || g.SoldCount != 7 {
		t.Fatalf("expected stock 93 sold 7, got stock %d sold %d", g.Stock, g.SoldCount)
	}
	if _, err := f.transition(testBuyerID, mine.ID, constants.OrderStatusCanceled); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("second cancel should be illegal, got %v", err)
	}
	if g := f.mustGoods(t, goods[0].ID); g.Stock != 93 {
		t.Fatalf("second cancel must not restore again, got %d", g.Stock)
	}
}

func TestFullLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))
	order := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})

	steps := []struct {
		actor  string
		status string
	}{
		{testOrganizerID, constants.OrderStatusPendingShipment},
		{testOrganizerID, constants.OrderStatusShipped},
		{testOrganizerID, constants.OrderStatusDelivered},
		{testBuyerID, constants.OrderStatusCompleted},
	}
	for _, step := range steps {
		updated, err := f.transition(step.actor, order.ID, step.status)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", step.status, err)
		}
		if updated.Status != step.status {
			t.Fatalf("expected %s, got %s", step.status, updated.Status)
		}
	}
	final := f.mustOrder(t, order.ID)
	if final.ShippingCompany != "顺丰" || final.ShippedAt == nil || final.DeliveredAt == nil || final.CompletedAt == nil {
		t.Fatalf("timestamps or shipping fields missing: %+v", final)
	}
	if len(final.Tracks) != 5 {
		t.Fatalf("expected 5 tracks, got %d", len(final.Tracks))
	}
}

func TestIllegalTransitionLeavesStateUnchanged(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))
	before := f.mustGoods(t, goods[0].ID)

	for _, from := range allOrderStatuses {
		for _, to := range allOrderStatuses {
			if isLegalTransition(from, to) {
				continue
			}
			order := insertOrderWithStatus(t, f, mart, goods[0], from)
			_, err := f.transition(testOrganizerID, order.ID, to)
			if !errors.Is(err, ErrIllegalTransition) {
				t.Fatalf("%s -> %s: expected illegal transition, got %v", from, to, err)
			}
			if got := f.mustOrder(t, order.ID); got.Status != from || len(got.Tracks) != 0 {
				t.Fatalf("%s -> %s: order changed to %s", from, to, got.Status)
			}
		}
	}
	after := f.mustGoods(t, goods[0].ID)
	if after.Stock != before.Stock || after.SoldCount != before.SoldCount {
		t.Fatalf("goods changed: before %d/%d after %d/%d", before.Stock, before.SoldCount, after.Stock, after.SoldCount)
	}
}

func TestCompletedOrderCannotBeCanceled(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))
	order := insertOrderWithStatus(t, f, mart, goods[0], constants.OrderStatusCompleted)

	_, err := f.transition(testBuyerID, order.ID, constants.OrderStatusCanceled)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
	if got := f.mustOrder(t, order.ID); got.Status != constants.OrderStatusCompleted || got.CanceledAt != nil {
		t.Fatalf("order should be unchanged: %+v", got)
	}
}

func TestTransitionAuthorization(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))
	order := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})

	if _, err := f.transition(testStrangerID, order.ID, constants.OrderStatusCanceled); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger should be forbidden, got %v", err)
	}
	if _, err := f.transition(testBuyerID, order.ID, constants.OrderStatusPendingShipment); !errors.Is(err, ErrForbidden) {
		t.Fatalf("buyer cannot advance order, got %v", err)
	}
	if _, err := f.transition(testOrganizerID, uuid.NewString(), constants.OrderStatusCanceled); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
	if _, err := f.transition(testOrganizerID, order.ID, "paid"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := f.transition(testOrganizerID, order.ID, constants.OrderStatusPendingShipment); err != nil {
		t.Fatalf("organizer advance failed: %v", err)
	}
	_, err := f.orderService.TransitionOrderStatus(context.Background(), TransitionInput{
		ActorID: testOrganizerID,
		OrderID: order.ID,
		Status:  constants.OrderStatusShipped,
	})
	if !errors.Is(err, ErrMissingShippingFields) {
		t.Fatalf("expected missing shipping fields, got %v", err)
	}
	if got := f.mustOrder(t, order.ID); got.Status != constants.OrderStatusPendingShipment {
		t.Fatalf("order should stay pending_shipment, got %s", got.Status)
	}
}

func TestGetAndListOrders(t *testing.T) {
	f := newServiceFixture(t)
	mart, goods := f.createMart(t, "0", fruitGoods(100, 0))
	mine := f.mustPlace(t, testBuyerID, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	f.mustPlace(t, testOtherBuyer, mart, OrderLine{GoodsID: goods[0].ID, Quantity: 1})
	ctx := context.Background()

	if _, err := f.orderService.GetOrder(ctx, testBuyerID, mine.ID); err != nil {
		t.Fatalf("buyer get order failed: %v", err)
	}
	if _, err := f.orderService.GetOrder(ctx, testOrganizerID, mine.ID); err != nil {
		t.Fatalf("organizer get order failed: %v", err)
	}
	if _, err := f.orderService.GetOrder(ctx, testOtherBuyer, mine.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other buyer should be forbidden, got %v", err)
	}

	rows, total, err := f.orderService.ListOrders(ctx, testBuyerID, OrderListQuery{})
	if err != nil || total != 1 || len(rows) != 1 || rows[0].ID != mine.ID {
		t.Fatalf("buyer list unexpected: total=%d err=%v", total, err)
	}
	_, total, err = f.orderService.ListOrders(ctx, testOrganizerID, OrderListQuery{Scope: constants.OrderScopeOrganizer, MartID: mart.ID})
	if err != nil || total != 2 {
		t.Fatalf("organizer list unexpected: total=%d err=%v", total, err)
	}
	if _, _, err := f.orderService.ListOrders(ctx, testBuyerID, OrderListQuery{Scope: constants.OrderScopeOrganizer, MartID: mart.ID}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("buyer cannot use organizer scope, got %v", err)
	}
	if _, _, err := f.orderService.ListOrders(ctx, testBuyerID, OrderListQuery{Status: "paid"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status filter, got %v", err)
	}
}

func TestGenerateOrderNoFormat(t *testing.T) {
	now := time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local)
	no := generateOrderNo("VM", now)
	if !strings.HasPrefix(no, "VM240506") || len(no) != 16 {
		t.Fatalf("unexpected order no: %s", no)
	}
	for _, c := range no[8:] {
		if !strings.ContainsRune(orderNoAlphabet, c) {
			t.Fatalf("unexpected character %q in %s", c, no)
		}
	}
}

func insertOrderWithStatus(t *testing.T, f *serviceFixture, mart *models.Mart, goods models.Goods, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.NewString(),
		OrderNo:       generateOrderNo("VM", time.Now()),
		UserID:        testBuyerID,
		MartID:        mart.ID,
		ReceiverName:  "张三",
		ReceiverPhone: "13800000000",
		TotalAmount:   goods.Price,
		Status:        status,
	}
	items := []models.OrderItem{{
		ID:        uuid.NewString(),
		GoodsID:   goods.ID,
		GoodsName: goods.Name,
		Price:     goods.Price,
		Quantity:  1,
		Subtotal:  goods.Price,
	}}
	if err := f.orderRepo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}
