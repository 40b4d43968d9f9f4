package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vanmart/internal/config"
	"github.com/vanmart/internal/models"
	"github.com/vanmart/internal/queue"
	"github.com/vanmart/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const (
	testOrganizerID = "organizer-1"
	testBuyerID     = "buyer-1"
	testOtherBuyer  = "buyer-2"
	testStrangerID  = "stranger-1"
)

type serviceFixture struct {
	db            *gorm.DB
	martService   *MartService
	orderService  *OrderService
	statsService  *StatsService
	messageSvc    *MessageService
	martRepo      *repository.GormMartRepository
	goodsRepo     *repository.GormGoodsRepository
	orderRepo     *repository.GormOrderRepository
	participation *repository.GormParticipationRepository
	trackRepo     *repository.GormDeliveryTrackRepository
	messageRepo   *repository.GormMessageRepository
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.User{},
		&models.Mart{},
		&models.Goods{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderDeliveryTrack{},
		&models.MartParticipation{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	prev := models.DB
	models.DB = db
	t.Cleanup(func() {
		models.DB = prev
		_ = sqlDB.Close()
	})
	return db
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := setupServiceTestDB(t)
	queueClient, err := queue.NewClient(&config.QueueConfig{})
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	f := &serviceFixture{
		db:            db,
		martRepo:      repository.NewMartRepository(db),
		goodsRepo:     repository.NewGoodsRepository(db),
		orderRepo:     repository.NewOrderRepository(db),
		participation: repository.NewParticipationRepository(db),
		trackRepo:     repository.NewDeliveryTrackRepository(db),
		messageRepo:   repository.NewMessageRepository(db),
	}
	f.martService = NewMartService(f.martRepo, f.goodsRepo, f.orderRepo, f.trackRepo, queueClient, true)
	f.orderService = NewOrderService(f.orderRepo, f.martRepo, f.goodsRepo, f.participation, f.trackRepo, queueClient, OrderOptions{})
	f.statsService = NewStatsService(f.martRepo, f.orderRepo, f.participation, time.Minute)
	f.messageSvc = NewMessageService(f.messageRepo, f.orderRepo)
	return f
}

func intPtr(v int) *int {
	return &v
}

func nullMoney(raw string) models.NullMoney {
	return models.NewNullMoney(models.MustMoney(raw))
}

// createMart 创建一个开放中的活动，商品按 goods 顺序返回
func (f *serviceFixture) createMart(t *testing.T, freight string, goods ...CreateGoodsInput) (*models.Mart, []models.Goods) {
	t.Helper()
	mart, err := f.martService.CreateMart(context.Background(), CreateMartInput{
		OrganizerID:   testOrganizerID,
		Topic:         "周末水果团",
		FreightAmount: models.MustMoney(freight),
		Goods:         goods,
	})
	if err != nil {
		t.Fatalf("create mart failed: %v", err)
	}
	return mart, mart.Goods
}

func (f *serviceFixture) place(buyerID string, mart *models.Mart, lines ...OrderLine) (*models.Order, error) {
	return f.orderService.PlaceOrder(context.Background(), PlaceOrderInput{
		BuyerID: buyerID,
		MartID:  mart.ID,
		Address: ShippingAddress{
			ReceiverName:  "张三",
			ReceiverPhone: "13800000000",
			Province:      "浙江省",
			City:          "杭州市",
			District:      "西湖区",
			DetailAddress: "文三路 1 号",
		},
		Items: lines,
	})
}

func (f *serviceFixture) mustPlace(t *testing.T, buyerID string, mart *models.Mart, lines ...OrderLine) *models.Order {
	t.Helper()
	order, err := f.place(buyerID, mart, lines...)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	return order
}

func (f *serviceFixture) transition(actorID, orderID, status string) (*models.Order, error) {
	input := TransitionInput{ActorID: actorID, OrderID: orderID, Status: status}
	if status == "shipped" {
		input.ShippingCompany = "顺丰"
		input.ShippingNo = "SF1234567890"
	}
	return f.orderService.TransitionOrderStatus(context.Background(), input)
}

func (f *serviceFixture) mustGoods(t *testing.T, id string) *models.Goods {
	t.Helper()
	goods, err := f.goodsRepo.GetByID(id)
	if err != nil || goods == nil {
		t.Fatalf("load goods failed: %v", err)
	}
	return goods
}

func (f *serviceFixture) mustOrder(t *testing.T, id string) *models.Order {
	t.Helper()
	order, err := f.orderRepo.GetByID(id)
	if err != nil || order == nil {
		t.Fatalf("load order failed: %v", err)
	}
	return order
}
