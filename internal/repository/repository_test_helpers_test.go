package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(
		&models.Mart{},
		&models.Goods{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderDeliveryTrack{},
		&models.MartParticipation{},
		&models.Message{},
		&models.User{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createTestMart(t *testing.T, db *gorm.DB, organizerID string, stocks ...int) (*models.Mart, []models.Goods) {
	t.Helper()
	mart := &models.Mart{
		ID:     uuid.NewString(),
		UserID: organizerID,
		Topic:  "周末水果团",
		Status: constants.MartStatusOpen,
	}
	goods := make([]models.Goods, 0, len(stocks))
	for i, stock := range stocks {
		goods = append(goods, models.Goods{
			ID:     uuid.NewString(),
			Name:   fmt.Sprintf("商品%d", i+1),
			Price:  models.MustMoney("9.90"),
			Stock:  stock,
			Status: constants.GoodsStatusOnSale,
		})
	}
	if err := NewMartRepository(db).Create(mart, goods); err != nil {
		t.Fatalf("create mart failed: %v", err)
	}
	return mart, goods
}

func createTestOrder(t *testing.T, db *gorm.DB, mart *models.Mart, userID, status string, goods models.Goods, qty int) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.NewString(),
		OrderNo:       "VM" + time.Now().Format("060102") + strings.ToUpper(uuid.NewString()[:8]),
		UserID:        userID,
		MartID:        mart.ID,
		ReceiverName:  "张三",
		ReceiverPhone: "13800000000",
		Province:      "浙江省",
		City:          "杭州市",
		TotalAmount:   goods.Price.MulInt(qty),
		Status:        status,
	}
	items := []models.OrderItem{{
		ID:        uuid.NewString(),
		GoodsID:   goods.ID,
		GoodsName: goods.Name,
		Price:     goods.Price,
		Quantity:  qty,
		Subtotal:  goods.Price.MulInt(qty),
	}}
	if err := NewOrderRepository(db).Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}
