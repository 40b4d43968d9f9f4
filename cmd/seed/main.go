package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/vanmart/internal/config"
	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/models"
	"github.com/vanmart/internal/repository"
	"github.com/vanmart/internal/service"
)

// 演示数据：一个团长、一个买家、一个带两件商品的开放活动
func main() {
	var organizerID, buyerID string
	flag.StringVar(&organizerID, "organizer", "demo-organizer", "团长用户 ID")
	flag.StringVar(&buyerID, "buyer", "demo-buyer", "买家用户 ID")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if _, err := models.EnsureUser(organizerID, "演示团长", "13800000001"); err != nil {
		stdLog.Fatalf("Failed to create organizer: %v", err)
	}
	if _, err := models.EnsureUser(buyerID, "演示买家", "13800000002"); err != nil {
		stdLog.Fatalf("Failed to create buyer: %v", err)
	}

	martRepo := repository.NewMartRepository(models.DB)
	existing, total, err := martRepo.List(repository.MartListFilter{Page: 1, PageSize: 1, UserID: organizerID, Status: constants.MartStatusOpen})
	if err != nil {
		stdLog.Fatalf("Failed to list marts: %v", err)
	}
	var mart *models.Mart
	if total > 0 {
		mart = &existing[0]
		stdLog.Printf("Mart already exists: %s", mart.ID)
	} else {
		martService := service.NewMartService(martRepo, repository.NewGoodsRepository(models.DB), repository.NewOrderRepository(models.DB), repository.NewDeliveryTrackRepository(models.DB), nil, false)
		finish := time.Now().Add(72 * time.Hour)
		limitGrape, limitCherry := 5, 3
		mart, err = martService.CreateMart(context.Background(), service.CreateMartInput{
			OrganizerID:      organizerID,
			Topic:            "周末水果团购",
			Description:      "产地直发，周一统一发货",
			SetFinishTime:    true,
			FinishTime:       &finish,
			ExpectedShipDays: 2,
			FreightAmount:    models.MustMoney("8.00"),
			Goods: []service.CreateGoodsInput{
				{
					Name:          "阳光玫瑰 2 斤装",
					Specification: "2斤/盒",
					Price:         models.MustMoney("39.90"),
					OriginalPrice: models.NewNullMoney(models.MustMoney("49.90")),
					Stock:         100,
					PurchaseLimit: &limitGrape,
					Cost:          models.NewNullMoney(models.MustMoney("22.00")),
					PackagingCost: models.NewNullMoney(models.MustMoney("1.50")),
				},
				{
					Name:          "智利车厘子 JJ 级",
					Specification: "1斤/盒",
					Price:         models.MustMoney("59.00"),
					Stock:         80,
					PurchaseLimit: &limitCherry,
					Cost:          models.NewNullMoney(models.MustMoney("38.00")),
					LaborCost:     models.NewNullMoney(models.MustMoney("2.00")),
				},
			},
		})
		if err != nil {
			stdLog.Fatalf("Failed to create mart: %v", err)
		}
		stdLog.Printf("Created mart: %s", mart.ID)
	}

	authService := service.NewUserAuthService(cfg.UserJWT, repository.NewUserRepository(models.DB))
	for _, userID := range []string{organizerID, buyerID} {
		token, expiresAt, err := authService.GenerateUserJWT(userID, "", 0)
		if err != nil {
			stdLog.Fatalf("Failed to sign token for %s: %v", userID, err)
		}
		fmt.Printf("%s token (expires %s):\n%s\n\n", userID, expiresAt.Format(time.RFC3339), token)
	}
	fmt.Printf("mart id: %s\n", mart.ID)
}
