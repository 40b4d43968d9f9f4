package router

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vanmart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRouterTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	prev := models.DB
	models.DB = db
	if err := models.AutoMigrate(); err != nil {
		models.DB = prev
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		models.DB = prev
		_ = sqlDB.Close()
	})
	return db
}
