package service

import (
	"testing"

	"go-repricer-ws/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Seller{},
		&model.Product{},
		&model.Competitor{},
		&model.RepricingRule{},
		&model.PriceHistory{},
		&model.Sale{},
		&model.LeadtimeOrder{},
		&model.WebhookEvent{},
	))
	return db
}

func seedSeller(t *testing.T, db *gorm.DB) *model.Seller {
	t.Helper()

	seller := &model.Seller{
		Email:    "seller@example.com",
		FullName: "Test Seller",
		IsActive: true,
	}
	require.NoError(t, seller.SetPassword("secret123"))
	require.NoError(t, db.Create(seller).Error)
	return seller
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
