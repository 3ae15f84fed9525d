package database

import (
	"log"

	"envanter-backend/internal/config"
	"envanter-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Warehouse{},
		&models.StorageBin{},
		&models.Item{},
		&models.StockRecord{},
		&models.StockMovement{},
		&models.InventoryAlert{},
		&models.WarehouseReceipt{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	ensureFallbackWarehouse(cfg)

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Depo ataması olmayan gözler için varsayılan depo: yoksa açılışta oluşturulur.
// Böylece "her göz bir depoya aittir" kuralı çıkış anında ad-hoc kayıt
// yaratmadan sağlanabiliyor.
func ensureFallbackWarehouse(cfg *config.Config) {
	var count int64
	DB.Model(&models.Warehouse{}).
		Where("code = ?", cfg.FallbackWarehouseCode).
		Count(&count)
	if count > 0 {
		return
	}

	wh := models.Warehouse{
		Name:        "Merkez Depo",
		Code:        cfg.FallbackWarehouseCode,
		Description: "Depo ataması olmayan gözler için varsayılan depo",
		Capacity:    100000,
		IsActive:    true,
	}
	if err := DB.Create(&wh).Error; err != nil {
		log.Printf("[WARN] Varsayılan depo oluşturulamadı (%s): %v", cfg.FallbackWarehouseCode, err)
		return
	}
	log.Printf("Varsayılan depo oluşturuldu: %s (%s)", wh.Name, wh.Code)
}
