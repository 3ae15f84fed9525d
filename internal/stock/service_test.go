package stock

import (
	"testing"
	"time"

	"envanter-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB: her test için izole in-memory SQLite. ":memory:" bağlantı
// başına ayrı veritabanı oluşturduğundan havuz tek bağlantıya sabitlenir.
func openTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		tb.Fatalf("test veritabanı açılamadı: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql.DB alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
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
		tb.Fatalf("migration hatası: %v", err)
	}

	return db
}

func seedItem(tb testing.TB, db *gorm.DB, name string, minStock uint) *models.Item {
	tb.Helper()
	item := models.Item{
		Name:          name,
		PartNumber:    "PN-" + name,
		MinStockLevel: minStock,
		CustomFields:  "{}",
	}
	if err := db.Create(&item).Error; err != nil {
		tb.Fatalf("ürün oluşturulamadı: %v", err)
	}
	return &item
}

func seedBin(tb testing.TB, db *gorm.DB, label string, capacity uint, warehouseID *uint) *models.StorageBin {
	tb.Helper()
	bin := models.StorageBin{
		BinID:       label,
		WarehouseID: warehouseID,
		Capacity:    capacity,
	}
	if err := db.Create(&bin).Error; err != nil {
		tb.Fatalf("göz oluşturulamadı: %v", err)
	}
	return &bin
}

func seedWarehouse(tb testing.TB, db *gorm.DB, code string, capacity uint) *models.Warehouse {
	tb.Helper()
	wh := models.Warehouse{
		Name:     "Depo " + code,
		Code:     code,
		Capacity: capacity,
		IsActive: true,
	}
	if err := db.Create(&wh).Error; err != nil {
		tb.Fatalf("depo oluşturulamadı: %v", err)
	}
	return &wh
}

func binLoad(tb testing.TB, db *gorm.DB, binID uint) uint {
	tb.Helper()
	var bin models.StorageBin
	if err := db.First(&bin, "id = ?", binID).Error; err != nil {
		tb.Fatalf("göz okunamadı: %v", err)
	}
	return bin.CurrentLoad
}

func stockIn(itemID, binID, qty uint) StockInInput {
	return StockInInput{
		ItemID: itemID, BinID: binID, Quantity: qty,
		UserID: 1, UserName: "test-user",
	}
}

func stockOut(itemID, binID, qty uint) StockOutInput {
	return StockOutInput{
		ItemID: itemID, BinID: binID, Quantity: qty,
		UserID: 1, UserName: "test-user", Recipient: "Teslim Alan",
	}
}

func TestStockIn_CreatesRecordMovementAndLoad(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "vida", 5)
	bin := seedBin(t, db, "A-01", 100, nil)

	res, err := StockIn(db, stockIn(item.ID, bin.ID, 40))
	require.NoError(t, err)
	require.NotZero(t, res.MovementID)

	var record models.StockRecord
	require.NoError(t, db.Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).First(&record).Error)
	assert.Equal(t, uint(40), record.Quantity)

	assert.Equal(t, uint(40), binLoad(t, db, bin.ID))

	var movement models.StockMovement
	require.NoError(t, db.First(&movement, "id = ?", res.MovementID).Error)
	assert.Equal(t, models.MovementIn, movement.MovementType)
	assert.Equal(t, uint(40), movement.Quantity)
	assert.Equal(t, "test-user", movement.UserName)
	assert.Nil(t, movement.ReceiptID)
}

func TestStockIn_AccumulatesExistingRecord(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "somun", 5)
	bin := seedBin(t, db, "A-02", 100, nil)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 30))
	require.NoError(t, err)
	_, err = StockIn(db, stockIn(item.ID, bin.ID, 20))
	require.NoError(t, err)

	var record models.StockRecord
	require.NoError(t, db.Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).First(&record).Error)
	assert.Equal(t, uint(50), record.Quantity)

	// Aynı (ürün, göz) çifti için tek satır kalmalı
	var count int64
	db.Model(&models.StockRecord{}).Where("item_id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, uint(50), binLoad(t, db, bin.ID))
}

func TestStockIn_CapacityExceededRollsBackAndAlerts(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "civata", 5)
	bin := seedBin(t, db, "A-03", 50, nil)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 40))
	require.NoError(t, err)

	_, err = StockIn(db, stockIn(item.ID, bin.ID, 20))
	require.Error(t, err)

	var capErr *CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint(20), capErr.Requested)
	assert.Equal(t, uint(10), capErr.Available)

	// Transaction geri alındı: miktar ve yük değişmedi, hareket yazılmadı
	var record models.StockRecord
	require.NoError(t, db.Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).First(&record).Error)
	assert.Equal(t, uint(40), record.Quantity)
	assert.Equal(t, uint(40), binLoad(t, db, bin.ID))

	var movementCount int64
	db.Model(&models.StockMovement{}).Count(&movementCount)
	assert.Equal(t, int64(1), movementCount)

	// Reddedilen deneme yine de KRİTİK alarm olarak kayda geçer
	var alert models.InventoryAlert
	err = db.Where("level = ? AND related_bin_id = ?", models.AlertCritical, bin.ID).
		Order("id DESC").First(&alert).Error
	require.NoError(t, err)
	assert.Contains(t, alert.Message, bin.BinID)
}

func TestStockIn_ValidationErrors(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "pul", 5)
	bin := seedBin(t, db, "A-04", 50, nil)

	var vErr *ValidationError

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 0))
	require.ErrorAs(t, err, &vErr)

	_, err = StockIn(db, stockIn(9999, bin.ID, 10))
	require.ErrorAs(t, err, &vErr)

	_, err = StockIn(db, stockIn(item.ID, 9999, 10))
	require.ErrorAs(t, err, &vErr)

	// Hiçbir yan etki oluşmadı
	var count int64
	db.Model(&models.StockMovement{}).Count(&count)
	assert.Zero(t, count)
}

func TestStockOut_CreatesReceiptAndLinksMovement(t *testing.T) {
	db := openTestDB(t)
	wh := seedWarehouse(t, db, "ANA", 1000)
	item := seedItem(t, db, "rulman", 2)
	bin := seedBin(t, db, "B-01", 100, &wh.ID)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 60))
	require.NoError(t, err)

	res, err := StockOut(db, stockOut(item.ID, bin.ID, 25))
	require.NoError(t, err)
	require.NotZero(t, res.MovementID)
	require.NotZero(t, res.ReceiptID)
	assert.NotEmpty(t, res.ReceiptNo)

	var record models.StockRecord
	require.NoError(t, db.Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).First(&record).Error)
	assert.Equal(t, uint(35), record.Quantity)
	assert.Equal(t, uint(35), binLoad(t, db, bin.ID))

	// Makbuz anlık görüntüsü
	var receipt models.WarehouseReceipt
	require.NoError(t, db.First(&receipt, "id = ?", res.ReceiptID).Error)
	assert.Equal(t, uint(25), receipt.QtyPicked)
	assert.Equal(t, uint(35), receipt.QtyRemaining)
	assert.Equal(t, item.Name, receipt.ItemName)
	assert.Equal(t, bin.BinID, receipt.BinLabel)
	assert.Equal(t, wh.Name, receipt.WarehouseName)
	assert.Equal(t, "Teslim Alan", receipt.Recipient)
	assert.Equal(t, "test-user", receipt.IssuedBy)

	// Birebir bağlantı: hareket <-> makbuz
	require.NotNil(t, receipt.MovementID)
	assert.Equal(t, res.MovementID, *receipt.MovementID)

	var movement models.StockMovement
	require.NoError(t, db.First(&movement, "id = ?", res.MovementID).Error)
	require.NotNil(t, movement.ReceiptID)
	assert.Equal(t, res.ReceiptID, *movement.ReceiptID)
	assert.Equal(t, models.MovementOut, movement.MovementType)
}

func TestStockOut_DrainedRecordIsDeleted(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "kayis", 0)
	bin := seedBin(t, db, "B-02", 100, nil)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 15))
	require.NoError(t, err)

	_, err = StockOut(db, stockOut(item.ID, bin.ID, 15))
	require.NoError(t, err)

	// Sıfıra inen kayıt tutulmaz
	var count int64
	db.Model(&models.StockRecord{}).
		Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).Count(&count)
	assert.Zero(t, count)

	assert.Equal(t, uint(0), binLoad(t, db, bin.ID))
}

func TestStockOut_InsufficientStockRollsBackAndAlerts(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "motor", 0)
	bin := seedBin(t, db, "B-03", 100, nil)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 10))
	require.NoError(t, err)

	_, err = StockOut(db, stockOut(item.ID, bin.ID, 25))
	require.Error(t, err)

	var insErr *InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, uint(25), insErr.Requested)
	assert.Equal(t, uint(10), insErr.Available)

	// Miktar değişmedi, makbuz oluşmadı
	var record models.StockRecord
	require.NoError(t, db.Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).First(&record).Error)
	assert.Equal(t, uint(10), record.Quantity)

	var receiptCount int64
	db.Model(&models.WarehouseReceipt{}).Count(&receiptCount)
	assert.Zero(t, receiptCount)

	var alert models.InventoryAlert
	err = db.Where("level = ? AND related_bin_id = ?", models.AlertCritical, bin.ID).
		Order("id DESC").First(&alert).Error
	require.NoError(t, err)
	assert.Contains(t, alert.Message, item.Name)
}

func TestStockOut_ReservationConflict(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "sensor", 0)
	bin := seedBin(t, db, "B-04", 100, nil)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 50))
	require.NoError(t, err)

	// 40 birim rezerve: gözde 50 olsa da kullanılabilir sadece 10
	require.NoError(t, db.Model(&models.Item{}).
		Where("id = ?", item.ID).Update("reserved_quantity", 40).Error)

	_, err = StockOut(db, stockOut(item.ID, bin.ID, 20))
	require.Error(t, err)

	var resErr *ReservationConflictError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, uint(20), resErr.Requested)
	assert.Equal(t, uint(10), resErr.Available)

	// Gözdeki miktar değişmedi
	var record models.StockRecord
	require.NoError(t, db.Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).First(&record).Error)
	assert.Equal(t, uint(50), record.Quantity)

	// Rezervasyon çatışması UYARI seviyesinde ve ürüne bağlı, göze değil
	var alert models.InventoryAlert
	err = db.Where("level = ? AND related_item_id = ? AND related_bin_id IS NULL",
		models.AlertWarning, item.ID).Order("id DESC").First(&alert).Error
	require.NoError(t, err)
	assert.Contains(t, alert.Message, item.Name)

	// Rezerve sınırı içinde kalan çıkış çalışır
	_, err = StockOut(db, stockOut(item.ID, bin.ID, 10))
	require.NoError(t, err)
}

func TestStockOut_AttachesFallbackWarehouse(t *testing.T) {
	db := openTestDB(t)
	wh := seedWarehouse(t, db, "MERKEZ", 10000)
	item := seedItem(t, db, "kablo", 0)
	bin := seedBin(t, db, "C-01", 100, nil)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 30))
	require.NoError(t, err)

	in := stockOut(item.ID, bin.ID, 10)
	in.FallbackWarehouseCode = "MERKEZ"
	res, err := StockOut(db, in)
	require.NoError(t, err)

	var updated models.StorageBin
	require.NoError(t, db.First(&updated, "id = ?", bin.ID).Error)
	require.NotNil(t, updated.WarehouseID)
	assert.Equal(t, wh.ID, *updated.WarehouseID)

	// Makbuz artık bağlanan deponun adını taşır
	var receipt models.WarehouseReceipt
	require.NoError(t, db.First(&receipt, "id = ?", res.ReceiptID).Error)
	assert.Equal(t, wh.Name, receipt.WarehouseName)
}

func TestStockOut_FallbackMissingDoesNotBlock(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "fis", 0)
	bin := seedBin(t, db, "C-02", 100, nil)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 30))
	require.NoError(t, err)

	in := stockOut(item.ID, bin.ID, 10)
	in.FallbackWarehouseCode = "YOK"
	_, err = StockOut(db, in)
	require.NoError(t, err)

	// Depo bulunamadı ama çıkış tamamlandı, göz depo'suz kaldı
	var updated models.StorageBin
	require.NoError(t, db.First(&updated, "id = ?", bin.ID).Error)
	assert.Nil(t, updated.WarehouseID)
}

func TestLedger_ConservationAcrossOperations(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "aks", 0)
	binA := seedBin(t, db, "D-01", 200, nil)
	binB := seedBin(t, db, "D-02", 200, nil)

	ops := []struct {
		out bool
		bin uint
		qty uint
	}{
		{false, binA.ID, 80},
		{false, binB.ID, 50},
		{true, binA.ID, 30},
		{false, binA.ID, 20},
		{true, binB.ID, 50},
		{true, binA.ID, 70},
	}

	var expectedTotal int
	for _, op := range ops {
		if op.out {
			_, err := StockOut(db, stockOut(item.ID, op.bin, op.qty))
			require.NoError(t, err)
			expectedTotal -= int(op.qty)
		} else {
			_, err := StockIn(db, stockIn(item.ID, op.bin, op.qty))
			require.NoError(t, err)
			expectedTotal += int(op.qty)
		}
	}

	total, err := ItemTotalQuantity(db, item.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(expectedTotal), total)

	// Defter: her başarılı işlem tam bir hareket satırı
	var movementCount int64
	db.Model(&models.StockMovement{}).Count(&movementCount)
	assert.Equal(t, int64(len(ops)), movementCount)

	// Her çıkış hareketinin tam bir makbuzu var
	var outCount, receiptCount int64
	db.Model(&models.StockMovement{}).Where("movement_type = ?", models.MovementOut).Count(&outCount)
	db.Model(&models.WarehouseReceipt{}).Count(&receiptCount)
	assert.Equal(t, outCount, receiptCount)

	// Hareketlerin cebirsel toplamı mevcut durumu verir
	type sums struct {
		InTotal  int64
		OutTotal int64
	}
	var s sums
	db.Model(&models.StockMovement{}).
		Select("COALESCE(SUM(CASE WHEN movement_type = 'IN' THEN quantity ELSE 0 END), 0) AS in_total, " +
			"COALESCE(SUM(CASE WHEN movement_type = 'OUT' THEN quantity ELSE 0 END), 0) AS out_total").
		Scan(&s)
	assert.Equal(t, int64(expectedTotal), s.InTotal-s.OutTotal)
}

func TestItemAvailableQuantity_ClampsAtZero(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "conta", 0)
	bin := seedBin(t, db, "E-01", 100, nil)

	_, err := StockIn(db, stockIn(item.ID, bin.ID, 10))
	require.NoError(t, err)

	// Rezerve toplamı aşarsa kullanılabilir miktar negatife düşmez
	require.NoError(t, db.Model(&models.Item{}).
		Where("id = ?", item.ID).Update("reserved_quantity", 25).Error)

	var fresh models.Item
	require.NoError(t, db.First(&fresh, "id = ?", item.ID).Error)

	available, err := ItemAvailableQuantity(db, &fresh)
	require.NoError(t, err)
	assert.Equal(t, uint(0), available)
}

func TestCheckItemAlerts_ExpiryThresholds(t *testing.T) {
	db := openTestDB(t)

	soon := time.Now().AddDate(0, 0, 3)
	expired := time.Now().AddDate(0, 0, -2)

	nearItem := seedItem(t, db, "sut", 0)
	require.NoError(t, db.Model(&models.Item{}).
		Where("id = ?", nearItem.ID).Update("expiry_date", soon).Error)
	expiredItem := seedItem(t, db, "yogurt", 0)
	require.NoError(t, db.Model(&models.Item{}).
		Where("id = ?", expiredItem.ID).Update("expiry_date", expired).Error)

	var fresh models.Item
	require.NoError(t, db.First(&fresh, "id = ?", nearItem.ID).Error)
	CheckItemAlerts(db, &fresh)

	var alert models.InventoryAlert
	err := db.Where("related_item_id = ? AND level = ?", nearItem.ID, models.AlertWarning).
		Where("message LIKE ?", "%son kullanma%").First(&alert).Error
	require.NoError(t, err)

	fresh = models.Item{}
	require.NoError(t, db.First(&fresh, "id = ?", expiredItem.ID).Error)
	CheckItemAlerts(db, &fresh)

	alert = models.InventoryAlert{}
	err = db.Where("related_item_id = ? AND level = ?", expiredItem.ID, models.AlertCritical).
		Where("message LIKE ?", "%son kullanma%").First(&alert).Error
	require.NoError(t, err)
}

func TestCheckBinAlerts_OccupancyThresholds(t *testing.T) {
	db := openTestDB(t)
	item := seedItem(t, db, "palet", 0)

	// Tam kapasite -> KRİTİK
	full := seedBin(t, db, "F-01", 50, nil)
	_, err := StockIn(db, stockIn(item.ID, full.ID, 50))
	require.NoError(t, err)

	var alert models.InventoryAlert
	require.NoError(t, db.Where("related_bin_id = ? AND level = ?", full.ID, models.AlertCritical).
		Order("id DESC").First(&alert).Error)
	assert.Contains(t, alert.Message, "tam kapasite")

	// %90 ve üzeri (ama dolu değil) -> UYARI
	nearFull := seedBin(t, db, "F-02", 100, nil)
	_, err = StockIn(db, stockIn(item.ID, nearFull.ID, 95))
	require.NoError(t, err)

	alert = models.InventoryAlert{}
	require.NoError(t, db.Where("related_bin_id = ? AND level = ?", nearFull.ID, models.AlertWarning).
		Where("message LIKE ?", "%dolmak üzere%").First(&alert).Error)

	// Boşalan göz -> UYARI
	drained := seedBin(t, db, "F-03", 100, nil)
	_, err = StockIn(db, stockIn(item.ID, drained.ID, 20))
	require.NoError(t, err)
	_, err = StockOut(db, stockOut(item.ID, drained.ID, 20))
	require.NoError(t, err)

	alert = models.InventoryAlert{}
	require.NoError(t, db.Where("related_bin_id = ? AND level = ?", drained.ID, models.AlertWarning).
		Where("message LIKE ?", "%boş%").Order("id DESC").First(&alert).Error)

	// %10 ve altı (ama boş değil) -> UYARI
	nearEmpty := seedBin(t, db, "F-04", 100, nil)
	_, err = StockIn(db, stockIn(item.ID, nearEmpty.ID, 8))
	require.NoError(t, err)

	alert = models.InventoryAlert{}
	require.NoError(t, db.Where("related_bin_id = ? AND level = ?", nearEmpty.ID, models.AlertWarning).
		Where("message LIKE ?", "%boşalmak üzere%").First(&alert).Error)
}

func TestCheckItemAlerts_LowStockThresholds(t *testing.T) {
	db := openTestDB(t)
	bin := seedBin(t, db, "G-01", 1000, nil)

	// Minimum seviyenin altı -> UYARI
	low := seedItem(t, db, "filtre", 100)
	_, err := StockIn(db, stockIn(low.ID, bin.ID, 60))
	require.NoError(t, err)

	var alert models.InventoryAlert
	require.NoError(t, db.Where("related_item_id = ? AND level = ?", low.ID, models.AlertWarning).
		Where("message LIKE ?", "%minimum stok%").First(&alert).Error)

	// Minimumun %10'u ve altı (ama sıfır değil) -> KRİTİK de eklenir
	critical := seedItem(t, db, "marsmotor", 100)
	_, err = StockIn(db, stockIn(critical.ID, bin.ID, 9))
	require.NoError(t, err)

	alert = models.InventoryAlert{}
	require.NoError(t, db.Where("related_item_id = ? AND level = ?", critical.ID, models.AlertCritical).
		Where("message LIKE ?", "%kritik seviyede%").First(&alert).Error)
}
