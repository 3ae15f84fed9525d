package stock

import (
	"errors"
	"fmt"
	"log"

	"envanter-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stock-In / Stock-Out: defterin tutarlılık açısından kritik yazma yolu.
// Her çağrı tek bir transaction içinde çalışır: StockRecord değişikliği,
// gözün current_load yeniden hesabı, hareket satırı ve (çıkışta) makbuz
// ya hep birlikte commit olur ya da hiçbiri.

type StockInInput struct {
	ItemID   uint
	BinID    uint
	Quantity uint
	Notes    string
	UserID   uint
	UserName string
}

type StockInResult struct {
	MovementID uint
}

type StockOutInput struct {
	ItemID    uint
	BinID     uint
	Quantity  uint
	Notes     string
	Recipient string
	UserID    uint
	UserName  string

	// Depo ataması olmayan gözün bağlanacağı depo kodu (config'den gelir)
	FallbackWarehouseCode string
}

type StockOutResult struct {
	MovementID uint
	ReceiptID  uint
	ReceiptNo  string
}

// StockIn: ürünü göze ekler. Kapasite kontrolü göz kilitliyken yapılır;
// aşım durumunda işlem CapacityExceededError ile reddedilir ve reddedilen
// deneme KRİTİK alarm olarak kayda geçer (bilinçli tercih: başarısız
// denemeler de operasyonel olarak görünür olmalı).
func StockIn(db *gorm.DB, in StockInInput) (*StockInResult, error) {
	item, bin, err := loadItemAndBin(db, in.ItemID, in.BinID, in.Quantity)
	if err != nil {
		return nil, err
	}

	var movement models.StockMovement

	txErr := db.Transaction(func(tx *gorm.DB) error {
		// Gözü kilitle: kapasite kontrolü ile yazma arasına başka işlem giremez
		if err := lockForUpdate(tx).First(bin, "id = ?", bin.ID).Error; err != nil {
			return err
		}

		if in.Quantity > bin.FreeSpace() {
			return &CapacityExceededError{
				BinLabel:  bin.BinID,
				Requested: in.Quantity,
				Available: bin.FreeSpace(),
			}
		}

		// (ürün, göz) kaydını bul veya oluştur
		var record models.StockRecord
		err := lockForUpdate(tx).
			Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).
			First(&record).Error
		switch {
		case err == nil:
			record.Quantity += in.Quantity
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.StockRecord{
				ItemID:       item.ID,
				StorageBinID: bin.ID,
				Quantity:     in.Quantity,
				CreatedBy:    in.UserID,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if err := recomputeBinLoad(tx, bin); err != nil {
			return err
		}

		movement = models.StockMovement{
			ItemID:       item.ID,
			StorageBinID: bin.ID,
			MovementType: models.MovementIn,
			Quantity:     in.Quantity,
			UserID:       in.UserID,
			UserName:     in.UserName,
			Notes:        in.Notes,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		CheckItemAlerts(tx, item)
		CheckBinAlerts(tx, bin)
		return nil
	})

	if txErr != nil {
		var capErr *CapacityExceededError
		if errors.As(txErr, &capErr) {
			// Transaction geri alındı; reddedilen deneme yine de alarm olarak yazılır
			createAlert(db, models.AlertCritical,
				fmt.Sprintf("Göz %s için %d birim eklenemedi: yetersiz alan (boş: %d).",
					bin.BinID, in.Quantity, capErr.Available),
				&item.ID, &bin.ID)
		}
		return nil, txErr
	}

	log.Printf("Stok girişi: %d x %s -> %s (%s)", in.Quantity, item.Name, bin.BinID, in.UserName)
	return &StockInResult{MovementID: movement.ID}, nil
}

// StockOut: üründen gözden çıkış yapar ve teslim makbuzu üretir.
// Kontrol sırası: önce (ürün, göz) kaydındaki miktar, sonra ürünün TÜM
// lokasyonlardaki kullanılabilir miktarı (toplam - rezerve).
func StockOut(db *gorm.DB, in StockOutInput) (*StockOutResult, error) {
	item, bin, err := loadItemAndBin(db, in.ItemID, in.BinID, in.Quantity)
	if err != nil {
		return nil, err
	}

	var movement models.StockMovement
	var receipt models.WarehouseReceipt

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(bin, "id = ?", bin.ID).Error; err != nil {
			return err
		}

		var record models.StockRecord
		err := lockForUpdate(tx).
			Where("item_id = ? AND storage_bin_id = ?", item.ID, bin.ID).
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && record.Quantity < in.Quantity) {
			return &InsufficientStockError{
				BinLabel:  bin.BinID,
				ItemName:  item.Name,
				Requested: in.Quantity,
				Available: record.Quantity,
			}
		}
		if err != nil {
			return err
		}

		// Rezervasyon kontrolü: tüm lokasyonlardaki kullanılabilir miktara bakılır
		available, err := ItemAvailableQuantity(tx, item)
		if err != nil {
			return err
		}
		if in.Quantity > available {
			return &ReservationConflictError{
				ItemName:  item.Name,
				Requested: in.Quantity,
				Available: available,
			}
		}

		// Miktarı düş; sıfıra inen kayıt tutulmaz
		record.Quantity -= in.Quantity
		if record.Quantity == 0 {
			if err := tx.Delete(&record).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
		}

		if err := recomputeBinLoad(tx, bin); err != nil {
			return err
		}

		// Depo ataması olmayan göz varsayılan depoya bağlanır;
		// işlem bu yüzden reddedilmez (kullanılabilirlik tercih edildi)
		if bin.WarehouseID == nil {
			attachFallbackWarehouse(tx, bin, in.FallbackWarehouseCode)
		}

		movement = models.StockMovement{
			ItemID:       item.ID,
			StorageBinID: bin.ID,
			MovementType: models.MovementOut,
			Quantity:     in.Quantity,
			UserID:       in.UserID,
			UserName:     in.UserName,
			Notes:        in.Notes,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		// Makbuz: oluşturma anındaki anlık görüntü. Hareket id'si artık
		// bilindiği için makbuz movement_id ile finalize edilir ve hareket
		// makbuza geri bağlanır (birebir ilişki).
		receipt = models.WarehouseReceipt{
			ReceiptNo:     GenerateReceiptNo(),
			ItemID:        item.ID,
			StorageBinID:  bin.ID,
			ItemName:      item.Name,
			WarehouseName: warehouseName(tx, bin),
			BinLabel:      bin.BinID,
			QtyPicked:     in.Quantity,
			QtyRemaining:  available - in.Quantity,
			Recipient:     in.Recipient,
			IssuedBy:      in.UserName,
		}
		if err := tx.Create(&receipt).Error; err != nil {
			return err
		}
		if err := tx.Model(&receipt).Update("movement_id", movement.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&movement).Update("receipt_id", receipt.ID).Error; err != nil {
			return err
		}

		CheckItemAlerts(tx, item)
		CheckBinAlerts(tx, bin)
		return nil
	})

	if txErr != nil {
		var insErr *InsufficientStockError
		var resErr *ReservationConflictError
		switch {
		case errors.As(txErr, &insErr):
			createAlert(db, models.AlertCritical,
				fmt.Sprintf("Göz %s içinden %d birim %s çıkarılamadı: yetersiz stok (mevcut: %d).",
					bin.BinID, in.Quantity, item.Name, insErr.Available),
				&item.ID, &bin.ID)
		case errors.As(txErr, &resErr):
			createAlert(db, models.AlertWarning,
				fmt.Sprintf("İstenen miktar (%d), rezervasyonlar nedeniyle %s için kullanılabilir stoku (%d) aşıyor.",
					in.Quantity, item.Name, resErr.Available),
				&item.ID, nil)
		}
		return nil, txErr
	}

	log.Printf("Stok çıkışı: %d x %s <- %s, makbuz %s (%s)", in.Quantity, item.Name, bin.BinID, receipt.ReceiptNo, in.UserName)
	return &StockOutResult{
		MovementID: movement.ID,
		ReceiptID:  receipt.ID,
		ReceiptNo:  receipt.ReceiptNo,
	}, nil
}

// Girdi doğrulama: yan etki oluşmadan önce reddedilir.
func loadItemAndBin(db *gorm.DB, itemID, binID, quantity uint) (*models.Item, *models.StorageBin, error) {
	if quantity == 0 {
		return nil, nil, &ValidationError{Msg: "Miktar pozitif olmalı"}
	}

	var item models.Item
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		return nil, nil, &ValidationError{Msg: fmt.Sprintf("Ürün bulunamadı (ID: %d)", itemID)}
	}

	var bin models.StorageBin
	if err := db.First(&bin, "id = ?", binID).Error; err != nil {
		return nil, nil, &ValidationError{Msg: fmt.Sprintf("Göz bulunamadı (ID: %d)", binID)}
	}

	return &item, &bin, nil
}

// current_load her zaman StockRecord toplamından yeniden hesaplanır;
// yerinde artırma/azaltma kısmi hata durumlarında sapmaya açıktır.
func recomputeBinLoad(tx *gorm.DB, bin *models.StorageBin) error {
	var total int64
	if err := tx.Model(&models.StockRecord{}).
		Where("storage_bin_id = ?", bin.ID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return err
	}

	bin.CurrentLoad = uint(total)
	return tx.Model(&models.StorageBin{}).
		Where("id = ?", bin.ID).
		Update("current_load", bin.CurrentLoad).Error
}

// attachFallbackWarehouse: gözü koda karşılık gelen depoya bağlar.
// Depo bulunamazsa veya kapasitesi yetmezse göz depo'suz kalır;
// çıkış işlemi bundan etkilenmez.
func attachFallbackWarehouse(tx *gorm.DB, bin *models.StorageBin, code string) {
	if code == "" {
		return
	}

	var wh models.Warehouse
	if err := tx.First(&wh, "code = ?", code).Error; err != nil {
		log.Printf("[WARN] Varsayılan depo bulunamadı (%s), göz %s depo'suz kaldı", code, bin.BinID)
		return
	}

	used, err := WarehouseUsedCapacity(tx, wh.ID)
	if err != nil || used+bin.CurrentLoad > wh.Capacity {
		log.Printf("[WARN] Varsayılan depo %s kapasitesi yetersiz, göz %s bağlanmadı", wh.Code, bin.BinID)
		return
	}

	if err := tx.Model(&models.StorageBin{}).
		Where("id = ?", bin.ID).
		Update("warehouse_id", wh.ID).Error; err != nil {
		log.Printf("[WARN] Göz %s varsayılan depoya bağlanamadı: %v", bin.BinID, err)
		return
	}
	bin.WarehouseID = &wh.ID
}

func warehouseName(tx *gorm.DB, bin *models.StorageBin) string {
	if bin.WarehouseID == nil {
		return "-"
	}
	var wh models.Warehouse
	if err := tx.First(&wh, "id = ?", *bin.WarehouseID).Error; err != nil {
		return "-"
	}
	return wh.Name
}

// SQLite tüm veritabanını kilitlediği için FOR UPDATE sadece Postgres'te
// gereklidir (SQLite sözdizimini de desteklemez).
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
