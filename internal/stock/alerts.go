package stock

import (
	"fmt"
	"log"
	"time"

	"envanter-backend/internal/models"

	"gorm.io/gorm"
)

// Alarm üretimi reaktiftir: her Item veya StorageBin yazımından sonra
// eşikler yeniden değerlendirilir. Her eşik geçişi YENİ bir alarm satırı
// oluşturur, mevcut çözülmemiş alarmla birleştirme yapılmaz.

func createAlert(db *gorm.DB, level models.AlertLevel, message string, itemID, binID *uint) {
	alert := models.InventoryAlert{
		Level:         level,
		Message:       message,
		RelatedItemID: itemID,
		RelatedBinID:  binID,
	}
	if err := db.Create(&alert).Error; err != nil {
		// Alarm yazılamaması asıl işlemi durdurmaz
		log.Printf("[WARN] Alarm kaydedilemedi: %v", err)
	}
}

// CheckItemAlerts: ürün seviyesindeki eşikleri değerlendirir
// (düşük stok, kritik düşük stok, son kullanma tarihi).
func CheckItemAlerts(db *gorm.DB, item *models.Item) {
	total, err := ItemTotalQuantity(db, item.ID)
	if err != nil {
		log.Printf("[WARN] Ürün %s için toplam miktar hesaplanamadı: %v", item.Name, err)
		return
	}

	// Düşük stok
	if total <= item.MinStockLevel {
		createAlert(db, models.AlertWarning,
			fmt.Sprintf("Ürün %s minimum stok seviyesinin altında (%d/%d).", item.Name, total, item.MinStockLevel),
			&item.ID, nil)
	}

	// Kritik düşük stok (minimum seviyenin %10'u ve altı)
	if total > 0 && float64(total) <= float64(item.MinStockLevel)*0.1 {
		createAlert(db, models.AlertCritical,
			fmt.Sprintf("Ürün %s kritik seviyede düşük (%d/%d).", item.Name, total, item.MinStockLevel),
			&item.ID, nil)
	}

	// Son kullanma tarihi
	if item.ExpiryDate != nil {
		days := daysUntil(*item.ExpiryDate)
		if days >= 0 && days <= 7 {
			createAlert(db, models.AlertWarning,
				fmt.Sprintf("Ürün %s %d gün içinde son kullanma tarihine ulaşacak (%s).",
					item.Name, days, item.ExpiryDate.Format("2006-01-02")),
				&item.ID, nil)
		} else if days < 0 {
			createAlert(db, models.AlertCritical,
				fmt.Sprintf("Ürün %s son kullanma tarihini geçti (%s).",
					item.Name, item.ExpiryDate.Format("2006-01-02")),
				&item.ID, nil)
		}
	}
}

// CheckBinAlerts: göz seviyesindeki doluluk eşiklerini değerlendirir.
// bin.CurrentLoad çağrı anında güncel olmalıdır.
func CheckBinAlerts(db *gorm.DB, bin *models.StorageBin) {
	thresholdFull := float64(bin.Capacity) * 0.9
	thresholdEmpty := float64(bin.Capacity) * 0.1

	if bin.CurrentLoad >= bin.Capacity {
		createAlert(db, models.AlertCritical,
			fmt.Sprintf("Göz %s tam kapasitede (%d/%d).", bin.BinID, bin.CurrentLoad, bin.Capacity),
			nil, &bin.ID)
	} else if float64(bin.CurrentLoad) >= thresholdFull {
		createAlert(db, models.AlertWarning,
			fmt.Sprintf("Göz %s dolmak üzere (%d/%d).", bin.BinID, bin.CurrentLoad, bin.Capacity),
			nil, &bin.ID)
	}

	if bin.CurrentLoad == 0 {
		createAlert(db, models.AlertWarning,
			fmt.Sprintf("Göz %s boş.", bin.BinID),
			nil, &bin.ID)
	} else if float64(bin.CurrentLoad) <= thresholdEmpty {
		createAlert(db, models.AlertWarning,
			fmt.Sprintf("Göz %s boşalmak üzere (%d/%d).", bin.BinID, bin.CurrentLoad, bin.Capacity),
			nil, &bin.ID)
	}
}

// Bugünden hedef tarihe kalan tam gün sayısı (tarih bazlı, saat yok sayılır).
func daysUntil(date time.Time) int {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	target := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	return int(target.Sub(today).Hours() / 24)
}
