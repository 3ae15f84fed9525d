package stock

import (
	"envanter-backend/internal/models"

	"gorm.io/gorm"
)

// ItemTotalQuantity: ürünün tüm gözlerdeki toplam miktarı (StockRecord toplamı).
func ItemTotalQuantity(db *gorm.DB, itemID uint) (uint, error) {
	var total int64
	err := db.Model(&models.StockRecord{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return uint(total), nil
}

// ItemAvailableQuantity: toplam - rezerve. Rezerve miktar toplamı aşmışsa
// (dışarıdan bozulmuş veri) 0 döner, negatif değer sızdırılmaz.
func ItemAvailableQuantity(db *gorm.DB, item *models.Item) (uint, error) {
	total, err := ItemTotalQuantity(db, item.ID)
	if err != nil {
		return 0, err
	}
	if item.ReservedQuantity >= total {
		return 0, nil
	}
	return total - item.ReservedQuantity, nil
}

// WarehouseUsedCapacity: deponun gözlerindeki current_load toplamı.
func WarehouseUsedCapacity(db *gorm.DB, warehouseID uint) (uint, error) {
	var total int64
	err := db.Model(&models.StorageBin{}).
		Where("warehouse_id = ?", warehouseID).
		Select("COALESCE(SUM(current_load), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return uint(total), nil
}
