package models

import "time"

// StorageBin: depo içinde adreslenebilir göz (sıra/raf/bölme).
// current_load denormalize bir sayaçtır; her yazmada StockRecord
// toplamından yeniden hesaplanır, yerinde artırılıp azaltılmaz.
// Değişmezler: current_load == Σ StockRecord.quantity ve current_load <= capacity.
type StorageBin struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WarehouseID *uint  `gorm:"index" json:"warehouse_id"`
	BinID       string `gorm:"size:50;uniqueIndex;not null" json:"bin_id"`
	Row         string `gorm:"size:50;index:idx_bin_row_rack" json:"row"`
	Rack        string `gorm:"size:50;index:idx_bin_row_rack" json:"rack"`
	Shelf       string `gorm:"size:50" json:"shelf"`
	Type        string `gorm:"size:100" json:"type"`
	Capacity    uint   `gorm:"not null" json:"capacity"`
	CurrentLoad uint   `gorm:"not null;default:0" json:"current_load"`
	Description string `gorm:"size:255" json:"description"`
	CreatedBy   uint   `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Warehouse *Warehouse `json:"-"`
}

// FreeSpace: gözdeki boş alan. Değişmezler korunduğu sürece negatif olamaz.
func (b *StorageBin) FreeSpace() uint {
	if b.CurrentLoad >= b.Capacity {
		return 0
	}
	return b.Capacity - b.CurrentLoad
}

func (b *StorageBin) UsagePercentage() float64 {
	if b.Capacity == 0 {
		return 0
	}
	return float64(b.CurrentLoad) / float64(b.Capacity) * 100
}
