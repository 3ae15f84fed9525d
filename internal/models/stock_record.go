package models

import "time"

// StockRecord: (ürün, göz) çifti başına canlı miktar satırı. Hareket
// defterinden türetilebilen "mevcut durum" önbelleğidir. Sadece stock
// paketindeki Stock-In/Stock-Out işlemleri yazar; miktar sıfıra düşen
// satır tutulmaz, silinir.
type StockRecord struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	ItemID       uint `gorm:"not null;uniqueIndex:idx_stock_item_bin" json:"item_id"`
	StorageBinID uint `gorm:"not null;uniqueIndex:idx_stock_item_bin" json:"storage_bin_id"`
	Quantity     uint `gorm:"not null;default:0" json:"quantity"`
	CreatedBy    uint `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Item       Item       `json:"-"`
	StorageBin StorageBin `json:"-"`
}
