package models

import "time"

// WarehouseReceipt: her çıkış hareketi için bir kez üretilen teslim makbuzu.
// Oluşturma anındaki anlık görüntüyü taşır; alanlar sonradan yeniden
// hesaplanmaz. Hareket id'si bilindiğinde movement_id ile finalize edilir,
// sonrasında değiştirilmez.
type WarehouseReceipt struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ReceiptNo string `gorm:"size:50;index" json:"receipt_no"`

	// Finalize aşamasında doldurulur (tetikleyen hareketin id'si)
	MovementID *uint `gorm:"uniqueIndex" json:"movement_id"`

	ItemID       uint `gorm:"index;not null" json:"item_id"`
	StorageBinID uint `gorm:"index;not null" json:"storage_bin_id"`

	// Anlık görüntü alanları
	ItemName      string `gorm:"size:255" json:"item_name"`
	WarehouseName string `gorm:"size:255" json:"warehouse_name"`
	BinLabel      string `gorm:"size:50" json:"bin_label"`
	QtyPicked     uint   `gorm:"not null" json:"qty_picked"`
	QtyRemaining  uint   `gorm:"not null" json:"qty_remaining"`

	Recipient string `gorm:"size:255" json:"recipient"`
	IssuedBy  string `gorm:"size:100" json:"issued_by"`

	CreatedAt time.Time `json:"created_at"`
}
