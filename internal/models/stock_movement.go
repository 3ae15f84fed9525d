package models

import "time"

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// StockMovement: append-only hareket defteri. Her başarılı Stock-In/Stock-Out
// tam bir satır ekler; satırlar oluşturulduktan sonra asla güncellenmez veya
// silinmez. "Ne oldu" sorusunun kayıt sistemi budur, StockRecord sadece
// türetilmiş önbellektir.
type StockMovement struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ItemID       uint         `gorm:"index;not null" json:"item_id"`
	StorageBinID uint         `gorm:"index;not null" json:"storage_bin_id"`
	MovementType MovementType `gorm:"size:10;not null" json:"movement_type"`
	Quantity     uint         `gorm:"not null" json:"quantity"`

	// İşlemi yapan kullanıcı (ad denormalize, audit kolaylığı için)
	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"`

	Notes string `gorm:"size:255" json:"notes"`

	// Çıkış hareketlerinde ilişkili makbuz (birebir)
	ReceiptID *uint `gorm:"index" json:"receipt_id"`

	CreatedAt time.Time `json:"created_at"`

	Item       Item       `json:"-"`
	StorageBin StorageBin `json:"-"`
}
