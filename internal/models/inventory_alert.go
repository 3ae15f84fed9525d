package models

import "time"

type AlertLevel string

const (
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// InventoryAlert: eşik aşımlarında reaktif olarak üretilen sinyal. Her eşik
// geçişi yeni bir satır oluşturur (dedup yok); oluşturulduktan sonra sadece
// çözüm durumu değişebilir.
type InventoryAlert struct {
	ID      uint       `gorm:"primaryKey" json:"id"`
	Level   AlertLevel `gorm:"size:20;not null" json:"level"`
	Message string     `gorm:"size:255;not null" json:"message"`

	RelatedItemID *uint `gorm:"index" json:"related_item_id"`
	RelatedBinID  *uint `gorm:"index" json:"related_bin_id"`

	IsResolved bool       `gorm:"default:false;index" json:"is_resolved"`
	ResolvedBy *uint      `json:"resolved_by"`
	ResolvedAt *time.Time `json:"resolved_at"`

	CreatedAt time.Time `json:"created_at"`

	RelatedItem *Item       `json:"-"`
	RelatedBin  *StorageBin `json:"-"`
}
