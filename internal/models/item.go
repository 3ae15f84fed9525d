package models

import "time"

// Item: stoklanan ürün kartı. Toplam ve kullanılabilir miktar StockRecord
// tablosundan türetilir, burada tutulmaz (stock paketi hesaplar).
type Item struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	PartNumber   string `gorm:"size:100;uniqueIndex;not null" json:"part_number"`
	Manufacturer string `gorm:"size:255" json:"manufacturer"`
	Contact      string `gorm:"size:255" json:"contact"`
	Batch        string `gorm:"size:100" json:"batch"`

	// Son kullanma tarihi (opsiyonel); alarm kuralları için kullanılır
	ExpiryDate *time.Time `json:"expiry_date"`

	MinStockLevel uint `gorm:"not null;default:0" json:"min_stock_level"`

	// Rezerve edilmiş miktar: toplam stoktan düşülür, kullanılabilir miktarı belirler.
	// Rezervasyon iş akışı dışarıda; bu motor sadece okur ve reserve endpoint'i yazar.
	ReservedQuantity uint `gorm:"not null;default:0" json:"reserved_quantity"`

	// Serbest alanlar (JSON)
	CustomFields string `gorm:"type:jsonb;default:'{}'" json:"custom_fields"`

	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
