package models

import "time"

// Warehouse: fiziksel depo. Kullanılan kapasite gözlerin current_load
// toplamından türetilir; göz oluşturulurken kapasite kontrolü yapılır
// (sürekli değil, yumuşak kısıt).
type Warehouse struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description string `gorm:"size:255" json:"description"`
	Address     string `gorm:"size:255" json:"address"`

	// Toplam kapasite (birim cinsinden)
	Capacity uint `gorm:"not null" json:"capacity"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Bins []StorageBin `gorm:"foreignKey:WarehouseID" json:"-"`
}
