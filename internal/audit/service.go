package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"envanter-backend/internal/database"
	"envanter-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog: fire-and-forget audit kaydı. Hata asıl işlemi durdurmaz;
// çağıranlar dönüş değerini genellikle yok sayar.
func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog: bir audit log'u geri al. Sadece katalog güncellemeleri geri
// alınabilir; stok hareketleri ve makbuzlar değişmez defter oldukları için
// hiçbir koşulda geri alınmaz.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	if log.EntityType != "item" && log.EntityType != "warehouse" {
		return fmt.Errorf("bu entity tipi geri alınamaz: %s", log.EntityType)
	}
	if log.Action != models.AuditActionUpdate {
		return fmt.Errorf("sadece güncelleme işlemleri geri alınabilir")
	}

	if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
		return fmt.Errorf("entity geri yüklenemedi: %w", err)
	}

	// Log'u işaretle
	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	// Undo işlemi için yeni bir log oluştur
	undoLog := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

// restoreEntity: entity'yi önceki haline döndür (update geri alma).
// Türetilmiş alanlar (current_load, stok toplamları) geri yüklenmez;
// onların kaynağı StockRecord tablosudur.
func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "item":
		var item models.Item
		if err := json.Unmarshal([]byte(dataJSON), &item); err != nil {
			return err
		}
		return database.DB.Model(&models.Item{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"name":            item.Name,
			"manufacturer":    item.Manufacturer,
			"contact":         item.Contact,
			"batch":           item.Batch,
			"expiry_date":     item.ExpiryDate,
			"min_stock_level": item.MinStockLevel,
			"custom_fields":   item.CustomFields,
		}).Error

	case "warehouse":
		var wh models.Warehouse
		if err := json.Unmarshal([]byte(dataJSON), &wh); err != nil {
			return err
		}
		return database.DB.Model(&models.Warehouse{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"name":        wh.Name,
			"description": wh.Description,
			"address":     wh.Address,
			"capacity":    wh.Capacity,
			"is_active":   wh.IsActive,
		}).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}
