package stock

import (
	"errors"
	"fmt"

	"envanter-backend/internal/audit"
	"envanter-backend/internal/auth"
	"envanter-backend/internal/config"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StockInRequest struct {
	ItemID   uint   `json:"item_id"`
	BinID    uint   `json:"bin_id"`
	Quantity uint   `json:"quantity"`
	Notes    string `json:"notes"`
}

type StockOutRequest struct {
	ItemID    uint   `json:"item_id"`
	BinID     uint   `json:"bin_id"`
	Quantity  uint   `json:"quantity"`
	Notes     string `json:"notes"`
	Recipient string `json:"recipient"`
}

type StockRecordResponse struct {
	ID        uint   `json:"id"`
	ItemID    uint   `json:"item_id"`
	ItemName  string `json:"item_name"`
	BinID     uint   `json:"bin_id"`
	BinLabel  string `json:"bin_label"`
	Quantity  uint   `json:"quantity"`
	CreatedAt string `json:"created_at"`
}

type StockMovementResponse struct {
	ID           uint   `json:"id"`
	ItemID       uint   `json:"item_id"`
	ItemName     string `json:"item_name"`
	BinID        uint   `json:"bin_id"`
	BinLabel     string `json:"bin_label"`
	MovementType string `json:"movement_type"`
	Quantity     uint   `json:"quantity"`
	UserName     string `json:"user_name"`
	Notes        string `json:"notes"`
	ReceiptID    *uint  `json:"receipt_id"`
	CreatedAt    string `json:"created_at"`
}

// Yardımcı: JWT'den kullanıcı bilgilerini al
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}

// Domain hatalarını HTTP koduna çevir; tanınmayan hatalar 500 olur
// (transaction geri alınmıştır, çağıran tekrar deneyebilir)
func toFiberError(err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	}
	var cErr *CapacityExceededError
	if errors.As(err, &cErr) {
		return fiber.NewError(fiber.StatusConflict, cErr.Error())
	}
	var iErr *InsufficientStockError
	if errors.As(err, &iErr) {
		return fiber.NewError(fiber.StatusConflict, iErr.Error())
	}
	var rErr *ReservationConflictError
	if errors.As(err, &rErr) {
		return fiber.NewError(fiber.StatusConflict, rErr.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Stok işlemi tamamlanamadı")
}

// POST /api/stock-in
func StockInHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StockInRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		result, err := StockIn(database.DB, StockInInput{
			ItemID:   body.ItemID,
			BinID:    body.BinID,
			Quantity: body.Quantity,
			Notes:    body.Notes,
			UserID:   userID,
			UserName: userName,
		})
		if err != nil {
			return toFiberError(err)
		}

		// Audit log (best effort, asıl işlemi durdurmaz)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "stock_movement",
			EntityID:    result.MovementID,
			Action:      models.AuditActionStockIn,
			Description: fmt.Sprintf("Stok girişi: ürün %d, göz %d, miktar %d", body.ItemID, body.BinID, body.Quantity),
			Before:      nil,
			After:       body,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":     "Stok girişi başarılı",
			"movement_id": result.MovementID,
		})
	}
}

// POST /api/stock-out
func StockOutHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StockOutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		result, err := StockOut(database.DB, StockOutInput{
			ItemID:                body.ItemID,
			BinID:                 body.BinID,
			Quantity:              body.Quantity,
			Notes:                 body.Notes,
			Recipient:             body.Recipient,
			UserID:                userID,
			UserName:              userName,
			FallbackWarehouseCode: cfg.FallbackWarehouseCode,
		})
		if err != nil {
			return toFiberError(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "stock_movement",
			EntityID:    result.MovementID,
			Action:      models.AuditActionStockOut,
			Description: fmt.Sprintf("Stok çıkışı: ürün %d, göz %d, miktar %d, makbuz %s", body.ItemID, body.BinID, body.Quantity, result.ReceiptNo),
			Before:      nil,
			After:       body,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":     "Stok çıkışı başarılı",
			"movement_id": result.MovementID,
			"receipt_id":  result.ReceiptID,
			"receipt_no":  result.ReceiptNo,
		})
	}
}

// GET /api/stock-records?item_id=&bin_id=&search=
func ListStockRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockRecord{}).Preload("Item").Preload("StorageBin")

		if itemIDStr := c.Query("item_id"); itemIDStr != "" {
			var iid uint
			if _, err := fmt.Sscan(itemIDStr, &iid); err == nil && iid > 0 {
				dbq = dbq.Where("item_id = ?", iid)
			}
		}
		if binIDStr := c.Query("bin_id"); binIDStr != "" {
			var bid uint
			if _, err := fmt.Sscan(binIDStr, &bid); err == nil && bid > 0 {
				dbq = dbq.Where("storage_bin_id = ?", bid)
			}
		}

		var records []models.StockRecord
		if err := dbq.Order("updated_at DESC").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kayıtları listelenemedi")
		}

		resp := make([]StockRecordResponse, 0, len(records))
		for _, r := range records {
			resp = append(resp, StockRecordResponse{
				ID:        r.ID,
				ItemID:    r.ItemID,
				ItemName:  r.Item.Name,
				BinID:     r.StorageBinID,
				BinLabel:  r.StorageBin.BinID,
				Quantity:  r.Quantity,
				CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}

// GET /api/stock-movements?item_id=&bin_id=&type=
func ListStockMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockMovement{}).Preload("Item").Preload("StorageBin")

		if itemIDStr := c.Query("item_id"); itemIDStr != "" {
			var iid uint
			if _, err := fmt.Sscan(itemIDStr, &iid); err == nil && iid > 0 {
				dbq = dbq.Where("item_id = ?", iid)
			}
		}
		if binIDStr := c.Query("bin_id"); binIDStr != "" {
			var bid uint
			if _, err := fmt.Sscan(binIDStr, &bid); err == nil && bid > 0 {
				dbq = dbq.Where("storage_bin_id = ?", bid)
			}
		}
		if mType := c.Query("type"); mType == string(models.MovementIn) || mType == string(models.MovementOut) {
			dbq = dbq.Where("movement_type = ?", mType)
		}

		var movements []models.StockMovement
		if err := dbq.Order("created_at DESC").Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketleri listelenemedi")
		}

		resp := make([]StockMovementResponse, 0, len(movements))
		for _, m := range movements {
			resp = append(resp, StockMovementResponse{
				ID:           m.ID,
				ItemID:       m.ItemID,
				ItemName:     m.Item.Name,
				BinID:        m.StorageBinID,
				BinLabel:     m.StorageBin.BinID,
				MovementType: string(m.MovementType),
				Quantity:     m.Quantity,
				UserName:     m.UserName,
				Notes:        m.Notes,
				ReceiptID:    m.ReceiptID,
				CreatedAt:    m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}
