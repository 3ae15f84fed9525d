package receipts

import (
	"fmt"
	"strings"

	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReceiptResponse struct {
	ID            uint   `json:"id"`
	ReceiptNo     string `json:"receipt_no"`
	MovementID    *uint  `json:"movement_id"`
	ItemID        uint   `json:"item_id"`
	ItemName      string `json:"item_name"`
	StorageBinID  uint   `json:"storage_bin_id"`
	BinLabel      string `json:"bin_label"`
	WarehouseName string `json:"warehouse_name"`
	QtyPicked     uint   `json:"qty_picked"`
	QtyRemaining  uint   `json:"qty_remaining"`
	Recipient     string `json:"recipient"`
	IssuedBy      string `json:"issued_by"`
	CreatedAt     string `json:"created_at"`
}

func toResponse(r *models.WarehouseReceipt) ReceiptResponse {
	return ReceiptResponse{
		ID:            r.ID,
		ReceiptNo:     r.ReceiptNo,
		MovementID:    r.MovementID,
		ItemID:        r.ItemID,
		ItemName:      r.ItemName,
		StorageBinID:  r.StorageBinID,
		BinLabel:      r.BinLabel,
		WarehouseName: r.WarehouseName,
		QtyPicked:     r.QtyPicked,
		QtyRemaining:  r.QtyRemaining,
		Recipient:     r.Recipient,
		IssuedBy:      r.IssuedBy,
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/receipts?item_id=&receipt_no=
// Makbuzlar salt okunur anlık görüntülerdir; güncelleme veya silme ucu yok.
func ListReceiptsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.WarehouseReceipt{})

		if itemIDStr := c.Query("item_id"); itemIDStr != "" {
			var iid uint
			if _, err := fmt.Sscan(itemIDStr, &iid); err == nil && iid > 0 {
				dbq = dbq.Where("item_id = ?", iid)
			}
		}
		if receiptNo := strings.TrimSpace(c.Query("receipt_no")); receiptNo != "" {
			dbq = dbq.Where("receipt_no LIKE ?", "%"+receiptNo+"%")
		}

		var receipts []models.WarehouseReceipt
		if err := dbq.Order("created_at DESC").Find(&receipts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Makbuzlar listelenemedi")
		}

		resp := make([]ReceiptResponse, 0, len(receipts))
		for i := range receipts {
			resp = append(resp, toResponse(&receipts[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/receipts/:id
func GetReceiptHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var receipt models.WarehouseReceipt
		if err := database.DB.First(&receipt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Makbuz bulunamadı")
		}

		return c.JSON(toResponse(&receipt))
	}
}
