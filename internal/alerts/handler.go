package alerts

import (
	"fmt"
	"time"

	"envanter-backend/internal/audit"
	"envanter-backend/internal/auth"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AlertResponse struct {
	ID            uint    `json:"id"`
	Level         string  `json:"level"`
	Message       string  `json:"message"`
	RelatedItemID *uint   `json:"related_item_id"`
	RelatedBinID  *uint   `json:"related_bin_id"`
	IsResolved    bool    `json:"is_resolved"`
	ResolvedBy    *uint   `json:"resolved_by"`
	ResolvedAt    *string `json:"resolved_at"`
	CreatedAt     string  `json:"created_at"`
}

func toResponse(a *models.InventoryAlert) AlertResponse {
	var resolvedAt *string
	if a.ResolvedAt != nil {
		formatted := a.ResolvedAt.Format("2006-01-02 15:04:05")
		resolvedAt = &formatted
	}

	return AlertResponse{
		ID:            a.ID,
		Level:         string(a.Level),
		Message:       a.Message,
		RelatedItemID: a.RelatedItemID,
		RelatedBinID:  a.RelatedBinID,
		IsResolved:    a.IsResolved,
		ResolvedBy:    a.ResolvedBy,
		ResolvedAt:    resolvedAt,
		CreatedAt:     a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/alerts?resolved=&level=&item_id=&bin_id=
func ListAlertsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.InventoryAlert{})

		if resolved := c.Query("resolved"); resolved == "true" {
			dbq = dbq.Where("is_resolved = ?", true)
		} else if resolved == "false" {
			dbq = dbq.Where("is_resolved = ?", false)
		}
		if level := c.Query("level"); level == string(models.AlertWarning) || level == string(models.AlertCritical) {
			dbq = dbq.Where("level = ?", level)
		}
		if itemIDStr := c.Query("item_id"); itemIDStr != "" {
			var iid uint
			if _, err := fmt.Sscan(itemIDStr, &iid); err == nil && iid > 0 {
				dbq = dbq.Where("related_item_id = ?", iid)
			}
		}
		if binIDStr := c.Query("bin_id"); binIDStr != "" {
			var bid uint
			if _, err := fmt.Sscan(binIDStr, &bid); err == nil && bid > 0 {
				dbq = dbq.Where("related_bin_id = ?", bid)
			}
		}

		var alerts []models.InventoryAlert
		if err := dbq.Order("created_at DESC").Find(&alerts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uyarılar listelenemedi")
		}

		resp := make([]AlertResponse, 0, len(alerts))
		for i := range alerts {
			resp = append(resp, toResponse(&alerts[i]))
		}

		return c.JSON(resp)
	}
}

// POST /api/alerts/:id/resolve
func ResolveAlertHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var alert models.InventoryAlert
		if err := database.DB.First(&alert, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Uyarı bulunamadı")
		}

		if alert.IsResolved {
			return fiber.NewError(fiber.StatusBadRequest, "Uyarı zaten çözülmüş")
		}

		userIDVal := c.Locals(auth.CtxUserIDKey)
		userID, ok := userIDVal.(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
		}

		before := alert
		now := time.Now()
		alert.IsResolved = true
		alert.ResolvedBy = &userID
		alert.ResolvedAt = &now

		if err := database.DB.Save(&alert).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uyarı güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    user.Name,
			EntityType:  "inventory_alert",
			EntityID:    alert.ID,
			Action:      models.AuditActionResolve,
			Description: fmt.Sprintf("Uyarı çözüldü: %s", alert.Message),
			Before:      before,
			After:       alert,
		})

		return c.JSON(toResponse(&alert))
	}
}
