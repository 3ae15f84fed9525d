package inventory

import (
	"time"

	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MetricsResponse struct {
	TotalItems       int64 `json:"total_items"`
	TotalWarehouses  int64 `json:"total_warehouses"`
	TotalBins        int64 `json:"total_bins"`
	TotalStock       uint  `json:"total_stock"`
	UnresolvedAlerts int64 `json:"unresolved_alerts"`
	TotalMovements   int64 `json:"total_movements"`
	ExpiredItems     int64 `json:"expired_items"`
}

type BinActivity struct {
	BinID         uint   `json:"bin_id"`
	BinLabel      string `json:"bin_label"`
	MovementCount int64  `json:"movement_count"`
}

type AnalyticsResponse struct {
	PeriodDays     int           `json:"period_days"`
	InboundTotal   uint          `json:"inbound_total"`
	OutboundTotal  uint          `json:"outbound_total"`
	TurnoverRate   float64       `json:"turnover_rate"`
	BusiestBins    []BinActivity `json:"busiest_bins"`
	WarningAlerts  int64         `json:"warning_alerts"`
	CriticalAlerts int64         `json:"critical_alerts"`
}

// GET /api/inventory/metrics
func InventoryMetricsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var resp MetricsResponse

		database.DB.Model(&models.Item{}).Count(&resp.TotalItems)
		database.DB.Model(&models.Warehouse{}).Count(&resp.TotalWarehouses)
		database.DB.Model(&models.StorageBin{}).Count(&resp.TotalBins)
		database.DB.Model(&models.InventoryAlert{}).Where("is_resolved = ?", false).Count(&resp.UnresolvedAlerts)
		database.DB.Model(&models.StockMovement{}).Count(&resp.TotalMovements)
		database.DB.Model(&models.Item{}).
			Where("expiry_date IS NOT NULL AND expiry_date < ?", time.Now()).
			Count(&resp.ExpiredItems)

		var totalStock int64
		if err := database.DB.Model(&models.StockRecord{}).
			Select("COALESCE(SUM(quantity), 0)").Scan(&totalStock).Error; err == nil {
			resp.TotalStock = uint(totalStock)
		}

		return c.JSON(resp)
	}
}

// GET /api/inventory/analytics
// Son 30 günün giriş/çıkış toplamları, devir hızı ve en hareketli gözler.
func AnalyticsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		const periodDays = 30
		since := time.Now().AddDate(0, 0, -periodDays)

		resp := AnalyticsResponse{PeriodDays: periodDays}

		var inbound, outbound int64
		database.DB.Model(&models.StockMovement{}).
			Where("movement_type = ? AND created_at >= ?", models.MovementIn, since).
			Select("COALESCE(SUM(quantity), 0)").Scan(&inbound)
		database.DB.Model(&models.StockMovement{}).
			Where("movement_type = ? AND created_at >= ?", models.MovementOut, since).
			Select("COALESCE(SUM(quantity), 0)").Scan(&outbound)

		resp.InboundTotal = uint(inbound)
		resp.OutboundTotal = uint(outbound)

		// Devir hızı: dönem çıkışının mevcut toplam stoka oranı
		var totalStock int64
		database.DB.Model(&models.StockRecord{}).
			Select("COALESCE(SUM(quantity), 0)").Scan(&totalStock)
		if totalStock > 0 {
			resp.TurnoverRate = float64(outbound) / float64(totalStock)
		}

		type binRow struct {
			StorageBinID  uint
			MovementCount int64
		}
		var rows []binRow
		database.DB.Model(&models.StockMovement{}).
			Select("storage_bin_id, COUNT(*) AS movement_count").
			Where("created_at >= ?", since).
			Group("storage_bin_id").
			Order("movement_count DESC").
			Limit(5).
			Scan(&rows)

		resp.BusiestBins = make([]BinActivity, 0, len(rows))
		for _, row := range rows {
			var bin models.StorageBin
			label := ""
			if err := database.DB.First(&bin, "id = ?", row.StorageBinID).Error; err == nil {
				label = bin.BinID
			}
			resp.BusiestBins = append(resp.BusiestBins, BinActivity{
				BinID:         row.StorageBinID,
				BinLabel:      label,
				MovementCount: row.MovementCount,
			})
		}

		database.DB.Model(&models.InventoryAlert{}).
			Where("level = ? AND is_resolved = ?", models.AlertWarning, false).
			Count(&resp.WarningAlerts)
		database.DB.Model(&models.InventoryAlert{}).
			Where("level = ? AND is_resolved = ?", models.AlertCritical, false).
			Count(&resp.CriticalAlerts)

		return c.JSON(resp)
	}
}
