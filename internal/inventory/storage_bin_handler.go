package inventory

import (
	"fmt"
	"strings"

	"envanter-backend/internal/audit"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateBinRequest struct {
	BinID       string `json:"bin_id"`
	WarehouseID *uint  `json:"warehouse_id"`
	Row         string `json:"row"`
	Rack        string `json:"rack"`
	Shelf       string `json:"shelf"`
	Type        string `json:"type"`
	Capacity    uint   `json:"capacity"`
}

type UpdateBinRequest struct {
	WarehouseID *uint   `json:"warehouse_id"`
	Row         *string `json:"row"`
	Rack        *string `json:"rack"`
	Shelf       *string `json:"shelf"`
	Type        *string `json:"type"`
	Capacity    *uint   `json:"capacity"`
}

type StorageBinResponse struct {
	ID              uint    `json:"id"`
	BinID           string  `json:"bin_id"`
	WarehouseID     *uint   `json:"warehouse_id"`
	WarehouseName   string  `json:"warehouse_name"`
	Row             string  `json:"row"`
	Rack            string  `json:"rack"`
	Shelf           string  `json:"shelf"`
	Type            string  `json:"type"`
	Capacity        uint    `json:"capacity"`
	CurrentLoad     uint    `json:"current_load"`
	FreeSpace       uint    `json:"free_space"`
	UsagePercentage float64 `json:"usage_percentage"`
	CreatedAt       string  `json:"created_at"`
}

func binToResponse(bin *models.StorageBin) StorageBinResponse {
	warehouseName := ""
	if bin.WarehouseID != nil {
		var wh models.Warehouse
		if err := database.DB.First(&wh, "id = ?", *bin.WarehouseID).Error; err == nil {
			warehouseName = wh.Name
		}
	}

	return StorageBinResponse{
		ID:              bin.ID,
		BinID:           bin.BinID,
		WarehouseID:     bin.WarehouseID,
		WarehouseName:   warehouseName,
		Row:             bin.Row,
		Rack:            bin.Rack,
		Shelf:           bin.Shelf,
		Type:            bin.Type,
		Capacity:        bin.Capacity,
		CurrentLoad:     bin.CurrentLoad,
		FreeSpace:       bin.FreeSpace(),
		UsagePercentage: bin.UsagePercentage(),
		CreatedAt:       bin.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/admin/bins
func CreateBinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBinRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.BinID = strings.TrimSpace(body.BinID)
		if body.BinID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Göz etiketi zorunlu")
		}
		if body.Capacity == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Göz kapasitesi sıfırdan büyük olmalı")
		}

		var count int64
		database.DB.Model(&models.StorageBin{}).Where("bin_id = ?", body.BinID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu göz etiketi zaten kayıtlı")
		}

		if body.WarehouseID != nil {
			var wh models.Warehouse
			if err := database.DB.First(&wh, "id = ?", *body.WarehouseID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Depo bulunamadı")
			}

			// Depo kapasitesi göz sayısı olarak yorumlanır; dolu depoya
			// hangi uçtan gelirse gelsin yeni göz eklenemez
			var binCount int64
			database.DB.Model(&models.StorageBin{}).Where("warehouse_id = ?", wh.ID).Count(&binCount)
			if wh.Capacity > 0 && binCount >= int64(wh.Capacity) {
				return fiber.NewError(fiber.StatusConflict,
					fmt.Sprintf("Depo göz kapasitesi dolu (%d/%d)", binCount, wh.Capacity))
			}
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		bin := models.StorageBin{
			BinID:       body.BinID,
			WarehouseID: body.WarehouseID,
			Row:         body.Row,
			Rack:        body.Rack,
			Shelf:       body.Shelf,
			Type:        body.Type,
			Capacity:    body.Capacity,
			CurrentLoad: 0,
			CreatedBy:   userID,
		}

		if err := database.DB.Create(&bin).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Göz oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "storage_bin",
			EntityID:    bin.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Göz oluşturuldu: %s", bin.BinID),
			Before:      nil,
			After:       bin,
		})

		return c.Status(fiber.StatusCreated).JSON(binToResponse(&bin))
	}
}

// GET /api/bins?warehouse_id=&search=
func ListBinsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StorageBin{})

		if whIDStr := c.Query("warehouse_id"); whIDStr != "" {
			var wid uint
			if _, err := fmt.Sscan(whIDStr, &wid); err == nil && wid > 0 {
				dbq = dbq.Where("warehouse_id = ?", wid)
			}
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			dbq = dbq.Where("bin_id LIKE ?", "%"+search+"%")
		}

		var bins []models.StorageBin
		if err := dbq.Order("bin_id ASC").Find(&bins).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gözler listelenemedi")
		}

		resp := make([]StorageBinResponse, 0, len(bins))
		for i := range bins {
			resp = append(resp, binToResponse(&bins[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/bins/:id
func GetBinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var bin models.StorageBin
		if err := database.DB.First(&bin, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Göz bulunamadı")
		}

		return c.JSON(binToResponse(&bin))
	}
}

// PUT /api/admin/bins/:id
func UpdateBinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var bin models.StorageBin
		if err := database.DB.First(&bin, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Göz bulunamadı")
		}

		before := bin

		var body UpdateBinRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.WarehouseID != nil {
			var wh models.Warehouse
			if err := database.DB.First(&wh, "id = ?", *body.WarehouseID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Depo bulunamadı")
			}
			bin.WarehouseID = body.WarehouseID
		}
		if body.Row != nil {
			bin.Row = *body.Row
		}
		if body.Rack != nil {
			bin.Rack = *body.Rack
		}
		if body.Shelf != nil {
			bin.Shelf = *body.Shelf
		}
		if body.Type != nil {
			bin.Type = *body.Type
		}
		if body.Capacity != nil {
			// Kapasite mevcut yükün altına düşürülemez
			if *body.Capacity < bin.CurrentLoad {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Kapasite mevcut yükün (%d) altına düşürülemez", bin.CurrentLoad))
			}
			bin.Capacity = *body.Capacity
		}

		if err := database.DB.Save(&bin).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Göz güncellenemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "storage_bin",
				EntityID:    bin.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Göz güncellendi: %s", bin.BinID),
				Before:      before,
				After:       bin,
			})
		}

		return c.JSON(binToResponse(&bin))
	}
}

// DELETE /api/admin/bins/:id
func DeleteBinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var bin models.StorageBin
		if err := database.DB.First(&bin, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Göz bulunamadı")
		}

		// Dolu göz silinemez
		if bin.CurrentLoad > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İçinde stok olan göz silinemez")
		}

		if err := database.DB.Delete(&bin).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Göz silinemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "storage_bin",
				EntityID:    bin.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Göz silindi: %s", bin.BinID),
				Before:      bin,
				After:       nil,
			})
		}

		return c.JSON(fiber.Map{"message": "Göz silindi"})
	}
}
