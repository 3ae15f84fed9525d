package inventory

import (
	"fmt"
	"strings"

	"envanter-backend/internal/audit"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateWarehouseRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Capacity    uint   `json:"capacity"`
}

type UpdateWarehouseRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	Capacity    *uint   `json:"capacity"`
	IsActive    *bool   `json:"is_active"`
}

type AddBinRequest struct {
	BinID    string `json:"bin_id"`
	Row      string `json:"row"`
	Rack     string `json:"rack"`
	Shelf    string `json:"shelf"`
	Type     string `json:"type"`
	Capacity uint   `json:"capacity"`
}

type WarehouseResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Capacity    uint   `json:"capacity"`
	BinCount    int64  `json:"bin_count"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

func warehouseToResponse(wh *models.Warehouse) WarehouseResponse {
	var binCount int64
	database.DB.Model(&models.StorageBin{}).Where("warehouse_id = ?", wh.ID).Count(&binCount)

	return WarehouseResponse{
		ID:          wh.ID,
		Name:        wh.Name,
		Code:        wh.Code,
		Description: wh.Description,
		Address:     wh.Address,
		Capacity:    wh.Capacity,
		BinCount:    binCount,
		IsActive:    wh.IsActive,
		CreatedAt:   wh.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/admin/warehouses
func CreateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Code = strings.ToUpper(strings.TrimSpace(body.Code))
		if body.Name == "" || body.Code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Depo adı ve kodu zorunlu")
		}

		var count int64
		database.DB.Model(&models.Warehouse{}).Where("code = ?", body.Code).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu depo kodu zaten kayıtlı")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		wh := models.Warehouse{
			Name:        body.Name,
			Code:        body.Code,
			Description: body.Description,
			Address:     body.Address,
			Capacity:    body.Capacity,
			IsActive:    true,
			CreatedBy:   userID,
		}

		if err := database.DB.Create(&wh).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Depo oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "warehouse",
			EntityID:    wh.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Depo oluşturuldu: %s (%s)", wh.Name, wh.Code),
			Before:      nil,
			After:       wh,
		})

		return c.Status(fiber.StatusCreated).JSON(warehouseToResponse(&wh))
	}
}

// GET /api/warehouses?search=
func ListWarehousesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Warehouse{})

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("name LIKE ? OR code LIKE ?", like, like)
		}

		var warehouses []models.Warehouse
		if err := dbq.Order("id ASC").Find(&warehouses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Depolar listelenemedi")
		}

		resp := make([]WarehouseResponse, 0, len(warehouses))
		for i := range warehouses {
			resp = append(resp, warehouseToResponse(&warehouses[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/warehouses/:id
func GetWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var wh models.Warehouse
		if err := database.DB.First(&wh, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
		}

		return c.JSON(warehouseToResponse(&wh))
	}
}

// GET /api/warehouses/:id/bins
func ListWarehouseBinsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var wh models.Warehouse
		if err := database.DB.First(&wh, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
		}

		var bins []models.StorageBin
		if err := database.DB.Where("warehouse_id = ?", wh.ID).Order("bin_id ASC").Find(&bins).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gözler listelenemedi")
		}

		resp := make([]StorageBinResponse, 0, len(bins))
		for i := range bins {
			resp = append(resp, binToResponse(&bins[i]))
		}

		return c.JSON(resp)
	}
}

// POST /api/admin/warehouses/:id/bins
// Depo kapasitesi göz sayısı olarak yorumlanır: mevcut göz sayısı
// kapasiteye ulaşmışsa yeni göz eklenemez.
func AddWarehouseBinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var wh models.Warehouse
		if err := database.DB.First(&wh, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
		}

		var body AddBinRequest
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

		var binCount int64
		database.DB.Model(&models.StorageBin{}).Where("warehouse_id = ?", wh.ID).Count(&binCount)
		if wh.Capacity > 0 && binCount >= int64(wh.Capacity) {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Depo göz kapasitesi dolu (%d/%d)", binCount, wh.Capacity))
		}

		var existing int64
		database.DB.Model(&models.StorageBin{}).Where("bin_id = ?", body.BinID).Count(&existing)
		if existing > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu göz etiketi zaten kayıtlı")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		bin := models.StorageBin{
			BinID:       body.BinID,
			WarehouseID: &wh.ID,
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
			Description: fmt.Sprintf("Depoya göz eklendi: %s -> %s", wh.Code, bin.BinID),
			Before:      nil,
			After:       bin,
		})

		return c.Status(fiber.StatusCreated).JSON(binToResponse(&bin))
	}
}

// PUT /api/admin/warehouses/:id
func UpdateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var wh models.Warehouse
		if err := database.DB.First(&wh, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
		}

		before := wh

		var body UpdateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Depo adı boş olamaz")
			}
			wh.Name = name
		}
		if body.Description != nil {
			wh.Description = *body.Description
		}
		if body.Address != nil {
			wh.Address = *body.Address
		}
		if body.Capacity != nil {
			wh.Capacity = *body.Capacity
		}
		if body.IsActive != nil {
			wh.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&wh).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Depo güncellenemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "warehouse",
				EntityID:    wh.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Depo güncellendi: %s", wh.Name),
				Before:      before,
				After:       wh,
			})
		}

		return c.JSON(warehouseToResponse(&wh))
	}
}

// DELETE /api/admin/warehouses/:id
func DeleteWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var wh models.Warehouse
		if err := database.DB.First(&wh, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
		}

		// Gözü olan depo silinemez
		var binCount int64
		database.DB.Model(&models.StorageBin{}).Where("warehouse_id = ?", wh.ID).Count(&binCount)
		if binCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Gözü olan depo silinemez")
		}

		if err := database.DB.Delete(&wh).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Depo silinemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "warehouse",
				EntityID:    wh.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Depo silindi: %s (%s)", wh.Name, wh.Code),
				Before:      wh,
				After:       nil,
			})
		}

		return c.JSON(fiber.Map{"message": "Depo silindi"})
	}
}
