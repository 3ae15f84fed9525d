package inventory

import (
	"fmt"
	"strings"
	"time"

	"envanter-backend/internal/audit"
	"envanter-backend/internal/auth"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"
	"envanter-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
)

type CreateItemRequest struct {
	Name          string `json:"name"`
	PartNumber    string `json:"part_number"`
	Manufacturer  string `json:"manufacturer"`
	Contact       string `json:"contact"`
	Batch         string `json:"batch"`
	ExpiryDate    string `json:"expiry_date"` // "2026-01-31", opsiyonel
	MinStockLevel uint   `json:"min_stock_level"`
	CustomFields  string `json:"custom_fields"`
}

type UpdateItemRequest struct {
	Name          *string `json:"name"`
	Manufacturer  *string `json:"manufacturer"`
	Contact       *string `json:"contact"`
	Batch         *string `json:"batch"`
	ExpiryDate    *string `json:"expiry_date"`
	MinStockLevel *uint   `json:"min_stock_level"`
	CustomFields  *string `json:"custom_fields"`
}

type ReserveItemRequest struct {
	ReservedQuantity uint `json:"reserved_quantity"`
}

type ItemResponse struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	PartNumber        string `json:"part_number"`
	Manufacturer      string `json:"manufacturer"`
	Contact           string `json:"contact"`
	Batch             string `json:"batch"`
	ExpiryDate        string `json:"expiry_date"`
	MinStockLevel     uint   `json:"min_stock_level"`
	ReservedQuantity  uint   `json:"reserved_quantity"`
	TotalQuantity     uint   `json:"total_quantity"`
	AvailableQuantity uint   `json:"available_quantity"`
	CustomFields      string `json:"custom_fields"`
	CreatedAt         string `json:"created_at"`
}

func itemToResponse(item *models.Item) ItemResponse {
	total, _ := stock.ItemTotalQuantity(database.DB, item.ID)
	available, _ := stock.ItemAvailableQuantity(database.DB, item)

	expiry := ""
	if item.ExpiryDate != nil {
		expiry = item.ExpiryDate.Format("2006-01-02")
	}

	return ItemResponse{
		ID:                item.ID,
		Name:              item.Name,
		PartNumber:        item.PartNumber,
		Manufacturer:      item.Manufacturer,
		Contact:           item.Contact,
		Batch:             item.Batch,
		ExpiryDate:        expiry,
		MinStockLevel:     item.MinStockLevel,
		ReservedQuantity:  item.ReservedQuantity,
		TotalQuantity:     total,
		AvailableQuantity: available,
		CustomFields:      item.CustomFields,
		CreatedAt:         item.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/admin/items
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.PartNumber = strings.TrimSpace(body.PartNumber)
		if body.Name == "" || body.PartNumber == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı ve parça numarası zorunlu")
		}

		var count int64
		database.DB.Model(&models.Item{}).Where("part_number = ?", body.PartNumber).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu parça numarası zaten kayıtlı")
		}

		var expiry *time.Time
		if body.ExpiryDate != "" {
			d, err := time.Parse("2006-01-02", body.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			expiry = &d
		}

		customFields := body.CustomFields
		if customFields == "" {
			customFields = "{}"
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		item := models.Item{
			Name:          body.Name,
			PartNumber:    body.PartNumber,
			Manufacturer:  body.Manufacturer,
			Contact:       body.Contact,
			Batch:         body.Batch,
			ExpiryDate:    expiry,
			MinStockLevel: body.MinStockLevel,
			CustomFields:  customFields,
			CreatedBy:     userID,
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "item",
			EntityID:    item.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Ürün oluşturuldu: %s (%s)", item.Name, item.PartNumber),
			Before:      nil,
			After:       item,
		})

		return c.Status(fiber.StatusCreated).JSON(itemToResponse(&item))
	}
}

// GET /api/items?search=
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Item{})

		search := strings.TrimSpace(c.Query("search"))
		if search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("name LIKE ? OR part_number LIKE ?", like, like)
		}

		var items []models.Item
		if err := dbq.Order("id DESC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ItemResponse, 0, len(items))
		for i := range items {
			resp = append(resp, itemToResponse(&items[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/items/:id
func GetItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		return c.JSON(itemToResponse(&item))
	}
}

// PUT /api/admin/items/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		before := item

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			item.Name = name
		}
		if body.Manufacturer != nil {
			item.Manufacturer = *body.Manufacturer
		}
		if body.Contact != nil {
			item.Contact = *body.Contact
		}
		if body.Batch != nil {
			item.Batch = *body.Batch
		}
		if body.ExpiryDate != nil {
			if *body.ExpiryDate == "" {
				item.ExpiryDate = nil
			} else {
				d, err := time.Parse("2006-01-02", *body.ExpiryDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
				}
				item.ExpiryDate = &d
			}
		}
		if body.MinStockLevel != nil {
			item.MinStockLevel = *body.MinStockLevel
		}
		if body.CustomFields != nil {
			item.CustomFields = *body.CustomFields
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item",
				EntityID:    item.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Ürün güncellendi: %s", item.Name),
				Before:      before,
				After:       item,
			})
		}

		return c.JSON(itemToResponse(&item))
	}
}

// PUT /api/items/:id/reserve
// Rezervasyon iş akışının yazma yolu: rezerve miktar toplam stoku aşamaz.
func ReserveItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body ReserveItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		total, err := stock.ItemTotalQuantity(database.DB, item.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Toplam miktar hesaplanamadı")
		}
		if body.ReservedQuantity > total {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Rezerve miktar (%d) toplam stoku (%d) aşamaz", body.ReservedQuantity, total))
		}

		before := item
		item.ReservedQuantity = body.ReservedQuantity

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon güncellenemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item",
				EntityID:    item.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Rezervasyon güncellendi: %s -> %d", item.Name, item.ReservedQuantity),
				Before:      before,
				After:       item,
			})
		}

		return c.JSON(itemToResponse(&item))
	}
}

// DELETE /api/admin/items/:id
func DeleteItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		// Stok kaydı olan ürün silinemez
		var count int64
		database.DB.Model(&models.StockRecord{}).Where("item_id = ?", item.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok kaydı olan ürün silinemez")
		}

		if err := database.DB.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "item",
				EntityID:    item.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Ürün silindi: %s (%s)", item.Name, item.PartNumber),
				Before:      item,
				After:       nil,
			})
		}

		return c.JSON(fiber.Map{"message": "Ürün silindi"})
	}
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
