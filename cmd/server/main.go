package main

import (
	"log"
	"strings"

	"envanter-backend/internal/admin"
	"envanter-backend/internal/alerts"
	"envanter-backend/internal/audit"
	"envanter-backend/internal/auth"
	"envanter-backend/internal/config"
	"envanter-backend/internal/database"
	"envanter-backend/internal/inventory"
	"envanter-backend/internal/models"
	"envanter-backend/internal/receipts"
	"envanter-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Kullanıcı yönetimi
	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())

	// Ürün kataloğu (yazma)
	adminRoutes.Post("/items", inventory.CreateItemHandler())
	adminRoutes.Put("/items/:id", inventory.UpdateItemHandler())
	adminRoutes.Delete("/items/:id", inventory.DeleteItemHandler())

	// Depo yönetimi (yazma)
	adminRoutes.Post("/warehouses", inventory.CreateWarehouseHandler())
	adminRoutes.Put("/warehouses/:id", inventory.UpdateWarehouseHandler())
	adminRoutes.Delete("/warehouses/:id", inventory.DeleteWarehouseHandler())
	adminRoutes.Post("/warehouses/:id/bins", inventory.AddWarehouseBinHandler())

	// Göz yönetimi (yazma)
	adminRoutes.Post("/bins", inventory.CreateBinHandler())
	adminRoutes.Put("/bins/:id", inventory.UpdateBinHandler())
	adminRoutes.Delete("/bins/:id", inventory.DeleteBinHandler())

	// Ortak (auth gerektiren) route'lar

	// Katalog okuma
	protected.Get("/items", inventory.ListItemsHandler())
	protected.Get("/items/:id", inventory.GetItemHandler())
	protected.Put("/items/:id/reserve", inventory.ReserveItemHandler())
	protected.Get("/warehouses", inventory.ListWarehousesHandler())
	protected.Get("/warehouses/:id", inventory.GetWarehouseHandler())
	protected.Get("/warehouses/:id/bins", inventory.ListWarehouseBinsHandler())
	protected.Get("/bins", inventory.ListBinsHandler())
	protected.Get("/bins/:id", inventory.GetBinHandler())

	// Stok giriş/çıkış
	protected.Post("/stock-in", stock.StockInHandler())
	protected.Post("/stock-out", stock.StockOutHandler(cfg))
	protected.Get("/stock-records", stock.ListStockRecordsHandler())
	protected.Get("/stock-movements", stock.ListStockMovementsHandler())

	// Uyarılar
	protected.Get("/alerts", alerts.ListAlertsHandler())
	protected.Post("/alerts/:id/resolve", alerts.ResolveAlertHandler())

	// Makbuzlar (salt okunur)
	protected.Get("/receipts", receipts.ListReceiptsHandler())
	protected.Get("/receipts/:id", receipts.GetReceiptHandler())

	// Metrikler
	protected.Get("/inventory/metrics", inventory.InventoryMetricsHandler())
	protected.Get("/inventory/analytics", inventory.AnalyticsHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
