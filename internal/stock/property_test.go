package stock

import (
	"errors"
	"testing"

	"envanter-backend/internal/models"

	"pgregory.net/rapid"
)

// Rastgele giriş/çıkış dizileri altında defter değişmezleri:
//   - her gözün current_load değeri StockRecord toplamına eşit
//   - hiçbir göz kapasitesini aşmaz
//   - ürün toplamı, başarılı işlemlerin cebirsel toplamına eşit
//   - her başarısız işlem bilinen bir domain hatasıyla reddedilir
func TestStockLedgerInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		db := openTestDB(t)
		sqlDB, err := db.DB()
		if err != nil {
			rt.Fatalf("sql.DB alınamadı: %v", err)
		}
		defer sqlDB.Close()

		items := []*models.Item{
			seedItem(t, db, "prop-item-a", 0),
			seedItem(t, db, "prop-item-b", 0),
		}
		bins := []*models.StorageBin{
			seedBin(t, db, "P-01", rapid.UintRange(20, 100).Draw(rt, "capA"), nil),
			seedBin(t, db, "P-02", rapid.UintRange(20, 100).Draw(rt, "capB"), nil),
		}

		// Model: (item, bin) -> beklenen miktar
		expected := map[[2]uint]uint{}

		opCount := rapid.IntRange(1, 40).Draw(rt, "opCount")
		for i := 0; i < opCount; i++ {
			item := items[rapid.IntRange(0, len(items)-1).Draw(rt, "item")]
			bin := bins[rapid.IntRange(0, len(bins)-1).Draw(rt, "bin")]
			qty := rapid.UintRange(1, 40).Draw(rt, "qty")
			key := [2]uint{item.ID, bin.ID}

			if rapid.Bool().Draw(rt, "out") {
				_, err := StockOut(db, stockOut(item.ID, bin.ID, qty))
				if err == nil {
					expected[key] -= qty
				} else if !isDomainError(err) {
					rt.Fatalf("beklenmeyen çıkış hatası: %v", err)
				}
			} else {
				_, err := StockIn(db, stockIn(item.ID, bin.ID, qty))
				if err == nil {
					expected[key] += qty
				} else if !isDomainError(err) {
					rt.Fatalf("beklenmeyen giriş hatası: %v", err)
				}
			}
		}

		for _, bin := range bins {
			var sum int64
			if err := db.Model(&models.StockRecord{}).
				Where("storage_bin_id = ?", bin.ID).
				Select("COALESCE(SUM(quantity), 0)").
				Scan(&sum).Error; err != nil {
				rt.Fatalf("toplam hesaplanamadı: %v", err)
			}

			load := binLoad(t, db, bin.ID)
			if load != uint(sum) {
				rt.Fatalf("göz %s: current_load (%d) != kayıt toplamı (%d)", bin.BinID, load, sum)
			}
			if load > bin.Capacity {
				rt.Fatalf("göz %s: current_load (%d) kapasiteyi (%d) aşıyor", bin.BinID, load, bin.Capacity)
			}
		}

		for _, item := range items {
			var want uint
			for _, bin := range bins {
				want += expected[[2]uint{item.ID, bin.ID}]
			}
			got, err := ItemTotalQuantity(db, item.ID)
			if err != nil {
				rt.Fatalf("toplam miktar okunamadı: %v", err)
			}
			if got != want {
				rt.Fatalf("ürün %s: toplam %d, beklenen %d", item.Name, got, want)
			}
		}
	})
}

func isDomainError(err error) bool {
	var capErr *CapacityExceededError
	var insErr *InsufficientStockError
	var resErr *ReservationConflictError
	var vErr *ValidationError
	return errors.As(err, &capErr) || errors.As(err, &insErr) ||
		errors.As(err, &resErr) || errors.As(err, &vErr)
}
