package stock

import "fmt"

// Domain hataları: handler katmanı errors.As ile HTTP koduna çevirir.
// Hepsi, kullanıcıya gösterilebilir mesaj üretecek kadar detay taşır
// (istenen / mevcut miktar).

// ValidationError: geçersiz girdi (bilinmeyen id, pozitif olmayan miktar).
// Hiçbir yan etki oluşmadan reddedilir.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// CapacityExceededError: istenen miktar gözün boş alanını aşıyor.
type CapacityExceededError struct {
	BinLabel  string
	Requested uint
	Available uint
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("Göz %s için yeterli alan yok (boş alan: %d, istenen: %d)",
		e.BinLabel, e.Available, e.Requested)
}

// InsufficientStockError: (ürün, göz) çiftinde istenen miktar kadar stok yok.
type InsufficientStockError struct {
	BinLabel  string
	ItemName  string
	Requested uint
	Available uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Göz %s içinde %s için yeterli stok yok (mevcut: %d, istenen: %d)",
		e.BinLabel, e.ItemName, e.Available, e.Requested)
}

// ReservationConflictError: istenen miktar, ürünün tüm lokasyonlardaki
// kullanılabilir miktarını (toplam - rezerve) aşıyor.
type ReservationConflictError struct {
	ItemName  string
	Requested uint
	Available uint
}

func (e *ReservationConflictError) Error() string {
	return fmt.Sprintf("İstenen miktar (%d), rezervasyonlar nedeniyle %s için kullanılabilir stoku (%d) aşıyor",
		e.Requested, e.ItemName, e.Available)
}
