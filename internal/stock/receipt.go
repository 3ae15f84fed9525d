package stock

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReceiptNo: tarih damgası + uuid'den 6 haneli sonek.
// Pratikte benzersizdir; ayrıca unique kontrolü yapılmaz, çakışma riski
// kabul edilmiş bir tasarım kararıdır.
func GenerateReceiptNo() string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("GRN-%s-%s", time.Now().Format("20060102"), suffix)
}
