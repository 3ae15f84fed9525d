package stock

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReceiptNo(t *testing.T) {
	no := GenerateReceiptNo()

	parts := strings.Split(no, "-")
	require.Len(t, parts, 3)

	assert.Equal(t, "GRN", parts[0])
	assert.Equal(t, time.Now().Format("20060102"), parts[1])
	assert.Len(t, parts[2], 6)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}

func TestGenerateReceiptNo_Varies(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		no := GenerateReceiptNo()
		assert.False(t, seen[no], "makbuz numarası tekrarlandı: %s", no)
		seen[no] = true
	}
}
