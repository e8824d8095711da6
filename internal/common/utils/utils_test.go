package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNo(t *testing.T) {
	no := GenerateOrderNo("B")
	assert.True(t, strings.HasPrefix(no, "B"))
	assert.Len(t, no, 1+14+6)

	other := GenerateOrderNo("B")
	assert.NotEqual(t, no, other)
}

func TestGenerateCouponCode(t *testing.T) {
	code := GenerateCouponCode(8)
	assert.Len(t, code, 8)
	// 不含易混淆字符
	for _, c := range "0OI1" {
		assert.NotContains(t, code, string(c))
	}
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("0912345678"))
	assert.True(t, ValidatePhone("02812345678"))
	assert.False(t, ValidatePhone("12345"))
	assert.False(t, ValidatePhone("912345678"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("reader@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100000", FormatAmount(100000))
	assert.Equal(t, "0", FormatAmount(0.4))
}

func TestPagination_Normalize(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 0}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PageSize)

	p = Pagination{Page: 2, PageSize: 500}
	p.Normalize()
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, 100, p.GetOffset())
}

func TestPagination_GetTotalPages(t *testing.T) {
	p := Pagination{PageSize: 10, Total: 25}
	assert.Equal(t, 3, p.GetTotalPages())

	p.Total = 0
	assert.Equal(t, 0, p.GetTotalPages())
}

func TestMin(t *testing.T) {
	assert.Equal(t, float64(3), Min(3.0, 5.0))
	assert.Equal(t, int64(1), Min(int64(1), int64(2)))
}
