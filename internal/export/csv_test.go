package export_test

import (
	"testing"
	"time"

	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(amount float64, day time.Time, category, description string) domain.Expense {
	return domain.Expense{Amount: amount, Date: day, Category: category, Description: description}
}

func TestEncodeCSV_EmptyInputYieldsHeaderOnly(t *testing.T) {
	out, err := export.EncodeCSV(nil)
	require.NoError(t, err)

	assert.Equal(t, "Fecha,Categoría,Monto\n", string(out))
}

func TestEncodeCSV_Rows(t *testing.T) {
	records := []domain.Expense{
		expense(1500, time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC), "Alimentación", "super"),
		expense(99.9, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), "Transporte", ""),
	}

	out, err := export.EncodeCSV(records)
	require.NoError(t, err)

	assert.Equal(t,
		"Fecha,Categoría,Monto\n"+
			"20/01/2025,Alimentación,1500.00\n"+
			"01/12/2024,Transporte,99.90\n",
		string(out))
}

func TestEncodeCSV_Deterministic(t *testing.T) {
	records := []domain.Expense{
		expense(10, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), "Salud", ""),
		expense(20, time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC), "Otra", ""),
	}

	first, err := export.EncodeCSV(records)
	require.NoError(t, err)
	second, err := export.EncodeCSV(records)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same input must produce byte-identical output")
}

func TestEncodeCSV_QuotesFieldsWithDelimiters(t *testing.T) {
	records := []domain.Expense{
		expense(5, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), `Compras, varias`, ""),
		expense(6, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), `dijo "hola"`, ""),
	}

	out, err := export.EncodeCSV(records)
	require.NoError(t, err)

	assert.Contains(t, string(out), `"Compras, varias"`)
	assert.Contains(t, string(out), `"dijo ""hola"""`)
}

func TestEncodeCSV_ZeroDateRendersEmptyField(t *testing.T) {
	out, err := export.EncodeCSV([]domain.Expense{{Amount: 3, Category: "Otra"}})
	require.NoError(t, err)

	assert.Equal(t, "Fecha,Categoría,Monto\n,Otra,3.00\n", string(out))
}
