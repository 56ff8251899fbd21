package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
)

func TestFormatThousands(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		25000:   "25.000",
		1000000: "1.000.000",
		-1200:   "-1.200",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatThousands(in))
	}
}

func TestSummarize(t *testing.T) {
	got := summarize([]dto.MovementResponse{
		{Type: "inbound", Quantity: 10},
		{Type: "inbound", Quantity: 5},
		{Type: "outbound", Quantity: 3},
		{Type: "adjustment", Quantity: 40},
	})
	assert.Equal(t, totals{count: 4, inbound: 15, outbound: 3, adjustments: 1}, got)
}

func TestGenerateMovementReport_DevuelvePDF(t *testing.T) {
	g := NewMovementReportGenerator("estoque-api")
	out, err := g.GenerateMovementReport(context.Background(), inventory.MovementReport{
		Title:       "Historial de movimientos",
		GeneratedAt: time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC),
		Filter:      dto.MovementFilterRequest{Type: "outbound"},
		Movements: []dto.MovementResponse{
			{ProductName: "Caneta", UserName: "Ana", Type: "outbound", Quantity: 6, CreatedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "el resultado debe ser un PDF")
}
