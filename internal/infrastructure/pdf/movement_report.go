// Package pdf genera el reporte PDF del historial de movimientos de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título              │  Fecha de generación          │
//	│  FILTROS: tipo / categoría / fecha                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Producto | Tipo | Cant. | Usuario | Nota     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: movimientos / entradas / salidas / ajustes         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ inventory.ReportGenerator = (*MovementReportGenerator)(nil)

// MovementReportGenerator implementa inventory.ReportGenerator usando Maroto v2.
type MovementReportGenerator struct {
	author string
}

// NewMovementReportGenerator construye el generador; author aparece en los metadatos del PDF.
func NewMovementReportGenerator(author string) *MovementReportGenerator {
	return &MovementReportGenerator{author: author}
}

// GenerateMovementReport genera el PDF y devuelve sus bytes.
func (g *MovementReportGenerator) GenerateMovementReport(ctx context.Context, report inventory.MovementReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc := report.Location
	if loc == nil {
		loc = time.UTC
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Title, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report, loc))
	m.AddRows(filterRow(report.Filter))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(report.Movements) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin movimientos para los filtros indicados.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	for _, r := range tableDetailRows(report.Movements, loc) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(summarize(report.Movements)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report inventory.MovementReport, loc *time.Location) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+report.GeneratedAt.In(loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Zona: "+loc.String(), props.Text{
				Size: 7, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

func filterRow(f dto.MovementFilterRequest) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Tipo: %s   |   Categoría: %s   |   Fecha: %s",
			nonEmpty(f.Type, "todos"),
			nonEmpty(f.CategoryID, "todas"),
			nonEmpty(f.Date, "todas"),
		), props.Text{Size: 8, Top: 2, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Tipo", 2, align.Center),
		h("Cant.", 1, align.Right),
		h("Usuario", 2, align.Left),
		h("Nota", 2, align.Left),
	)
}

func tableDetailRows(movements []dto.MovementResponse, loc *time.Location) []core.Row {
	result := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(mv.CreatedAt.In(loc).Format("02/01/2006 15:04"),
				props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(3).Add(text.New(mv.ProductName,
				props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(typeLabel(mv.Type),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(formatThousands(mv.Quantity),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(nonEmpty(mv.UserName, "-"),
				props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(mv.Note,
				props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
		))
	}
	return result
}

type totals struct {
	count       int
	inbound     int64
	outbound    int64
	adjustments int
}

func summarize(movements []dto.MovementResponse) totals {
	var t totals
	for _, mv := range movements {
		t.count++
		switch mv.Type {
		case "inbound":
			t.inbound += mv.Quantity
		case "outbound":
			t.outbound += mv.Quantity
		case "adjustment":
			t.adjustments++
		}
	}
	return t
}

func summaryRow(t totals) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Movimientos:"),
			label("Unidades entrada:"),
			label("Unidades salida:"),
			label("Ajustes:"),
		),
		col.New(3).Add(
			value(strconv.Itoa(t.count)),
			value(formatThousands(t.inbound)),
			value(formatThousands(t.outbound)),
			value(strconv.Itoa(t.adjustments)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func typeLabel(t string) string {
	switch t {
	case "inbound":
		return "Entrada"
	case "outbound":
		return "Salida"
	case "adjustment":
		return "Ajuste"
	}
	return t
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatThousands inserta puntos de miles. Ej: 25000 → "25.000", -1200 → "-1.200".
func formatThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
