// Package pdf genera el reporte de movimientos de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de generación                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Fecha | Producto | Tipo | Cant. | Usuario | Est. │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: unidades cargadas / retiradas / neto              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
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

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/application/inventory"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorZebra   = &props.Color{Red: 240, Green: 244, Blue: 248}
)

var _ inventory.ReportRenderer = (*MovementReport)(nil)

// MovementReport implementa inventory.ReportRenderer usando Maroto v2.
type MovementReport struct {
	title string
}

// NewMovementReport construye el generador; title aparece en la cabecera.
func NewMovementReport(title string) *MovementReport {
	if title == "" {
		title = "Warehouse movements"
	}
	return &MovementReport{title: title}
}

// RenderTransactions genera el PDF y devuelve sus bytes.
func (g *MovementReport) RenderTransactions(rows []dto.TransactionResponse, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.title, generatedAt, len(rows)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(rows)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, at time.Time, count int) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%d movements", count), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generated: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Left),
		h("Date", 3, align.Left),
		h("Product", 3, align.Left),
		h("Type", 1, align.Center),
		h("Qty", 1, align.Right),
		h("User", 2, align.Center),
		h("Shelf", 1, align.Center),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableRows(rows []dto.TransactionResponse) []core.Row {
	out := make([]core.Row, 0, len(rows))
	for i, t := range rows {
		c := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1.5, Left: 1, Right: 1}))
		}
		product := t.ProductName
		if product == "" {
			product = "#" + strconv.FormatInt(t.ProductID, 10)
		}
		shelf := "-"
		if t.ShelfID != nil {
			shelf = strconv.FormatInt(*t.ShelfID, 10)
		}
		r := row.New(7).Add(
			c(strconv.FormatInt(t.ID, 10), 1, align.Left),
			c(t.Timestamp.Format("02/01/2006 15:04:05"), 3, align.Left),
			c(product, 3, align.Left),
			c(t.Type, 1, align.Center),
			c(strconv.FormatInt(t.Quantity, 10), 1, align.Right),
			c(strconv.FormatInt(t.UserID, 10), 2, align.Center),
			c(shelf, 1, align.Center),
		)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorZebra})
		}
		out = append(out, r)
	}
	return out
}

// totalsRow: unidades cargadas, retiradas y neto del periodo listado.
func totalsRow(rows []dto.TransactionResponse) core.Row {
	loaded, withdrawn := summarize(rows)
	label := func(s string) core.Component {
		return text.New(s, props.Text{Size: 8, Align: align.Right, Color: colorGray, Top: 2})
	}
	value := func(n int64) core.Component {
		return text.New(strconv.FormatInt(n, 10), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2})
	}
	return row.New(10).Add(
		col.New(6),
		col.New(2).Add(label("Loaded"), value(loaded)),
		col.New(2).Add(label("Withdrawn"), value(withdrawn)),
		col.New(2).Add(label("Net"), value(loaded-withdrawn)),
	)
}

func summarize(rows []dto.TransactionResponse) (loaded, withdrawn int64) {
	for _, t := range rows {
		switch t.Type {
		case entity.TransactionTypeLoad:
			loaded += t.Quantity
		case entity.TransactionTypeGet:
			withdrawn += t.Quantity
		}
	}
	return loaded, withdrawn
}
