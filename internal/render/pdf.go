package render

import (
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/martinsuchenak/merakilife/internal/model"
)

const (
	pdfTitle   = "Cisco Meraki Lifecycle Report"
	pdfIntro   = "This report lists all of your equipment currently in use that has an end of life announcement. They are ordered by the total units column, and the Upgrade Path column links you to the EoS announcement with recommendations on upgrade paths."
	pdfNoRows  = "No EoL devices found for this organization."
	pdfMargin  = 15.0
	logoWidth  = 120.0
	rowHeight  = 6.0
	headHeight = 8.0
)

type rgb struct{ r, g, b int }

var (
	headerFill = rgb{4, 170, 109} // #04AA6D
	white      = rgb{255, 255, 255}
	black      = rgb{0, 0, 0}
	linkBlue   = rgb{0, 0, 255}
	zebraFill  = rgb{222, 220, 220} // #dedcdc

	highlightFill = map[model.Highlight]rgb{
		model.HighlightRed:    {255, 204, 204},
		model.HighlightYellow: {255, 255, 204},
	}
)

// relative widths, in Columns order
var columnWeights = []float64{16, 20, 18, 24, 18, 8}

// PDFRenderer lays out an A4 document with one table per organization
type PDFRenderer struct {
	LogoPath string
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(opts Options) *PDFRenderer {
	return &PDFRenderer{LogoPath: opts.LogoPath}
}

// Extension returns "pdf"
func (r *PDFRenderer) Extension() string { return "pdf" }

// Render lays out the title and one table section per organization
func (r *PDFRenderer) Render(w io.Writer, summary *model.RunSummary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(pdfTitle, true)
	pdf.SetCreator("merakilife", true)
	pdf.SetCreationDate(summary.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r.drawLogo(pdf)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, pdfTitle, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, pdfIntro, "", "L", false)
	pdf.Ln(4)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	widths := columnWidths(pageWidth - left - right)

	for i, rep := range summary.Reports {
		if i > 0 {
			pdf.Ln(4)
		}

		pdf.SetFont("Helvetica", "B", 12)
		setText(pdf, black)
		pdf.CellFormat(0, headHeight, tr(rep.Organization.Label()), "", 1, "L", false, 0, "")

		switch {
		case rep.Status == model.StatusFailed:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr("Report unavailable: "+rep.Error), "", "L", false)
			continue
		case len(rep.Entries) == 0:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, pdfNoRows, "", "L", false)
			continue
		}

		drawTable(pdf, tr, widths, Rows(rep))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// drawLogo places the logo once at the top. A missing or unreadable logo is
// logged and skipped.
func (r *PDFRenderer) drawLogo(pdf *fpdf.Fpdf) {
	if r.LogoPath == "" {
		return
	}
	if _, err := os.Stat(r.LogoPath); err != nil {
		log.Warn("Logo image not found, continuing without it", "path", r.LogoPath)
		return
	}

	opts := fpdf.ImageOptions{ReadDpi: true}
	pdf.RegisterImageOptions(r.LogoPath, opts)
	if err := pdf.Error(); err != nil {
		log.Warn("Failed to load logo image", "path", r.LogoPath, "error", err)
		pdf.ClearError()
		return
	}

	pdf.ImageOptions(r.LogoPath, pdf.GetX(), pdf.GetY(), logoWidth, 0, true, opts, 0, "")
	pdf.Ln(8)
}

func drawTable(pdf *fpdf.Fpdf, tr func(string) string, widths []float64, rows []Row) {
	pdf.SetFont("Helvetica", "B", 9)
	setFill(pdf, headerFill)
	setText(pdf, white)
	for i, col := range Columns {
		pdf.CellFormat(widths[i], headHeight, col, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(headHeight)

	pdf.SetFont("Helvetica", "", 8)
	setText(pdf, black)

	for n, row := range rows {
		fill, ok := highlightFill[row.Highlight]
		if !ok {
			fill = white
			if n%2 == 1 {
				fill = zebraFill
			}
		}
		setFill(pdf, fill)

		cells := row.Cells()
		for i := range Columns {
			if i == 4 {
				drawLinkCell(pdf, tr, widths[i], row)
				continue
			}
			pdf.CellFormat(widths[i], rowHeight, fit(pdf, tr, cells[i], widths[i]), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(rowHeight)
	}
}

// drawLinkCell renders the upgrade path as a "[Model]" link to its first URL
func drawLinkCell(pdf *fpdf.Fpdf, tr func(string) string, w float64, row Row) {
	if len(row.UpgradePath) == 0 {
		pdf.CellFormat(w, rowHeight, "", "1", 0, "L", true, 0, "")
		return
	}

	setText(pdf, linkBlue)
	pdf.SetFont("Helvetica", "U", 8)
	pdf.CellFormat(w, rowHeight, fit(pdf, tr, "["+row.Product+"]", w), "1", 0, "L", true, 0, row.UpgradePath[0])
	setText(pdf, black)
	pdf.SetFont("Helvetica", "", 8)
}

func columnWidths(total float64) []float64 {
	var sum float64
	for _, w := range columnWeights {
		sum += w
	}
	widths := make([]float64, len(columnWeights))
	for i, w := range columnWeights {
		widths[i] = total * w / sum
	}
	return widths
}

// fit translates s and trims it so it stays inside a cell of width w
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, w float64) string {
	limit := w - 2*pdf.GetCellMargin()
	if out := tr(s); pdf.GetStringWidth(out) <= limit {
		return out
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)+"...")) > limit {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes) + "...")
}

func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
