package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"invoice-agent/internal/core"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const defaultPaymentTerms = "Net 30"

// column widths of the item table, in mm (A4 minus 15mm margins = 180mm)
var itemCols = []struct {
	title string
	width float64
	align string
}{
	{"Sl No.", 12, "C"},
	{"Description of Goods", 62, "L"},
	{"HSN/SAC", 20, "C"},
	{"Quantity", 18, "R"},
	{"per", 14, "C"},
	{"Rate", 24, "R"},
	{"Amount", 30, "R"},
}

// PDFRenderer draws an A4 GST tax invoice with gofpdf.
type PDFRenderer struct {
	// Now stamps the document creation date; nil means time.Now.
	Now func() time.Time
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Now: time.Now}
}

// Render implements core.Renderer.
func (r *PDFRenderer) Render(ctx context.Context, in core.RenderInput) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Invoice "+in.Numbering.Number), false)
	pdf.SetAuthor(tr(in.Draft.Seller.CompanyName), false)
	pdf.SetCreationDate(now())
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	w := &writer{pdf: pdf, tr: tr}
	w.header(in)
	w.parties(in)
	w.items(in.Draft.LineItems)
	w.totals(in.Totals)
	w.footer(in)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", in.Numbering.Number, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", in.Numbering.Number, err)
	}
	return buf.Bytes(), nil
}

type writer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (w *writer) cell(width, height float64, txt, border string, ln int, align string) {
	w.pdf.CellFormat(width, height, w.tr(txt), border, ln, align, false, 0, "")
}

func (w *writer) header(in core.RenderInput) {
	title := "TAX INVOICE"
	if in.IsDraft {
		title = "DRAFT - NOT A TAX INVOICE"
	}
	w.pdf.SetFont("Arial", "B", 16)
	w.cell(0, 10, title, "", 1, "C")
	w.pdf.Ln(2)
}

func (w *writer) parties(in core.RenderInput) {
	d := in.Draft
	pdf := w.pdf
	x, y := pdf.GetXY()

	// Left column: seller then buyer.
	pdf.SetFont("Arial", "B", 11)
	pdf.MultiCell(100, 6, w.tr(d.Seller.CompanyName), "LTR", "L", false)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(100, 5, w.tr(partyLines(d.Seller.GSTNumber, "", d.Seller.State, d.Seller.StateCode)), "LBR", "L", false)

	pdf.SetFont("Arial", "B", 9)
	pdf.MultiCell(100, 5, w.tr("Buyer (Bill to)"), "LR", "L", false)
	pdf.SetFont("Arial", "B", 10)
	pdf.MultiCell(100, 6, w.tr(d.Client.Name), "LR", "L", false)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(100, 5, w.tr(partyLines(d.Client.GSTNumber, d.Client.Address, d.Client.State, d.Client.StateCode)), "LBR", "L", false)
	leftBottom := pdf.GetY()

	// Right column: document facts.
	terms := d.Payment.Terms
	if strings.TrimSpace(terms) == "" {
		terms = defaultPaymentTerms
	}
	facts := [][2]string{
		{"Invoice No.", in.Numbering.Number},
		{"Dated", formatDate(d.Dates.InvoiceDate)},
		{"Due Date", formatDate(d.Dates.DueDate)},
		{"Mode/Terms of Payment", terms},
	}
	pdf.SetXY(x+100, y)
	for _, f := range facts {
		pdf.SetX(x + 100)
		pdf.SetFont("Arial", "B", 9)
		w.cell(80, 5, f[0], "LTR", 2, "L")
		pdf.SetFont("Arial", "", 9)
		w.cell(80, 6, f[1], "LBR", 1, "L")
	}
	if pdf.GetY() < leftBottom {
		pdf.SetY(leftBottom)
	}
	pdf.Ln(4)
}

func (w *writer) items(items []core.LineItem) {
	pdf := w.pdf
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	for _, c := range itemCols {
		pdf.CellFormat(c.width, 8, w.tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, item := range items {
		unit := item.Unit
		if strings.TrimSpace(unit) == "" {
			unit = core.DefaultUnit
		}
		values := []string{
			fmt.Sprintf("%d", i+1),
			item.Description,
			item.HSNCode,
			item.Quantity.String(),
			unit,
			money(item.Rate),
			money(item.Amount()),
		}
		for j, c := range itemCols {
			w.cell(c.width, 7, values[j], "1", 0, c.align)
		}
		pdf.Ln(-1)
	}
}

func (w *writer) totals(t core.Totals) {
	pdf := w.pdf
	label := itemCols[0].width + itemCols[1].width + itemCols[2].width +
		itemCols[3].width + itemCols[4].width + itemCols[5].width
	amount := itemCols[6].width

	row := func(name string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 9)
		w.cell(label, 7, name, "1", 0, "R")
		w.cell(amount, 7, money(v), "1", 1, "R")
	}

	pct := t.TaxRate.Mul(decimal.NewFromInt(100))
	row("Subtotal", t.Subtotal, false)
	if t.InterState {
		row(fmt.Sprintf("IGST @ %s%%", pct.String()), t.IGST, false)
	} else {
		half := pct.Div(decimal.NewFromInt(2))
		row(fmt.Sprintf("CGST @ %s%%", half.String()), t.CGST, false)
		row(fmt.Sprintf("SGST @ %s%%", half.String()), t.SGST, false)
	}
	row("Total", t.TotalAmount, true)

	pdf.Ln(3)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, w.tr("Amount Chargeable (in words): INR "+core.AmountInWords(t.TotalAmount)+" Only"), "", "L", false)
	pdf.MultiCell(0, 5, w.tr("Tax Amount (in words): INR "+core.AmountInWords(t.TaxAmount)+" Only"), "", "L", false)
}

func (w *writer) footer(in core.RenderInput) {
	p := in.Draft.Payment
	pdf := w.pdf
	if p.BankAccountName != "" || p.BankAccountNumber != "" || p.BankIFSCCode != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 9)
		w.cell(0, 5, "Company's Bank Details", "", 1, "L")
		pdf.SetFont("Arial", "", 9)
		for _, kv := range [][2]string{
			{"A/c Holder's Name", p.BankAccountName},
			{"A/c No.", p.BankAccountNumber},
			{"IFS Code", p.BankIFSCCode},
		} {
			if kv[1] == "" {
				continue
			}
			w.cell(40, 5, kv[0], "", 0, "L")
			w.cell(0, 5, ": "+kv[1], "", 1, "L")
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 9)
	w.cell(0, 5, "for "+in.Draft.Seller.CompanyName, "", 1, "R")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	w.cell(0, 5, "Authorised Signatory", "", 1, "R")
	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	w.cell(0, 5, "This is a Computer Generated Invoice", "", 1, "C")
}

func partyLines(gst, address, state, code string) string {
	var lines []string
	if gst != "" {
		lines = append(lines, "GSTIN/UIN: "+gst)
	}
	if address != "" {
		lines = append(lines, address)
	}
	if state != "" {
		s := "State Name: " + state
		if code != "" {
			s += ", Code: " + code
		}
		lines = append(lines, s)
	}
	if len(lines) == 0 {
		return " "
	}
	return strings.Join(lines, "\n")
}

// formatDate prints YYYY-MM-DD as 02-Jan-06 and anything else verbatim.
func formatDate(s string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("02-Jan-06")
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
