package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"
)

const (
	marginLeft   = 15.0
	marginTop    = 15.0
	marginRight  = 15.0
	contentWidth = 210.0 - marginLeft - marginRight
)

type pdfReport struct {
	pdf *fpdf.Fpdf
	doc Document
}

func writePDF(w io.Writer, doc Document) error {
	r := &pdfReport{
		pdf: fpdf.New("P", "mm", "A4", ""),
		doc: doc,
	}
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, 15)
	r.pdf.SetCreationDate(doc.Generated)
	r.pdf.SetModificationDate(doc.Generated)
	r.pdf.SetTitle(doc.Title, false)
	r.pdf.AliasNbPages("")
	r.pdf.SetFooterFunc(func() {
		r.pdf.SetY(-12)
		r.pdf.SetFont("Arial", "I", 8)
		r.pdf.SetTextColor(120, 120, 120)
		r.pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", r.pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	r.pdf.AddPage()
	r.renderHeader()
	r.renderInputs()
	r.renderResult()
	if doc.Search != nil {
		r.renderRanking()
	}
	if len(doc.Schedule) > 0 {
		r.renderSchedule()
	}

	return r.pdf.Output(w)
}

func (r *pdfReport) renderHeader() {
	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, r.doc.Title, "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 6, "Generated: "+r.doc.Generated.Format("2 January 2006 15:04"), "", 1, "L", false, 0, "")
	r.pdf.Ln(6)
}

func (r *pdfReport) sectionTitle(title string) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.CellFormat(contentWidth, 8, title, "1", 1, "L", true, 0, "")
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
}

func (r *pdfReport) kv(label, value string) {
	r.pdf.CellFormat(60, 6, label, "", 0, "L", false, 0, "")
	r.pdf.CellFormat(contentWidth-60, 6, value, "", 1, "L", false, 0, "")
}

func (r *pdfReport) renderInputs() {
	r.sectionTitle("Inputs")
	r.kv("Loan A", loanText(r.doc.LoanA))
	if r.doc.LoanB != nil {
		r.kv("Loan B", loanText(*r.doc.LoanB))
	}
	label := "Monthly budget"
	if r.doc.Kind == "single" {
		label = "Monthly payment"
	}
	r.kv(label, cli.FormatMoney(r.doc.Budget))
	if p := r.doc.Plan; p != nil && r.doc.Kind != "single" {
		r.kv("Plan", fmt.Sprintf("A %s / B %s", cli.FormatMoney(p.PaymentA), cli.FormatMoney(p.PaymentB)))
	}
	r.pdf.Ln(4)
}

func (r *pdfReport) renderResult() {
	r.sectionTitle("Result")
	if s := r.doc.Search; s != nil && !s.Feasible {
		r.pdf.SetTextColor(180, 40, 40)
		r.pdf.MultiCell(contentWidth, 6,
			"No candidate split covers the first month's interest on both loans. Raise the budget or widen the sweep.",
			"", "L", false)
		r.pdf.Ln(4)
		return
	}
	res := r.doc.Result
	r.kv("Months to repay", fmt.Sprintf("%d (%s years)", res.Months, cli.FormatYears(res.Months)))
	r.kv("Total interest", cli.FormatMoney(res.TotalInterest))
	r.pdf.Ln(4)
}

func (r *pdfReport) renderRanking() {
	s := r.doc.Search
	r.sectionTitle(fmt.Sprintf("Candidates: %d accepted, %d rejected, %d stalled", s.Accepted, s.Rejected, s.Stalled))
	if len(s.Top) == 0 {
		r.pdf.Ln(4)
		return
	}

	widths := []float64{20, 40, 40, 30, 50}
	r.tableHeader(widths, "Rank", "Payment A", "Payment B", "Months", "Interest")
	for i, c := range s.Top {
		r.tableRow(widths,
			strconv.Itoa(i+1),
			cli.FormatMoney(c.Plan.PaymentA),
			cli.FormatMoney(c.Plan.PaymentB),
			strconv.Itoa(c.Result.Months),
			cli.FormatMoney(c.Result.TotalInterest),
		)
	}
	r.pdf.Ln(4)
}

func (r *pdfReport) renderSchedule() {
	r.sectionTitle("Repayment schedule")

	joint := r.doc.LoanB != nil
	var widths []float64
	var headers []string
	if joint {
		widths = []float64{16, 28, 28, 28, 28, 28, 24}
		headers = []string{"Month", "Paid A", "Balance A", "Paid B", "Balance B", "Interest", "Total"}
	} else {
		widths = []float64{20, 40, 40, 40, 40}
		headers = []string{"Month", "Opening", "Interest", "Payment", "Closing"}
	}
	r.tableHeader(widths, headers...)

	for _, p := range r.doc.Schedule {
		if r.pdf.GetY() > 297-25 {
			r.pdf.AddPage()
			r.tableHeader(widths, headers...)
		}
		if joint {
			r.tableRow(widths,
				strconv.Itoa(p.Month),
				cli.FormatMoney(p.A.Payment),
				cli.FormatMoney(p.A.Closing),
				cli.FormatMoney(p.B.Payment),
				cli.FormatMoney(p.B.Closing),
				cli.FormatMoney(p.Interest()),
				cli.FormatMoney(p.Balance()),
			)
			continue
		}
		r.tableRow(widths,
			strconv.Itoa(p.Month),
			cli.FormatMoney(p.A.Opening),
			cli.FormatMoney(p.A.Interest),
			cli.FormatMoney(p.A.Payment),
			cli.FormatMoney(p.A.Closing),
		)
	}
}

func (r *pdfReport) tableHeader(widths []float64, cols ...string) {
	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	for i, c := range cols {
		r.pdf.CellFormat(widths[i], 6, c, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)
	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
}

func (r *pdfReport) tableRow(widths []float64, cols ...string) {
	for i, c := range cols {
		align := "R"
		if i == 0 {
			align = "C"
		}
		r.pdf.CellFormat(widths[i], 5, c, "1", 0, align, false, 0, "")
	}
	r.pdf.Ln(-1)
}

func loanText(l model.Loan) string {
	return fmt.Sprintf("%s at %s APR", cli.FormatMoney(l.Principal), cli.FormatRate(l.MonthlyRate))
}
