// Package render lays out aggregated time entries as a paginated PDF report.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"timesheet/internal/aggregate"
	"timesheet/internal/domain"
)

// Title is the report heading.
const Title = "Time Tracking Report"

// EmptyMessage is written in place of entry rows when a report has none.
const EmptyMessage = "No entries found for the selected period"

// Page geometry in millimetres (A4 portrait).
const (
	marginLeft   = 14.0
	marginRight  = 14.0
	marginTop    = 20.0
	marginBottom = 20.0

	lineHeight  = 4.0
	cellPadding = 1.5
	headerRow   = lineHeight + 2*cellPadding
)

var (
	columns = []string{"Title", "Description", "Job Type", "Date", "Start Time", "End Time", "Status"}
	widths  = []float64{28, 40, 22, 26, 20, 22, 24}

	summaryColumns = []string{"Total Entries", "Total Days", "Total Time"}
)

// Renderer writes reports as PDF documents.
type Renderer struct {
	loc      *time.Location
	compress bool
	now      func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLocation sets the zone dates and times are printed in.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithCompression toggles page stream compression. On by default.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// WithClock overrides the clock used for the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{loc: time.UTC, compress: true, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render writes the report for groups to w. An empty group list yields a
// valid document stating that no entries were found.
func (r *Renderer) Render(w io.Writer, groups []domain.ReportGroup, user domain.User, rng domain.DateRange) error {
	pdf := r.build(groups, user, rng).pdf
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (r *Renderer) build(groups []domain.ReportGroup, user domain.User, rng domain.DateRange) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(r.now())
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(Title, true)
	pdf.SetAuthor(user.DisplayName(), true)

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), loc: r.loc}
	pdf.SetFooterFunc(d.footer)
	pdf.AddPage()

	d.titleBlock(user, rng, r.now())
	if len(groups) == 0 {
		d.emptyTable()
	}
	for _, g := range groups {
		d.group(g)
	}
	d.summary(aggregate.Summarize(groups))
	return d
}

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	loc *time.Location
	// bottom is the lowest y any table row reached.
	bottom float64
}

func (d *document) text(s string) string {
	return d.tr(latin1(s))
}

// limit is the lowest y content may reach on a page.
func (d *document) limit() float64 {
	_, pageH := d.pdf.GetPageSize()
	return pageH - marginBottom
}

// ensure starts a new page when fewer than h millimetres remain.
func (d *document) ensure(h float64) bool {
	if d.pdf.GetY()+h <= d.limit() {
		return false
	}
	d.pdf.AddPage()
	return true
}

func (d *document) footer() {
	d.pdf.SetY(-12)
	d.pdf.SetFont("Helvetica", "I", 8)
	d.pdf.SetTextColor(128, 128, 128)
	d.pdf.CellFormat(0, 6, "Page "+strconv.Itoa(d.pdf.PageNo()), "", 0, "C", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
}

func (d *document) titleBlock(user domain.User, rng domain.DateRange, generated time.Time) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "From: "+rng.Start.In(d.loc).Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "To: "+rng.End.In(d.loc).Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, d.text("User: "+user.DisplayName()), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "Generated on: "+generated.In(d.loc).Format("January 2, 2006, 3:04 PM"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)
}

func (d *document) header(labels []string, ws []float64) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	for i, l := range labels {
		pdf.CellFormat(ws[i], headerRow, l, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
}

func (d *document) emptyTable() {
	d.header(columns, widths)
	d.pdf.CellFormat(sum(widths), headerRow, EmptyMessage, "1", 1, "C", false, 0, "")
	d.pdf.Ln(8)
}

func (d *document) group(g domain.ReportGroup) {
	pdf := d.pdf

	// Heading, table header and the first line of a row stay together.
	d.ensure(10 + headerRow + lineHeight + 2*cellPadding)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, g.Date.In(d.loc).Format("Monday, January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	d.header(columns, widths)

	for _, e := range g.Entries {
		d.row(d.cells(e), widths, columns)
	}

	d.ensure(headerRow * 2)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(sum(widths), headerRow, "Total: "+aggregate.FormatMinutes(g.TotalMinutes), "1", 1, "R", true, 0, "")
	if len(g.Jobs) > 1 {
		parts := make([]string, 0, len(g.Jobs))
		for _, j := range g.Jobs {
			parts = append(parts, j.JobType+" "+aggregate.FormatMinutes(j.Minutes))
		}
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(sum(widths), headerRow, d.text("By job type: "+strings.Join(parts, "; ")), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)
}

func (d *document) summary(s domain.Summary) {
	pdf := d.pdf
	w := sum(widths) / float64(len(summaryColumns))
	ws := []float64{w, w, w}

	d.ensure(10 + 2*headerRow)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	d.header(summaryColumns, ws)
	d.row([]string{
		strconv.Itoa(s.TotalEntries),
		strconv.Itoa(s.TotalDays),
		aggregate.FormatMinutes(s.TotalMinutes),
	}, ws, summaryColumns)
}

func (d *document) cells(e domain.TimeEntry) []string {
	desc := "No description"
	if e.Description != nil && strings.TrimSpace(*e.Description) != "" {
		desc = *e.Description
	}
	end := "In Progress"
	if e.EndTime != nil {
		end = e.EndTime.In(d.loc).Format("3:04 PM")
	}
	return []string{
		e.Title,
		desc,
		e.JobType,
		e.Date.In(d.loc).Format("Jan 2, 2006"),
		e.StartTime.In(d.loc).Format("3:04 PM"),
		end,
		string(e.Status),
	}
}

func (d *document) lines(s string, w float64) []string {
	lines := d.pdf.SplitText(latin1(s), w-2*cellPadding)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// row draws one table row. A row that does not fit moves to the next page;
// a row taller than a whole page is split line by line, repeating the header
// on every page it continues onto.
func (d *document) row(cells []string, ws []float64, labels []string) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "", 8)

	split := make([][]string, len(cells))
	n := 1
	for i, c := range cells {
		split[i] = d.lines(c, ws[i])
		if len(split[i]) > n {
			n = len(split[i])
		}
	}

	h := float64(n)*lineHeight + 2*cellPadding
	if h <= d.limit()-marginTop-headerRow {
		if d.ensure(h) {
			d.header(labels, ws)
		}
	} else if d.ensure(lineHeight + 2*cellPadding) {
		d.header(labels, ws)
	}

	for off := 0; off < n; {
		fit := int((d.limit() - pdf.GetY() - 2*cellPadding + 1e-9) / lineHeight)
		if fit < 1 {
			pdf.AddPage()
			d.header(labels, ws)
			continue
		}
		take := min(fit, n-off)
		d.slice(split, ws, off, take)
		off += take
		if off < n {
			pdf.AddPage()
			d.header(labels, ws)
		}
	}
}

// slice draws lines [off, off+take) of every cell as one bordered band.
func (d *document) slice(split [][]string, ws []float64, off, take int) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "", 8)
	h := float64(take)*lineHeight + 2*cellPadding
	x0, y := pdf.GetX(), pdf.GetY()
	x := x0
	for i, lines := range split {
		pdf.Rect(x, y, ws[i], h, "D")
		for j := off; j < off+take && j < len(lines); j++ {
			pdf.SetXY(x+cellPadding, y+cellPadding+float64(j-off)*lineHeight)
			pdf.CellFormat(ws[i]-2*cellPadding, lineHeight, d.tr(lines[j]), "", 0, "L", false, 0, "")
		}
		x += ws[i]
	}
	pdf.SetXY(x0, y+h)
	if y+h > d.bottom {
		d.bottom = y + h
	}
}

func sum(ws []float64) float64 {
	var t float64
	for _, w := range ws {
		t += w
	}
	return t
}

// latin1 replaces runes the core PDF fonts cannot encode.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xff {
			return '?'
		}
		return r
	}, s)
}
