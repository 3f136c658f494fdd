package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/aggregate"
	"timesheet/internal/domain"
)

var fixedNow = func() time.Time { return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC) }

func testUser() domain.User {
	name := "Ada Lovelace"
	return domain.User{ID: 7, Name: &name, Email: "ada@example.com"}
}

func testRange() domain.DateRange {
	return domain.NewDateRange(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.UTC,
	)
}

func makeEntries(n int, day time.Time) []domain.TimeEntry {
	out := make([]domain.TimeEntry, 0, n)
	for i := 0; i < n; i++ {
		start := day.Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Minute)
		desc := fmt.Sprintf("work item %d with a description long enough to wrap across more than one line of the column", i)
		out = append(out, domain.TimeEntry{
			ID:          int64(i + 1),
			OwnerID:     7,
			Title:       fmt.Sprintf("Task %d", i),
			Description: &desc,
			JobType:     "dev",
			Date:        day,
			StartTime:   start,
			EndTime:     &end,
			Status:      domain.StatusCompleted,
		})
	}
	return out
}

func render(t *testing.T, groups []domain.ReportGroup) []byte {
	t.Helper()
	r := New(WithCompression(false), WithClock(fixedNow))
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, groups, testUser(), testRange()))
	return buf.Bytes()
}

func TestRender_EmptyReport(t *testing.T) {
	out := render(t, aggregate.Aggregate(nil, time.UTC))

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), EmptyMessage)
	assert.Contains(t, string(out), Title)
	assert.Contains(t, string(out), "Total Time")
	assert.Contains(t, string(out), "0h 0m")
}

func TestRender_TitleBlockAndTotals(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	start1 := day.Add(9 * time.Hour)
	end1 := start1.Add(90 * time.Minute)
	start2 := day.Add(13 * time.Hour)
	end2 := start2.Add(45 * time.Minute)
	start3 := day.Add(15 * time.Hour)
	entries := []domain.TimeEntry{
		{ID: 1, Title: "Design", JobType: "dev", Date: day, StartTime: start1, EndTime: &end1, Status: domain.StatusCompleted},
		{ID: 2, Title: "Review", JobType: "ops", Date: day, StartTime: start2, EndTime: &end2, Status: domain.StatusCompleted},
		{ID: 3, Title: "Ongoing", JobType: "dev", Date: day, StartTime: start3, Status: domain.StatusInProgress},
	}

	out := string(render(t, aggregate.Aggregate(entries, time.UTC)))

	assert.Contains(t, out, "From: January 1, 2024")
	assert.Contains(t, out, "To: January 31, 2024")
	assert.Contains(t, out, "User: Ada Lovelace")
	assert.Contains(t, out, "Monday, January 1, 2024")
	assert.Contains(t, out, "Total: 2h 15m")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "No description")
	assert.Contains(t, out, "By job type: dev 1h 30m; ops 0h 45m")
	assert.NotContains(t, out, EmptyMessage)
}

func TestRender_PaginatesLongReports(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	groups := aggregate.Aggregate(makeEntries(120, day), time.UTC)

	r := New(WithCompression(false), WithClock(fixedNow))
	pdf := r.build(groups, testUser(), testRange()).pdf
	require.NoError(t, pdf.Error())

	assert.Greater(t, pdf.PageCount(), 1)
}

func TestRender_NewPageBeforeDateThatDoesNotFit(t *testing.T) {
	r := New(WithCompression(false), WithClock(fixedNow))
	var groups []domain.ReportGroup
	for i := 0; i < 12; i++ {
		day := time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
		groups = append(groups, aggregate.Aggregate(makeEntries(3, day), time.UTC)...)
	}

	pdf := r.build(groups, testUser(), testRange()).pdf
	require.NoError(t, pdf.Error())

	_, pageH := pdf.GetPageSize()
	assert.Greater(t, pdf.PageCount(), 1)
	assert.LessOrEqual(t, pdf.GetY(), pageH-marginBottom)
}

func TestRender_NonLatinTextDoesNotFail(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := makeEntries(1, day)
	entries[0].Title = "Überstunden 日本"

	out := render(t, aggregate.Aggregate(entries, time.UTC))
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

// pageOf returns the 1-based page whose content stream holds offset i.
// Page objects and their content streams alternate in the output.
func pageOf(doc []byte, i int) int {
	return bytes.Count(doc[:i], []byte("/Type /Page\n"))
}

func TestRender_RowTallerThanPageContinuesOnNextPages(t *testing.T) {
	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	entries := makeEntries(1, day)
	desc := strings.Repeat("lorem ipsum dolor sit amet ", 400) + "END-MARKER"
	entries[0].Description = &desc
	groups := aggregate.Aggregate(entries, time.UTC)

	r := New(WithCompression(false), WithClock(fixedNow))
	d := r.build(groups, testUser(), testRange())
	require.NoError(t, d.pdf.Error())

	_, pageH := d.pdf.GetPageSize()
	assert.Greater(t, d.pdf.PageCount(), 2)
	assert.LessOrEqual(t, d.bottom, pageH-marginBottom)
	assert.LessOrEqual(t, d.pdf.GetY(), pageH-marginBottom)

	var buf bytes.Buffer
	require.NoError(t, d.pdf.Output(&buf))
	doc := buf.Bytes()

	marker := bytes.Index(doc, []byte("END-MARKER"))
	require.NotEqual(t, -1, marker, "last word of the description must be drawn")
	firstLorem := bytes.Index(doc, []byte("lorem"))
	lastLorem := bytes.LastIndex(doc, []byte("lorem"))
	total := bytes.Index(doc, []byte("Total: "))

	assert.Equal(t, 1, pageOf(doc, firstLorem), "row starts under the title block")
	assert.Equal(t, pageOf(doc, lastLorem), pageOf(doc, marker))
	assert.Greater(t, pageOf(doc, marker), 2)
	assert.GreaterOrEqual(t, pageOf(doc, total), pageOf(doc, marker))
	// Header is repeated on every page the row continues onto.
	assert.Equal(t, pageOf(doc, marker), bytes.Count(doc, []byte("(Job Type)")))
}

func TestRender_DateHeadingStaysWithFirstRow(t *testing.T) {
	day := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	entries := makeEntries(1, day)
	desc := strings.Repeat("lorem ipsum dolor sit amet ", 400)
	entries[0].Description = &desc

	r := New(WithCompression(false), WithClock(fixedNow))
	d := r.build(aggregate.Aggregate(entries, time.UTC), testUser(), testRange())
	require.NoError(t, d.pdf.Error())

	var buf bytes.Buffer
	require.NoError(t, d.pdf.Output(&buf))
	doc := buf.Bytes()

	heading := bytes.Index(doc, []byte("Thursday, January 4, 2024"))
	require.NotEqual(t, -1, heading)
	assert.Equal(t, 1, pageOf(doc, heading))
	assert.Equal(t, 1, pageOf(doc, bytes.Index(doc, []byte("lorem"))))
}
