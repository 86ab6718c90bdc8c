package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const moneyNumFmt = "#,##0.00"

// GenerateProposalExcel renders a reconciled proposal into the multi-sheet
// workbook: Version Control, Proposal Summary, Scope of Work, Terms &
// Conditions, then one BOQ sheet per room with items. A proposal with no
// priced rooms still produces the informational sheets and a zero summary.
func GenerateProposalExcel(data ProposalData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}

	// Rename the default sheet so Version Control is first and active.
	if err := f.SetSheetName(f.GetSheetName(0), "Version Control"); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if err := addVersionControlSheet(f, styles, data.Details); err != nil {
		return nil, err
	}
	if err := addSummarySheet(f, styles, data); err != nil {
		return nil, err
	}
	if err := addTextSheet(f, styles, "Scope of Work", ScopeOfWork); err != nil {
		return nil, err
	}
	if err := addTextSheet(f, styles, "Terms & Conditions", TermsAndConditions); err != nil {
		return nil, err
	}
	for _, room := range data.Rooms {
		if len(room.Items) == 0 {
			continue
		}
		if err := addRoomSheet(f, styles, room, data.Context); err != nil {
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex("Version Control")
	if err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// workbookStyles holds the style IDs shared across sheets.
type workbookStyles struct {
	title      int
	header     int
	body       int
	money      int
	totalLabel int
	totalMoney int
	totalNum   int
	label      int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}

	s.body, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create body style: %w", err)
	}

	moneyFmt := moneyNumFmt
	s.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}

	s.totalLabel, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E8E8E8"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create total label style: %w", err)
	}

	s.totalMoney, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"#E8E8E8"}, Pattern: 1},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return s, fmt.Errorf("create total money style: %w", err)
	}

	s.totalNum, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E8E8E8"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create total number style: %w", err)
	}

	s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return s, fmt.Errorf("create label style: %w", err)
	}

	return s, nil
}

// addVersionControlSheet writes the static key/value metadata grid.
func addVersionControlSheet(f *excelize.File, styles workbookStyles, details ClientDetails) error {
	const sheet = "Version Control"

	widths := []float64{22, 20, 22, 34}
	for i, col := range []string{"A", "B", "C", "D"} {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	rows := [][2][2]string{
		{{"Version", ""}, {"Contact Details", ""}},
		{{"Date of First Draft", details.Date}, {"Design Engineer", details.DesignEngineer}},
		{{"Date of Final Draft", ""}, {"Account Manager", details.AccountManager}},
		{{"Version No.", "1.0"}, {"Client Name", details.ClientName}},
		{{"Published Date", details.Date}, {"Key Client Personnel", details.KeyClientPersonnel}},
		{{"", ""}, {"Location", details.Location}},
		{{"Prepared By", details.PreparedBy}, {"Key Comments", details.KeyComments}},
	}

	for i, r := range rows {
		row := i + 1
		if r[0][0] != "" {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sanitizeExcelCell(r[0][0]))
		}
		if r[0][1] != "" {
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), sanitizeExcelCell(r[0][1]))
		}
		if r[1][0] != "" {
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), sanitizeExcelCell(r[1][0]))
		}
		if r[1][1] != "" {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), sanitizeExcelCell(r[1][1]))
		}
	}

	f.SetCellStyle(sheet, "A1", "A1", styles.label)
	f.SetCellStyle(sheet, "C1", "C1", styles.label)
	return nil
}

// addSummarySheet writes one row per room and a grand total row. The grand
// total cell carries the sum of the room grand totals, the same per-item
// sums the room sheets render, so the two levels always reconcile.
func addSummarySheet(f *excelize.File, styles workbookStyles, data ProposalData) error {
	const sheet = "Proposal Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %q: %w", sheet, err)
	}

	widths := []float64{10, 42, 22}
	for i, col := range []string{"A", "B", "C"} {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", "Proposal Summary")
	f.SetCellStyle(sheet, "A1", "C1", styles.title)

	headers := []string{"Sr. No.", "Description", fmt.Sprintf("Total Amount (%s)", data.Context.Currency)}
	for i, h := range headers {
		cell := fmt.Sprintf("%c3", 'A'+i)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A3", "C3", styles.header)

	row := 4
	for i, room := range data.Rooms {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), sanitizeExcelCell(room.Name))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), room.Totals.GrandTotal)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), styles.body)
		f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), styles.money)
		row++
	}

	row++ // blank separator
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Grand Total")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), data.GrandTotal)
	f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.totalLabel)
	f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), styles.totalMoney)
	return nil
}

// addTextSheet writes a title followed by one paragraph per row.
func addTextSheet(f *excelize.File, styles workbookStyles, sheet string, lines []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %q: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 90); err != nil {
		return fmt.Errorf("set col width: %w", err)
	}

	f.SetCellValue(sheet, "A1", sheet)
	f.SetCellStyle(sheet, "A1", "A1", styles.title)

	for i, line := range lines {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), sanitizeExcelCell(line))
	}
	return nil
}

// roomColumns returns the header labels for a room sheet under the given
// context. The tax presentation policy decides whether tax appears as one
// flat column or two half-rate components.
func roomColumns(ctx PricingContext) []string {
	cols := []string{
		"Category",
		"Brand",
		"Model Number",
		"Description",
		"Qty",
		fmt.Sprintf("Unit Price (%s)", ctx.Currency),
		fmt.Sprintf("Total Price (%s)", ctx.Currency),
		"Margin %",
	}
	if ctx.TaxPolicy == TaxPolicySplit {
		half := ctx.TaxRate / 2
		cols = append(cols,
			fmt.Sprintf("CGST (%s%%)", trimPercent(half)),
			fmt.Sprintf("SGST (%s%%)", trimPercent(half)),
		)
	} else {
		cols = append(cols, fmt.Sprintf("Tax (%s%%)", trimPercent(ctx.TaxRate)))
	}
	return append(cols, "Final Total", "Notes", "Reference Image")
}

func trimPercent(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = trimTrailing(s, '0')
	return trimTrailing(s, '.')
}

func trimTrailing(s string, c byte) string {
	for len(s) > 0 && s[len(s)-1] == c {
		s = s[:len(s)-1]
	}
	return s
}

// addRoomSheet writes one line item per row plus a totals row whose every
// numeric cell is the running sum of the column above it.
func addRoomSheet(f *excelize.File, styles workbookStyles, room RoomExport, ctx PricingContext) error {
	sheet := room.SheetName
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %q: %w", sheet, err)
	}

	split := ctx.TaxPolicy == TaxPolicySplit
	headers := roomColumns(ctx)
	columns := make([]string, len(headers))
	for i := range headers {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		columns[i] = name
	}
	lastCol := columns[len(columns)-1]

	widths := []float64{20, 18, 22, 42, 7, 16, 16, 10}
	if split {
		widths = append(widths, 14, 14)
	} else {
		widths = append(widths, 14)
	}
	widths = append(widths, 16, 40, 16)
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	for i, h := range headers {
		f.SetCellValue(sheet, columns[i]+"1", h)
	}
	f.SetCellStyle(sheet, "A1", lastCol+"1", styles.header)

	// Column sums accumulated while writing rows; the totals row must hold
	// these, never a figure recomputed elsewhere.
	var sumQty int
	var sumTotal, sumTax1, sumTax2, sumFinal float64

	row := 2
	for i, item := range room.Items {
		p := room.Pricing[i]
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheet, "A"+rowStr, sanitizeExcelCell(item.Category))
		f.SetCellValue(sheet, "B"+rowStr, sanitizeExcelCell(item.Brand))
		f.SetCellValue(sheet, "C"+rowStr, sanitizeExcelCell(item.Model))
		f.SetCellValue(sheet, "D"+rowStr, sanitizeExcelCell(item.Description))
		f.SetCellValue(sheet, "E"+rowStr, item.Quantity)

		unitAfterMargin := p.UnitPriceConverted * (1 + p.MarginPercent/100)
		f.SetCellValue(sheet, "F"+rowStr, unitAfterMargin)
		f.SetCellValue(sheet, "G"+rowStr, p.AmountAfterMargin)
		f.SetCellValue(sheet, "H"+rowStr, p.MarginPercent)

		col := 8 // zero-based index of the first tax column
		if split {
			f.SetCellValue(sheet, columns[col]+rowStr, p.TaxComponents[0])
			f.SetCellValue(sheet, columns[col+1]+rowStr, p.TaxComponents[1])
			sumTax1 += p.TaxComponents[0]
			sumTax2 += p.TaxComponents[1]
			col += 2
		} else {
			f.SetCellValue(sheet, columns[col]+rowStr, p.TaxAmount)
			sumTax1 += p.TaxAmount
			col++
		}

		f.SetCellValue(sheet, columns[col]+rowStr, p.FinalPrice)
		finalCol := columns[col]
		col++
		if item.Notes != "" {
			f.SetCellValue(sheet, columns[col]+rowStr, sanitizeExcelCell(item.Notes))
		}
		col++
		if item.ImageURL != "" {
			f.SetCellValue(sheet, columns[col]+rowStr, "View Image")
			if err := f.SetCellHyperLink(sheet, columns[col]+rowStr, item.ImageURL, "External"); err != nil {
				return fmt.Errorf("set hyperlink: %w", err)
			}
		} else {
			f.SetCellValue(sheet, columns[col]+rowStr, "N/A")
		}

		f.SetCellStyle(sheet, "A"+rowStr, "E"+rowStr, styles.body)
		f.SetCellStyle(sheet, "F"+rowStr, finalCol+rowStr, styles.money)
		f.SetCellStyle(sheet, "H"+rowStr, "H"+rowStr, styles.body)
		f.SetCellStyle(sheet, columns[len(columns)-2]+rowStr, lastCol+rowStr, styles.body)

		sumQty += item.Quantity
		sumTotal += p.AmountAfterMargin
		sumFinal += p.FinalPrice
		row++
	}

	// Totals row.
	rowStr := fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "D"+rowStr, "Grand Total")
	f.SetCellStyle(sheet, "A"+rowStr, "D"+rowStr, styles.totalLabel)
	f.SetCellValue(sheet, "E"+rowStr, sumQty)
	f.SetCellStyle(sheet, "E"+rowStr, "E"+rowStr, styles.totalNum)
	f.SetCellValue(sheet, "G"+rowStr, sumTotal)
	f.SetCellStyle(sheet, "F"+rowStr, "G"+rowStr, styles.totalMoney)

	col := 8
	if split {
		f.SetCellValue(sheet, columns[col]+rowStr, sumTax1)
		f.SetCellValue(sheet, columns[col+1]+rowStr, sumTax2)
		f.SetCellStyle(sheet, columns[col]+rowStr, columns[col+1]+rowStr, styles.totalMoney)
		col += 2
	} else {
		f.SetCellValue(sheet, columns[col]+rowStr, sumTax1)
		f.SetCellStyle(sheet, columns[col]+rowStr, columns[col]+rowStr, styles.totalMoney)
		col++
	}
	f.SetCellValue(sheet, columns[col]+rowStr, sumFinal)
	f.SetCellStyle(sheet, columns[col]+rowStr, lastCol+rowStr, styles.totalMoney)

	return nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous
// leading characters with a single quote. Excel interprets cells starting
// with =, +, -, @, \t or \r as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1,
		}
	}
	return borders
}
