package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateProposalPDF creates a summary PDF of the proposal using maroto/v2:
// a header with the client details, one table row per priced room, and the
// grand total. It returns the raw PDF bytes or an error.
func GenerateProposalPDF(data ProposalData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addProposalHeader(m, data)
	addRoomTableHeader(m, data.Context.Currency)
	for i, room := range data.Rooms {
		addRoomTableRow(m, i+1, room, data.Context.Currency)
	}
	addProposalSummary(m, data)
	addProposalFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addProposalHeader adds the title, client name, and date.
func addProposalHeader(m core.Maroto, data ProposalData) {
	title := data.Details.ProjectName
	if title == "" {
		title = "Proposal"
	}
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Client: %s", data.Details.ClientName), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", data.Details.Date), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	// Spacer
	m.AddRows(row.New(4))
}

// addRoomTableHeader adds the column header row for the room summary table.
func addRoomTableHeader(m core.Maroto, currency string) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(
				text.New("#", headerText),
			).WithStyle(&headerCell),
			col.New(4).Add(
				text.New("Room", headerTextLeft),
			).WithStyle(&headerCell),
			col.New(1).Add(
				text.New("Items", headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New(fmt.Sprintf("Subtotal (%s)", currency), headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New(fmt.Sprintf("Tax (%s)", currency), headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New(fmt.Sprintf("Total (%s)", currency), headerText),
			).WithStyle(&headerCell),
		),
	)
}

// addRoomTableRow adds one room's totals to the summary table.
func addRoomTableRow(m core.Maroto, index int, room RoomExport, currency string) {
	baseText := props.Text{
		Size:  8,
		Align: align.Center,
	}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", index), baseText)),
			col.New(4).Add(text.New(room.Name, leftText)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", len(room.Items)), rightText)),
			col.New(2).Add(text.New(FormatMoney(room.Totals.Subtotal, currency), rightText)),
			col.New(2).Add(text.New(FormatMoney(room.Totals.TaxAmount, currency), rightText)),
			col.New(2).Add(text.New(FormatMoney(room.Totals.GrandTotal, currency), rightText)),
		),
	)
}

// addProposalSummary adds the grand total row at the bottom.
func addProposalSummary(m core.Maroto, data ProposalData) {
	m.AddRows(row.New(6))

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}

	labelStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(
				text.New("Grand Total", labelStyle),
			).WithStyle(summaryCell),
			col.New(4).Add(
				text.New(FormatMoney(data.GrandTotal, data.Context.Currency), labelStyle),
			).WithStyle(summaryCell),
		),
	)
}

// addProposalFooter adds the prepared-by line at the bottom.
func addProposalFooter(m core.Maroto, data ProposalData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Prepared by %s on %s", data.Details.PreparedBy, data.Details.Date),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
