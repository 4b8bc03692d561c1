// Package pdf renders booking vouchers with maroto/v2.
package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

var (
	colorPrimary   = &props.Color{Red: 17, Green: 24, Blue: 39}
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128}
	colorAccent    = &props.Color{Red: 13, Green: 148, Blue: 136}
	colorPanel     = &props.Color{Red: 240, Green: 253, Blue: 250}
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240}
	colorDue       = &props.Color{Red: 220, Green: 38, Blue: 38}
)

// VoucherData is everything printed on a booking voucher.
type VoucherData struct {
	AgencyName    string
	VoucherNumber string
	IssuedAt      time.Time

	ClientName string
	Contact    string
	Place      string
	Pax        int
	TravelDate time.Time
	AgentName  string

	// Itinerary is optional; empty Title skips the package block.
	ItineraryTitle string
	Days           int
	Nights         int
	TransportMode  string

	Total         decimal.Decimal
	Advance       decimal.Decimal
	Due           decimal.Decimal
	TransactionID string
	Remark        string
}

// GenerateBookingVoucher returns the voucher as PDF bytes.
func GenerateBookingVoucher(data VoucherData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(buildFooter(data)); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(buildHeader(data)...)
	m.AddRows(separator(), row.New(6))
	m.AddRows(buildTravellerBlock(data)...)
	if data.ItineraryTitle != "" {
		m.AddRows(row.New(6))
		m.AddRows(buildPackageBlock(data)...)
	}
	m.AddRows(row.New(6))
	m.AddRows(buildPaymentBlock(data)...)
	if data.Remark != "" {
		m.AddRows(row.New(6))
		m.AddRows(sectionTitle("REMARKS"))
		m.AddRows(row.New(12).Add(col.New(12).Add(text.New(data.Remark, props.Text{Size: 8, Color: colorPrimary}))))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func buildHeader(data VoucherData) []core.Row {
	return []core.Row{
		row.New(20).Add(
			col.New(6).Add(text.New(data.AgencyName, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Color: colorPrimary,
				Top:   4,
			})),
			col.New(6).Add(
				text.New("BOOKING VOUCHER", props.Text{
					Size:  18,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: colorAccent,
				}),
				text.New(data.VoucherNumber, props.Text{
					Size:  9,
					Align: align.Right,
					Color: colorSecondary,
					Top:   10,
				}),
			),
		),
	}
}

func buildTravellerBlock(data VoucherData) []core.Row {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent}
	labelRight := props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent, Align: align.Right}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary}
	valueRight := props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right}
	muted := props.Text{Size: 8, Color: colorSecondary}
	mutedRight := props.Text{Size: 8, Color: colorSecondary, Align: align.Right}

	return []core.Row{
		row.New(5).Add(
			col.New(6).Add(text.New("TRAVELLER", label)),
			col.New(6).Add(text.New("TRIP", labelRight)),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(data.ClientName, value)),
			col.New(6).Add(text.New(data.Place, valueRight)),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(data.Contact, muted)),
			col.New(6).Add(text.New("Travel date: "+data.TravelDate.Format("02 Jan 2006"), mutedRight)),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(fmt.Sprintf("Travellers: %d", data.Pax), muted)),
			col.New(6).Add(text.New("Issued: "+data.IssuedAt.Format("02 Jan 2006 15:04"), mutedRight)),
		),
		row.New(5).Add(
			col.New(12).Add(text.New("Travel consultant: "+data.AgentName, muted)),
		),
	}
}

func buildPackageBlock(data VoucherData) []core.Row {
	style := props.Text{Size: 8, Color: colorPrimary, Top: 1.5}
	return []core.Row{
		sectionTitle("PACKAGE"),
		row.New(7).Add(
			col.New(6).Add(text.New(data.ItineraryTitle, props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5})),
			col.New(3).Add(text.New(fmt.Sprintf("%dD / %dN", data.Days, data.Nights), style)),
			col.New(3).Add(text.New(transportLabel(data.TransportMode), props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1.5})),
		).WithStyle(&props.Cell{BackgroundColor: colorPanel}),
	}
}

func buildPaymentBlock(data VoucherData) []core.Row {
	label := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	value := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}

	rows := []core.Row{
		sectionTitle("PAYMENT"),
		row.New(6).Add(
			col.New(9).Add(text.New("Package total", label)),
			col.New(3).Add(text.New(FormatINR(data.Total), value)),
		),
		row.New(6).Add(
			col.New(9).Add(text.New("Advance received", label)),
			col.New(3).Add(text.New(FormatINR(data.Advance), value)),
		),
		separator(),
		row.New(8).Add(
			col.New(9).Add(text.New("Balance due", props.Text{Size: 10, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5})),
			col.New(3).Add(text.New(FormatINR(data.Due), props.Text{Size: 10, Style: fontstyle.Bold, Color: dueColor(data.Due), Align: align.Right, Top: 1.5})),
		),
	}
	if data.TransactionID != "" {
		rows = append(rows, row.New(6).Add(
			col.New(12).Add(text.New("Transaction reference: "+data.TransactionID, props.Text{Size: 8, Color: colorSecondary})),
		))
	}
	return rows
}

func buildFooter(data VoucherData) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(
			data.AgencyName+"  |  Please carry this voucher and a photo ID while travelling.",
			props.Text{Size: 7, Color: colorSecondary, Align: align.Center},
		)),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(
		col.New(12).Add(text.New(title, props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent})),
	)
}

func separator() core.Row {
	return row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	})
}

func dueColor(due decimal.Decimal) *props.Color {
	if due.IsPositive() {
		return colorDue
	}
	return colorAccent
}

func transportLabel(mode string) string {
	switch mode {
	case "self_drive":
		return "Self drive"
	case "":
		return ""
	default:
		return strings.ToUpper(mode[:1]) + mode[1:]
	}
}

// FormatINR renders an amount with Indian digit grouping, e.g.
// 1250000.5 as "INR 12,50,000.50".
func FormatINR(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped string
	if len(intPart) <= 3 {
		grouped = intPart
	} else {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		parts = append([]string{head}, parts...)
		grouped = strings.Join(parts, ",") + "," + tail
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return "INR " + sign + grouped + "." + frac
}
