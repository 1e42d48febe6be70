// Package pdf lays out invoice documents. It is purely presentational: it
// receives pre-formatted strings and never computes or rounds amounts itself.
package pdf

import (
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type Line struct {
	Label     string
	Quantity  string // "2.00 heure"
	UnitPrice string
	VATRate   string
	TotalTTC  string
}

type Document struct {
	Number    string
	IssueDate string
	DueDate   string

	ClientName    string
	ClientAddress string
	ClientPhone   string
	ClientEmail   string

	Lines []Line

	TotalHT  string
	TotalVAT string
	TotalTTC string
	Balance  string
}

// Render produces the paginated A4 invoice document.
func Render(doc Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(14, text.NewCol(12, "FACTURE N° "+doc.Number, props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))

	m.AddRow(6, text.NewCol(12, "Client", props.Text{Style: fontstyle.Bold}))
	m.AddRow(5, text.NewCol(12, doc.ClientName, props.Text{}))
	if doc.ClientAddress != "" {
		m.AddRow(5, text.NewCol(12, doc.ClientAddress, props.Text{}))
	}
	if doc.ClientPhone != "" {
		m.AddRow(5, text.NewCol(12, "Tél : "+doc.ClientPhone, props.Text{}))
	}
	if doc.ClientEmail != "" {
		m.AddRow(5, text.NewCol(12, "Email : "+doc.ClientEmail, props.Text{}))
	}

	m.AddRow(8, text.NewCol(12, "Date : "+doc.IssueDate+"    Échéance : "+doc.DueDate, props.Text{Top: 2}))

	m.AddRows(lineHeader())
	for _, l := range doc.Lines {
		m.AddRows(lineRow(l))
	}

	m.AddRow(8, text.NewCol(12, "Total HT : "+doc.TotalHT, props.Text{Align: align.Right, Top: 3}))
	m.AddRow(6, text.NewCol(12, "TVA : "+doc.TotalVAT, props.Text{Align: align.Right}))
	m.AddRow(7, text.NewCol(12, "TOTAL TTC : "+doc.TotalTTC, props.Text{
		Align: align.Right,
		Style: fontstyle.Bold,
		Size:  12,
	}))
	if doc.Balance != "" {
		m.AddRow(6, text.NewCol(12, "Solde restant : "+doc.Balance, props.Text{Align: align.Right}))
	}

	document, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return document.GetBytes(), nil
}

func lineHeader() core.Row {
	bold := props.Text{Style: fontstyle.Bold}
	boldRight := props.Text{Style: fontstyle.Bold, Align: align.Right}
	return row.New(7).Add(
		text.NewCol(5, "Désignation", bold),
		text.NewCol(2, "Qté", boldRight),
		text.NewCol(2, "PU HT", boldRight),
		text.NewCol(1, "TVA", boldRight),
		text.NewCol(2, "Total TTC", boldRight),
	)
}

func lineRow(l Line) core.Row {
	right := props.Text{Align: align.Right}
	return row.New(6).Add(
		text.NewCol(5, l.Label, props.Text{}),
		text.NewCol(2, l.Quantity, right),
		text.NewCol(2, l.UnitPrice, right),
		text.NewCol(1, l.VATRate, right),
		text.NewCol(2, l.TotalTTC, right),
	)
}
