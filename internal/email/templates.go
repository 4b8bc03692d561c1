package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

const allocationHTML = `<!DOCTYPE html>
<html><body style="font-family: sans-serif">
<h2>Booking handed over to operations</h2>
<table>
<tr><td><b>Client</b></td><td>{{.ClientName}}</td></tr>
<tr><td><b>Destination</b></td><td>{{.Place}}</td></tr>
<tr><td><b>Travel date</b></td><td>{{.TravelDate}}</td></tr>
<tr><td><b>Allocated by</b></td><td>{{.AllocatedBy}}</td></tr>
<tr><td><b>Lead</b></td><td>{{.LeadID}}</td></tr>
</table>
</body></html>`

const allocationText = `Booking handed over to operations

Client:       {{.ClientName}}
Destination:  {{.Place}}
Travel date:  {{.TravelDate}}
Allocated by: {{.AllocatedBy}}
Lead:         {{.LeadID}}
`

var (
	allocationHTMLTmpl = htmltemplate.Must(htmltemplate.New("allocation.html").Parse(allocationHTML))
	allocationTextTmpl = texttemplate.Must(texttemplate.New("allocation.txt").Parse(allocationText))
)

type allocationView struct {
	ClientName  string
	Place       string
	TravelDate  string
	AllocatedBy string
	LeadID      string
}

func renderAllocation(data AllocationEmail) (string, string, error) {
	view := allocationView{
		ClientName:  data.ClientName,
		Place:       data.Place,
		TravelDate:  "not fixed",
		AllocatedBy: data.AllocatedBy,
		LeadID:      data.LeadID,
	}
	if data.TravelDate != nil {
		view.TravelDate = data.TravelDate.Format(time.DateOnly)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := allocationHTMLTmpl.Execute(&htmlBuf, view); err != nil {
		return "", "", fmt.Errorf("execute allocation html template: %w", err)
	}
	if err := allocationTextTmpl.Execute(&textBuf, view); err != nil {
		return "", "", fmt.Errorf("execute allocation text template: %w", err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}
