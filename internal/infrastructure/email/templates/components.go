package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
)

// CompensationEmailProps describes a compensation notice for a failed paid
// service. AmountWon is pre-formatted by the caller.
type CompensationEmailProps struct {
	Name        string
	ServiceName string
	OrderID     string
	ErrorID     string
	AmountWon   string
	HasRefund   bool
}

var compensationEmailTemplate = template.Must(template.New("compensationEmail").Parse(`
<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">Hello {{.Name}},</p>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">We are sorry — your <strong>{{.ServiceName}}</strong> result could not be delivered because of a problem on our side.</p>
{{if .HasRefund}}
<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">A refund of <strong>{{.AmountWon}}</strong> is being prepared for you. No action is needed; we will follow up once it is processed.</p>
{{else}}
<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">Our support team is looking into it and will follow up with next steps.</p>
{{end}}
<p style="font-family: Helvetica, sans-serif; font-size: 14px; color: #6b7280; margin: 0; margin-bottom: 8px;">When contacting support, please mention these references:</p>
<table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: separate; width: 100%; margin-bottom: 16px;">
  <tr>
    <td style="font-family: Helvetica, sans-serif; font-size: 14px; padding: 4px 0; color: #6b7280;">Order</td>
    <td style="font-family: Helvetica, sans-serif; font-size: 14px; padding: 4px 0;"><code>{{.OrderID}}</code></td>
  </tr>
  <tr>
    <td style="font-family: Helvetica, sans-serif; font-size: 14px; padding: 4px 0; color: #6b7280;">Reference</td>
    <td style="font-family: Helvetica, sans-serif; font-size: 14px; padding: 4px 0;"><code>{{.ErrorID}}</code></td>
  </tr>
</table>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0;">Thank you for your patience.</p>`))

// GetCompensationEmailContent renders the body of a compensation notice.
func GetCompensationEmailContent(props CompensationEmailProps) string {
	if props.Name == "" {
		props.Name = "there"
	}
	if props.OrderID == "" {
		props.OrderID = "n/a"
	}

	var buf bytes.Buffer
	if err := compensationEmailTemplate.Execute(&buf, props); err != nil {
		log.Printf("Error executing compensation email template: %v", err)
		return "<p>We could not render this message. Please contact support.</p>"
	}
	return buf.String()
}

// FormatAmountWon renders an integer KRW amount as "1,000 won".
func FormatAmountWon(amount int) string {
	if amount <= 0 {
		return ""
	}
	s := fmt.Sprintf("%d", amount)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out) + " won"
}
