package extract

import (
	"bytes"
	"fmt"
	"text/template"
)

var extractionTemplate = template.Must(template.New("extraction").Parse(`You are a financial analyst. Read the business plan below carefully.
Extract the following figures and return them as a single JSON object.
If a figure cannot be found, return 0 for that field.

1. "initial_investment": total initial investment ({{.Currency}}).
2. "lifespan_years": project lifespan (years, integer).
3. "annual_revenue": average annual revenue ({{.Currency}}).
4. "annual_operating_cost": average annual operating cost, excluding the initial investment ({{.Currency}}).
5. "wacc": discount rate or weighted average cost of capital (percent, e.g. 12.5 for 12.5%).
6. "tax_rate": corporate income tax rate (percent, e.g. 20 for 20%).

Business plan:
---
{{.Text}}
---

Return only the JSON object, without any explanation.
Example output:
{
  "initial_investment": 5000000000,
  "lifespan_years": 5,
  "annual_revenue": 3000000000,
  "annual_operating_cost": 1500000000,
  "wacc": 12.5,
  "tax_rate": 20
}
`))

var analysisTemplate = template.Must(template.New("analysis").Parse(`As an investment consultant, analyse the project indicators below and give a professional opinion.
Briefly explain what each indicator means for this project.
Finish with an overall conclusion on feasibility (for example: highly feasible, needs consideration, high risk).
{{if .Vietnamese}}Write the answer in Vietnamese.
{{end}}
Project figures:
- Initial investment: {{.Investment}}
- Lifespan: {{.Lifespan}} years
- Annual revenue: {{.Revenue}}
- Annual operating cost: {{.Cost}}
- WACC: {{.WACC}}
- Tax rate: {{.TaxRate}}

Indicators:
- Net present value (NPV): {{.NPV}}
- Internal rate of return (IRR): {{.IRR}}
- Payback period (PP): {{.PP}}
- Discounted payback period (DPP): {{.DPP}}

Present the answer in markdown with a heading for each part.
`))

type extractionData struct {
	Text     string
	Currency string
}

type analysisData struct {
	Vietnamese bool

	Investment string
	Lifespan   int
	Revenue    string
	Cost       string
	WACC       string
	TaxRate    string

	NPV string
	IRR string
	PP  string
	DPP string
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
