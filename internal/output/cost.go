package output

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// File names written by WriteCostFiles.
const (
	CostDailyFileName  = "ec2_cost_data_daily_total.json"
	CostByTypeFileName = "ec2_cost_data_per_instance_type.json"
	CostHTMLFileName   = "ec2_cost_report.html"
)

var costReportTmpl = template.Must(template.New("cost").Funcs(template.FuncMap{
	"usd": func(v float64) string { return fmt.Sprintf("%.4f", v) },
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>EC2 Cost Report</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 40px; }
    table { border-collapse: collapse; margin-bottom: 24px; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background: #f2f2f2; }
  </style>
</head>
<body>
  <h1>EC2 Instance Cost Analysis</h1>
  <p>Period {{.Data.PeriodStart}} to {{.Data.PeriodEnd}} (end exclusive), granularity {{.Data.Granularity}}.</p>

  <h2>Summary</h2>
  <table>
    <tr><th>Total cost (USD)</th><td>{{usd .Analysis.TotalCostUSD}}</td></tr>
    <tr><th>Average cost per period (USD)</th><td>{{usd .Analysis.AverageCostUSD}}</td></tr>
    <tr><th>Highest cost period</th><td>{{if .Analysis.MaxCostDate}}{{.Analysis.MaxCostDate}} ({{usd .Analysis.MaxCostUSD}} USD){{else}}n/a{{end}}</td></tr>
    <tr><th>Lowest cost period</th><td>{{if .Analysis.MinCostDate}}{{.Analysis.MinCostDate}} ({{usd .Analysis.MinCostUSD}} USD){{else}}n/a{{end}}</td></tr>
  </table>

  <h2>Cost by instance type</h2>
  {{- if .Analysis.ByInstanceType}}
  <table>
    <tr><th>Instance type</th><th>Cost (USD)</th></tr>
    {{- range .Analysis.ByInstanceType}}
    <tr><td>{{.InstanceType}}</td><td>{{usd .CostUSD}}</td></tr>
    {{- end}}
  </table>
  {{- else}}
  <p>No instance type costs in this period.</p>
  {{- end}}

  <p>Generated {{.GeneratedAt}} UTC</p>
</body>
</html>
`))

// WriteCostHTML renders the cost summary and per-type table as a standalone
// HTML page.
func WriteCostHTML(w io.Writer, data *models.EC2CostData, analysis models.CostAnalysis, generatedAt time.Time) error {
	err := costReportTmpl.Execute(w, struct {
		Data        *models.EC2CostData
		Analysis    models.CostAnalysis
		GeneratedAt string
	}{data, analysis, generatedAt.UTC().Format(QueryTimeLayout)})
	if err != nil {
		return fmt.Errorf("render cost report: %w", err)
	}
	return nil
}

// WriteCostFiles creates dir and writes the two cost downloads and the HTML
// report. It returns the paths written.
func WriteCostFiles(dir string, data *models.EC2CostData, analysis models.CostAnalysis, generatedAt time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{CostDailyFileName, func(f *os.File) error { return writeIndentedJSON(f, data.Daily) }},
		{CostByTypeFileName, func(f *os.File) error { return writeIndentedJSON(f, data.ByInstanceType) }},
		{CostHTMLFileName, func(f *os.File) error { return WriteCostHTML(f, data, analysis, generatedAt) }},
	}

	written := make([]string, 0, len(files))
	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if err := writeFile(path, file.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// RenderCostSummary writes the cost analysis as two terminal tables.
func RenderCostSummary(w io.Writer, data *models.EC2CostData, analysis models.CostAnalysis) {
	fmt.Fprintf(w, "EC2 compute cost %s -> %s (end exclusive, %s)\n\n", data.PeriodStart, data.PeriodEnd, data.Granularity)

	summary := newTable(w, []string{"Metric", "Value"})
	summary.Append([]string{"Total (USD)", fmt.Sprintf("%.4f", analysis.TotalCostUSD)})
	summary.Append([]string{"Average (USD)", fmt.Sprintf("%.4f", analysis.AverageCostUSD)})
	summary.Append([]string{"Highest", costExtreme(analysis.MaxCostDate, analysis.MaxCostUSD)})
	summary.Append([]string{"Lowest", costExtreme(analysis.MinCostDate, analysis.MinCostUSD)})
	summary.Render()

	if len(analysis.ByInstanceType) == 0 {
		return
	}
	fmt.Fprintln(w)
	types := newTable(w, []string{"Instance Type", "Cost (USD)"})
	for _, t := range analysis.ByInstanceType {
		types.Append([]string{t.InstanceType, fmt.Sprintf("%.4f", t.CostUSD)})
	}
	types.Render()
}

func costExtreme(date string, v float64) string {
	if date == "" {
		return "n/a"
	}
	return fmt.Sprintf("%s (%.4f)", date, v)
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
