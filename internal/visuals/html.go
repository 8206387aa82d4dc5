package visuals

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"opsboard/internal/dashboard"
)

// reportScript drives the small interactions of the generated page:
// collapsible sections and click-to-sort table headers. It is minified at
// render time so the page stays a single self-contained file.
const reportScript = `
document.querySelectorAll("section > h2").forEach((heading) => {
	heading.addEventListener("click", () => {
		heading.parentElement.classList.toggle("collapsed");
	});
});

document.querySelectorAll("table.sortable th").forEach((header, column) => {
	header.addEventListener("click", () => {
		const table = header.closest("table");
		const body = table.querySelector("tbody");
		const ascending = header.dataset.order !== "asc";
		header.dataset.order = ascending ? "asc" : "desc";
		const rows = Array.from(body.querySelectorAll("tr"));
		rows.sort((a, b) => {
			const left = a.children[column].dataset.value ?? a.children[column].textContent;
			const right = b.children[column].dataset.value ?? b.children[column].textContent;
			const leftNum = parseFloat(left);
			const rightNum = parseFloat(right);
			const result = Number.isNaN(leftNum) || Number.isNaN(rightNum)
				? left.localeCompare(right)
				: leftNum - rightNum;
			return ascending ? result : -result;
		});
		rows.forEach((row) => body.appendChild(row));
	});
});
`

const reportStyle = `
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 64rem; color: #1a1a2e; }
h1 { font-size: 1.4rem; }
section > h2 { font-size: 1.1rem; cursor: pointer; border-bottom: 1px solid #ccc; padding-bottom: .3rem; }
section.collapsed > :not(h2) { display: none; }
table { border-collapse: collapse; margin: .5rem 0 1.5rem; }
th, td { border: 1px solid #ddd; padding: .3rem .7rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
table.sortable th { cursor: pointer; }
.kpi-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(12rem, 1fr)); gap: .8rem; margin: 1rem 0; }
.kpi { border: 1px solid #ddd; border-radius: .4rem; padding: .6rem .8rem; }
.kpi .label { font-size: .75rem; color: #666; text-transform: uppercase; }
.kpi .value { font-size: 1.3rem; }
.problems { background: #fff3f3; border: 1px solid #e0b4b4; border-radius: .4rem; padding: .6rem 1rem; }
.muted { color: #888; }
footer { margin-top: 2rem; font-size: .75rem; color: #888; }
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"round1": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Operations Report {{.Report.Range.Start.Format "2006-01-02"}} to {{.Report.Range.End.Format "2006-01-02"}}</title>
<style>{{.Style}}</style>
</head>
<body>
<h1>Operations Report</h1>
<p>{{.Report.Range.Start.Format "Mon 02 Jan 2006"}} to {{.Report.Range.End.Format "Mon 02 Jan 2006"}} ({{.Report.SpanDays}} days)</p>

{{if .Report.Problems}}
<div class="problems">
<strong>Problems</strong>
<ul>{{range .Report.Problems}}<li>{{.}}</li>{{end}}</ul>
</div>
{{end}}

<section>
<h2>Shifts</h2>
<div class="kpi-grid">
<div class="kpi"><div class="label">Shifts</div><div class="value">{{.Report.Shifts.Count}}</div></div>
<div class="kpi"><div class="label">Total hours</div><div class="value">{{round1 .Report.Shifts.HoursTotal}}</div></div>
<div class="kpi"><div class="label">Mean hours</div><div class="value">{{if .Report.Shifts.HoursMean.Valid}}{{round1 .Report.Shifts.HoursMean.Value}}{{else}}<span class="muted">n/a</span>{{end}}</div></div>
<div class="kpi"><div class="label">Shifts / day</div><div class="value">{{round1 .Report.Shifts.PerDayMean}}</div></div>
</div>
{{if .Report.ShiftCategories}}
<table class="sortable">
<thead><tr><th>Category</th><th>Shifts</th><th>Hours</th></tr></thead>
<tbody>{{range .Report.ShiftCategories}}<tr><td>{{.Category}}</td><td>{{.Count}}</td><td data-value="{{.Total}}">{{round1 .Total}}</td></tr>{{end}}</tbody>
</table>
{{end}}
</section>

<section>
<h2>Services</h2>
<div class="kpi-grid">
<div class="kpi"><div class="label">Services</div><div class="value">{{.Report.Services.Count}}</div></div>
<div class="kpi"><div class="label">Total km</div><div class="value">{{round1 .Report.Services.KMTotal}}</div></div>
<div class="kpi"><div class="label">Mean km</div><div class="value">{{if .Report.Services.KMMean.Valid}}{{round1 .Report.Services.KMMean.Value}}{{else}}<span class="muted">n/a</span>{{end}}</div></div>
<div class="kpi"><div class="label">Mean duration (min)</div><div class="value">{{if .Report.Services.DurationMeanMin.Valid}}{{round1 .Report.Services.DurationMeanMin.Value}}{{else}}<span class="muted">n/a</span>{{end}}</div></div>
<div class="kpi"><div class="label">Emergency / other</div><div class="value">{{.Report.EmergencySplit.Matched}} / {{.Report.EmergencySplit.Rest}}</div></div>
</div>
{{if .Report.ServiceCategories}}
<table class="sortable">
<thead><tr><th>Category</th><th>Services</th><th>Minutes</th></tr></thead>
<tbody>{{range .Report.ServiceCategories}}<tr><td>{{.Category}}</td><td>{{.Count}}</td><td data-value="{{.Total}}">{{round1 .Total}}</td></tr>{{end}}</tbody>
</table>
{{end}}
{{if .Report.Weekdays}}
<table>
<thead><tr><th>Weekday</th><th>Services</th></tr></thead>
<tbody>{{range .Report.Weekdays}}<tr><td>{{.Weekday}}</td><td>{{.Count}}</td></tr>{{end}}</tbody>
</table>
{{end}}
</section>

{{if .Report.Correlation}}
<section>
<h2>Roster / Dispatch Correlation</h2>
<p>Coverage: {{round1 .Report.Correlation.CoveragePct}}% of services fall inside a matching shift window
({{.Report.Correlation.MatchedServices}} of {{.Report.Correlation.TotalServices}}).
{{if .Report.Correlation.Unreliable}}<strong>Span exceeds the reliable window; treat as indicative only.</strong>{{end}}</p>
<table class="sortable">
<thead><tr><th>Date</th><th>Shifts</th><th>Services</th><th>Ratio</th></tr></thead>
<tbody>{{range .Report.Correlation.Days}}<tr>
<td data-value="{{.Date.Unix}}">{{.Date.Format "2006-01-02"}}</td>
<td>{{.ShiftCount}}</td>
<td>{{.ServiceCount}}</td>
<td>{{if .Ratio.Valid}}{{round1 .Ratio.Value}}{{else}}<span class="muted">n/a</span>{{end}}</td>
</tr>{{end}}</tbody>
</table>
</section>
{{end}}

<footer>Run {{.Report.RunID}} generated {{.Report.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</footer>
<script>{{.Script}}</script>
</body>
</html>
`))

// RenderHTML builds the single-file HTML report for a computed result.
func RenderHTML(report *dashboard.Report) (string, error) {
	script, err := minifyScript(reportScript)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	data := struct {
		Report *dashboard.Report
		Style  template.CSS
		Script template.JS
	}{
		Report: report,
		Style:  template.CSS(reportStyle),
		Script: template.JS(script),
	}
	if err := reportTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return sb.String(), nil
}

func minifyScript(src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: true,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("minify report script: %s", result.Errors[0].Text)
	}
	return string(result.Code), nil
}
