// Package render turns page contexts into the HTML document and prints it
// to PDF through headless Chromium.
package render

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/agenda"
)

// reMarkable 2 paper size in inches (157mm x 210mm).
const (
	paperWidthIn  = 6.18
	paperHeightIn = 8.27

	defaultPrintTimeout = 60 * time.Second
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

// WriteHTML renders the full multi-page document to path.
func WriteHTML(path string, contexts []agenda.PageContext) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render: output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create html: %w", err)
	}
	defer f.Close()

	if err := dashboardTmpl.Execute(f, contexts); err != nil {
		return fmt.Errorf("render: execute template: %w", err)
	}
	return nil
}

// PrintPDF loads the rendered HTML in headless Chromium and prints it to
// pdfPath at the tablet's paper size.
func PrintPDF(parentCtx context.Context, htmlPath, pdfPath string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultPrintTimeout
	}

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("render: resolve html path: %w", err)
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("file://" + abs),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("render: chromedp run failed: %w", err)
	}
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return fmt.Errorf("render: write pdf: %w", err)
	}
	return nil
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { margin: 0; }
  body { font-family: Georgia, serif; margin: 0; color: #111; }
  .page { padding: 28px 32px; page-break-after: always; box-sizing: border-box; }
  .page:last-child { page-break-after: avoid; }
  h1 { font-size: 20px; border-bottom: 2px solid #111; padding-bottom: 6px; margin: 0 0 10px; }
  .epigraph { font-style: italic; font-size: 13px; margin: 8px 0 12px; }
  .epigraph .author { font-style: normal; font-size: 12px; }
  .weather { font-size: 13px; margin-bottom: 12px; }
  .weather div { margin: 2px 0; }
  .section { font-size: 14px; font-weight: bold; margin: 14px 0 6px; text-transform: uppercase; letter-spacing: 1px; }
  .continuation { font-size: 12px; font-style: italic; margin: 14px 0 6px; }
  .event { font-size: 14px; margin: 6px 0; }
  .event .time { display: inline-block; min-width: 92px; font-variant-numeric: tabular-nums; }
  .event .loc { font-size: 12px; color: #444; }
  .task { font-size: 14px; margin: 7px 0; }
  .task:before { content: "\2610  "; }
  .notes-line { border-bottom: 1px solid #999; height: 34px; }
  .footer { position: relative; margin-top: 18px; font-size: 10px; color: #555; display: flex; justify-content: space-between; }
</style>
</head>
<body>
{{range .}}
<div class="page">
  {{if eq .Day "today"}}<h1>{{if .IsNotesPage}}Notes &mdash; {{end}}{{.TodayHeader}}</h1>{{else}}<h1>{{if .IsNotesPage}}Notes &mdash; {{end}}{{.TomorrowHeader}}</h1>{{end}}

  {{with .Epigraph}}
  <div class="epigraph">&ldquo;{{.Quote}}&rdquo;{{if .Author}} <span class="author">&mdash; {{.Author}}</span>{{end}}</div>
  {{end}}

  {{if .Weather}}
  <div class="weather">
    {{range .Weather}}<div>{{.Location}} {{.Narrative}}</div>{{end}}
  </div>
  {{end}}

  {{if .IsNotesPage}}
    {{range $i := .NotesLines}}<div class="notes-line"></div>{{end}}
  {{else}}
    {{if .ShowEventsHeader}}<div class="section">Events</div>{{end}}
    {{if .IsOverflowEvents}}<div class="continuation">{{.EventsContinuation}}</div>{{end}}
    {{range .Events}}
    <div class="event"><span class="time">{{.DisplayTime}}</span> {{.Icon}} {{.Summary}}{{if .Location}} <span class="loc">({{.Location}})</span>{{end}}</div>
    {{end}}

    {{if .ShowTasksHeader}}<div class="section">Tasks</div>{{end}}
    {{if .IsOverflowTasks}}<div class="continuation">{{.TasksContinuation}}</div>{{end}}
    {{range .Tasks}}
    <div class="task">{{.}}</div>
    {{end}}
  {{end}}

  <div class="footer">
    <span>Updated {{.LastUpdated}}</span>
    <span>Page {{.PageNumber}} / {{.TotalPages}}</span>
  </div>
</div>
{{end}}
</body>
</html>
`
