package visual

// pageTemplateString 是预览页面的 HTML 模板。
// #a4-container 是截图目标，#pdf-render-ready 是浏览器端的渲染完成信号。
const pageTemplateString = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{if .Title}}{{.Title}}{{else}}resume{{end}}</title>
<style>
  :root {
    --accent: {{css .Style.Accent}};
    --text: {{css .Style.Text}};
    --muted: {{css .Style.Muted}};
    --rule: {{css .Style.Rule}};
    --sidebar-fill: {{css .Style.SidebarFill}};
    --heading-case: {{css .Style.HeadingCase}};
  }
  html, body { margin: 0; padding: 0; background: white; }
  #a4-container {
    width: {{pageWidth}}px;
    min-height: 1123px;
    box-sizing: border-box;
    padding: 40px 48px;
    font-family: {{css .Style.FontStack}};
    font-size: 10.5pt;
    line-height: 1.45;
    color: var(--text);
    background: white;
  }
  header { margin-bottom: 18px; }
  header.band { background: var(--accent); color: white; margin: -40px -48px 18px; padding: 28px 48px; }
  header.center { text-align: center; }
  header h1 { margin: 0; font-size: 22pt; }
  header .headline { font-size: 12pt; opacity: 0.85; }
  header .contact, header .links { font-size: 9.5pt; }
  header .links a { color: inherit; }
  .columns { display: flex; gap: 24px; }
  .columns main { flex: 2; }
  .columns aside { flex: 1; background: var(--sidebar-fill); padding: 12px; }
  section { margin-bottom: 14px; break-inside: avoid-page; }
  section h2 {
    margin: 0 0 6px;
    padding-bottom: 3px;
    font-size: 11.5pt;
    color: var(--accent);
    text-transform: var(--heading-case);
    border-bottom: 2px solid var(--rule);
  }
  .entry { margin-bottom: 10px; }
  .entry .heading { font-weight: 700; }
  .entry .sub { color: var(--muted); }
  .entry .period { color: var(--muted); font-style: italic; font-size: 9pt; }
  .entry ul { margin: 4px 0 0; padding-left: 18px; }
  .entry .line { font-size: 9.5pt; }
  .inline { margin: 0; }
  .group { margin: 0 0 2px; }
  .group .category { font-weight: 700; }
  a.credential { color: var(--accent); }
</style>
</head>
<body>
<div id="a4-container" data-template="{{.Style.Template}}" data-layout="{{.Layout}}">
{{- with .Header}}
  <header class="{{if $.Style.HeaderBand}}band{{end}} {{if $.Style.CenterHeader}}center{{end}}">
    {{- if .Name}}<h1>{{.Name}}</h1>{{end}}
    {{- if .Headline}}<div class="headline">{{.Headline}}</div>{{end}}
    {{- if .Location}}<div class="location">{{.Location}}</div>{{end}}
    {{- if .Contact}}<div class="contact">{{.ContactLine}}</div>{{end}}
    {{- if .Links}}<div class="links">{{range $i, $l := .Links}}{{if $i}} | {{end}}{{$l.Label}}: <a href="{{$l.URL}}">{{$l.URL}}</a>{{end}}</div>{{end}}
  </header>
{{- end}}
{{- if .TwoColumn}}
  <div class="columns">
    <main>{{range .Main}}{{template "section" .}}{{end}}</main>
    <aside>{{range .Sidebar}}{{template "section" .}}{{end}}</aside>
  </div>
{{- else}}
  <main>{{range .Blocks}}{{template "section" .}}{{end}}</main>
{{- end}}
  <div id="pdf-render-ready"></div>
</div>
</body>
</html>
{{define "section"}}
<section data-kind="{{.Kind}}">
  <h2>{{.Title}}</h2>
  {{- if .Text}}<p class="summary">{{.Text}}</p>{{end}}
  {{- if .Items}}<p class="inline">{{.InlineText}}</p>{{end}}
  {{- range .Groups}}<p class="group"><span class="category">{{.Category}}:</span> {{range $i, $s := .Skills}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{end}}
  {{- range .Entries}}
  <div class="entry {{.Kind}}">
    {{- if .Heading}}<div class="heading">{{.Heading}}</div>{{end}}
    {{- if .Subheading}}<div class="sub">{{.Subheading}}</div>{{end}}
    {{- if .Period}}<div class="period">{{.Period}}</div>{{end}}
    {{- if .Bullets}}<ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>{{end}}
    {{- range .Lines}}<div class="line">{{.}}</div>{{end}}
    {{- with .Link}}
      {{- if .FileBacked}}<a class="credential" href="{{.URL}}" target="_blank" rel="noopener">View Certificate</a>
      {{- else}}<div class="line">{{.Label}}: <a class="credential" href="{{.URL}}" target="_blank" rel="noopener">{{.URL}}</a></div>{{end}}
    {{- end}}
  </div>
  {{- end}}
</section>
{{end}}`
