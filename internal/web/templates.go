package web

import "html/template"

type sortHeader struct {
	Column string
	Label  string
}

var sortHeaders = []sortHeader{
	{"name", "Name"},
	{"phoneNumber", "Phone Number"},
	{"aiModel", "AI Model"},
	{"feedback", "Feedback"},
	{"flaggedDate", "Start Time"},
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"columns": func() []sortHeader { return sortHeaders },
	"add":     func(a, b int) int { return a + b },
}).Parse(tmplDashboard))

const tmplDashboard = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Telecaller Dashboard</title>
</head>
<body>
<h1>AI Telecaller Dashboard</h1>

<section>
  <h2>Automation</h2>
  <p>
    {{if .Automation.Online}}
      Online — calling {{.Automation.Doctor}} ({{.Automation.PhoneNumber}})
    {{else}}
      Offline
    {{end}}
  </p>
  <form method="post" action="/automation/toggle">
    <button type="submit">{{if .Automation.Online}}Stop automation{{else}}Start automation{{end}}</button>
  </form>
</section>

{{if .FormOpen}}
<section>
  {{if .CallState.Active}}
    <h2>{{.CallLabel}}</h2>
    <p>{{.CallDetail}}</p>
  {{else if .CallState.Terminal}}
    <h2>{{.CallLabel}}</h2>
    <p>{{.CallDetail}}</p>
    <form method="post" action="/form/close"><button type="submit">Close</button></form>
  {{else}}
    <h2>Place a call</h2>
    <form method="post" action="/calls">
      <label>Name: <input type="text" name="name" required></label>
      <label>Phone Number: <input type="text" name="phone_number" required></label>
      <label>AI Model:
        <select name="ai_model">
          <option value="Zach">Zach</option>
          <option value="Sophia">Sophia</option>
        </select>
      </label>
      <button type="submit">Call</button>
    </form>
    <form method="post" action="/form/close"><button type="submit">Close</button></form>
  {{end}}
</section>
{{else}}
<form method="post" action="/form/open"><button type="submit">New call</button></form>
{{end}}

{{if .ModalOpen}}{{with .Recording}}
<section>
  <h2>Recording</h2>
  {{if .RecordingLink}}<p><a href="{{.RecordingLink}}">Recording</a></p>{{end}}
  {{if .Transcription}}<h3>Transcription:</h3><p>{{.Transcription}}</p>{{end}}
  <form method="post" action="/recordings/close"><button type="submit">Close</button></form>
</section>
{{end}}{{end}}

<section>
  <h2>Call Log</h2>
  <table>
    <thead>
      <tr>
        <th>#</th>
        {{range columns}}
        <th>
          <form method="post" action="/logs/sort">
            <input type="hidden" name="column" value="{{.Column}}">
            <button type="submit">{{.Label}}</button>
          </form>
        </th>
        {{end}}
        <th>Recording</th>
      </tr>
    </thead>
    <tbody>
      {{if not .Records}}
      <tr><td colspan="7">No call logs found</td></tr>
      {{else}}
      {{range $i, $rec := .Records}}
      <tr>
        <td>{{add $i 1}}</td>
        <td>{{$rec.Name}}</td>
        <td>{{$rec.PhoneNumber}}</td>
        <td>{{$rec.AIModel}}</td>
        <td>{{$rec.Feedback}}</td>
        <td>{{$rec.FlaggedDate}}</td>
        <td>
          <form method="post" action="/recordings/open">
            <input type="hidden" name="id" value="{{$rec.ID}}">
            <button type="submit">&#9654;</button>
          </form>
        </td>
      </tr>
      {{end}}
      {{end}}
    </tbody>
  </table>
</section>
</body>
</html>`
