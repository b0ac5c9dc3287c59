package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/metronome/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Metronome</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.bpm { font-size: 2em; font-weight: bold; }
.running { color: green; font-weight: bold; }
.stopped { color: #888; }
.on { color: green; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Metronome</h1>

<h2>Tempo</h2>
<table>
<tr><th>BPM</th><td class="bpm">{{.Engine.BPM}}</td></tr>
<tr><th>Transport</th><td class="{{if .Engine.Running}}running{{else}}stopped{{end}}">{{if .Engine.Running}}running{{else}}stopped{{end}}</td></tr>
<tr><th>Time Signature</th><td>{{.Engine.TimeSignature}}</td></tr>
<tr><th>Beat</th><td>{{if .Engine.Running}}{{.Engine.BeatPosition}}{{else}}-{{end}}</td></tr>
</table>

<h2>Settings</h2>
<table>
<tr><th>Mode</th><td>{{.Engine.Mode}}</td></tr>
<tr><th>Accent</th><td class="{{if .Engine.AccentEnabled}}on{{else}}off{{end}}">{{if .Engine.AccentEnabled}}on{{else}}off{{end}}</td></tr>
<tr><th>Visual Only</th><td class="{{if .Engine.VisualOnly}}on{{else}}off{{end}}">{{if .Engine.VisualOnly}}on{{else}}off{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Beats</th><td>{{.Counts.Beats}}</td></tr>
<tr><th>Accents</th><td>{{.Counts.Accents}}</td></tr>
<tr><th>Starts</th><td>{{.Counts.Starts}}</td></tr>
<tr><th>Stops</th><td>{{.Counts.Stops}}</td></tr>
<tr><th>Tempo Steps</th><td>{{.Counts.TempoSteps}}</td></tr>
<tr><th>Mode Changes</th><td>{{.Counts.ModeChanges}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Tick Rate</th><td>{{.Config.TickRate}}Hz</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Telemetry</th><td>{{if .Config.TelemetryDB}}{{.Config.TelemetryDB}}{{else}}disabled{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
