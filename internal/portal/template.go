package portal

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/wifi-clock/internal/logic"
	"github.com/sweeney/wifi-clock/internal/status"
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
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"offsetHours": func(sec int32) string {
		return fmt.Sprintf("%+.1f", float64(sec)/3600)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>WiFi Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
form { margin: 1em 0; }
label { display: block; margin: 6px 0; }
input[type=number], input[type=text], input[type=password] { font-family: monospace; width: 10em; }
button { font-family: monospace; padding: 4px 12px; }
.connected { color: green; }
.disconnected { color: red; }
.danger { color: red; }
</style>
</head>
<body>
<h1>WiFi Clock</h1>

<h2>State</h2>
<table>
<tr><th>Lifecycle</th><td>{{stateOrUnknown (printf "%s" .State)}}</td></tr>
<tr><th>Time synced</th><td>{{if .TimeSynced}}yes{{else}}no{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.SSID}}</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
</table>

<h2>Clock Settings</h2>
<form method="post" action="/settings">
<label>Brightness (0-15) <input type="number" name="brightness" min="0" max="15" value="{{.Clock.Brightness}}"></label>
<label><input type="checkbox" name="hour24" {{if .Clock.Hour24}}checked{{end}}> 24-hour format</label>
<label>UTC offset (seconds, now {{offsetHours .Clock.UTCOffsetSec}}h) <input type="number" name="utc_offset_sec" step="900" value="{{.Clock.UTCOffsetSec}}"></label>
<label>DST offset (seconds) <input type="number" name="dst_offset_sec" step="900" value="{{.Clock.DSTOffsetSec}}"></label>
<button type="submit">Save</button>
</form>

<h2>WiFi</h2>
<form method="post" action="/wifi">
<label>Network name <input type="text" name="ssid" required></label>
<label>Password <input type="password" name="password"></label>
<button type="submit">Connect</button>
</form>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>NTP</th><td>{{.Config.NTPHost}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
</table>

<form method="post" action="/reset" onsubmit="return confirm('Erase all settings and saved WiFi?')">
<button type="submit" class="danger">Factory reset</button>
</form>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, clock logic.Settings) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Clock  logic.Settings
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Clock:    clock,
	}
	indexTmpl.Execute(w, data)
}
