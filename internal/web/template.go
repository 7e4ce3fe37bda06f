package web

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"span": func(d time.Duration) string {
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
<title>Dogfood Timer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.warn { color: #b8860b; font-weight: bold; }
.critical { color: red; font-weight: bold; }
.alarm { color: red; font-weight: bold; animation: blink 1s step-start infinite; }
.raised { color: #888; }
.lowered { color: green; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
@keyframes blink { 50% { opacity: 0; } }
</style>
</head>
<body{{if .LiveBroker}} data-broker="{{.LiveBroker}}" data-topic="{{.EventTopic}}"{{end}}>
<h1>Dogfood Timer{{if .LiveBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>State</h2>
<table>
<tr><th>Lid</th><td id="lid-state" class="{{.LidClass}}">{{.Lid}}</td></tr>
<tr><th>Severity</th><td id="severity" class="{{.Severity}}">{{.Severity}}</td></tr>
<tr><th>Closed for</th><td id="elapsed">{{span .Elapsed}}</td></tr>
<tr><th>Alarm</th><td id="alarm">{{if .AlarmActive}}active (next beep interval {{span .AlarmInterval}}){{else}}idle{{end}}</td></tr>
<tr><th>Undo history</th><td>{{.HistoryDepth}} of {{.HistoryCap}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Counters</h2>
<table>
<tr><th>Lid raised</th><td>{{.Counts.Raised}}</td></tr>
<tr><th>Undos</th><td>{{.Counts.Undos}}</td></tr>
<tr><th>Snoozes</th><td>{{.Counts.Snoozes}}</td></tr>
<tr><th>Alarm triggers</th><td>{{.Counts.AlarmTriggers}}</td></tr>
<tr><th>Sensor faults</th><td>{{.Counts.SensorFaults}}</td></tr>
<tr><th>Input faults</th><td>{{.Counts.InputFaults}}</td></tr>
<tr><th>Actuator faults</th><td>{{.Counts.ActuatorFaults}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{span .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Warn after</th><td>{{.Config.WarnMs}}ms</td></tr>
<tr><th>Critical after</th><td>{{.Config.CriticalMs}}ms</td></tr>
<tr><th>Alarm after</th><td>{{.Config.AlarmMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .LiveBroker}}
<script src="https://unpkg.com/mqtt/dist/mqtt.min.js"></script>
<script>
(function() {
  var broker = document.body.dataset.broker;
  var topic = document.body.dataset.topic;
  var dot = document.getElementById("live-dot");
  var lidEl = document.getElementById("lid-state");
  var sevEl = document.getElementById("severity");
  var alarmEl = document.getElementById("alarm");

  function setLid(state) {
    lidEl.textContent = state;
    lidEl.className = state === "RAISED" ? "raised" : state === "LOWERED" ? "lowered" : "unknown";
  }

  function setSeverity(sev) {
    sevEl.textContent = sev;
    sevEl.className = sev;
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.timer) {
        setLid(msg.timer.lid);
        setSeverity(msg.timer.severity);
        alarmEl.textContent = msg.timer.alarm_active ? "active" : "idle";
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, v pageView) {
	indexTmpl.Execute(w, v)
}
