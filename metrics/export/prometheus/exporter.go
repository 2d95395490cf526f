package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	sessauth "github.com/sessauth/sessauth"
)

type metricsSource interface {
	MetricsSnapshot() sessauth.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	id   sessauth.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{id: sessauth.MetricLoginSuccess, name: "sessauth_login_success_total", help: "Successful login operations."},
	{id: sessauth.MetricLoginFailure, name: "sessauth_login_failure_total", help: "Rejected login requests."},
	{id: sessauth.MetricVerifySuccess, name: "sessauth_verify_success_total", help: "Tokens accepted by verification."},
	{id: sessauth.MetricVerifyFailure, name: "sessauth_verify_failure_total", help: "Tokens rejected by verification."},
	{id: sessauth.MetricRefreshSuccess, name: "sessauth_refresh_success_total", help: "Successful token refreshes."},
	{id: sessauth.MetricRefreshFailure, name: "sessauth_refresh_failure_total", help: "Rejected token refreshes."},
	{id: sessauth.MetricLogout, name: "sessauth_logout_total", help: "Logout operations, including idempotent repeats."},
}

// Exporter renders engine metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter that reads from the given [sessauth.Engine].
func NewExporter(engine *sessauth.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource creates an exporter from a custom source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler serving the current metrics.
func (p *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render writes the current counters in Prometheus text exposition format.
func (p *Exporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()

	var b strings.Builder
	b.Grow(2048)

	for _, def := range counterDefs {
		writeCounter(&b, def.name, def.help, snapshot.Counters[def.id])
	}

	writeCounter(&b, "sessauth_audit_dropped_total", "Dropped audit events due to dispatcher backpressure.", dropped)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
