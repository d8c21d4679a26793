package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	portalauth "github.com/rojgarlink/portalauth"
)

type metricsSource interface {
	MetricsSnapshot() portalauth.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	ID   portalauth.MetricID
	Name string
	Help string
}

// counterDefs fixes the render order; additions go at the end.
var counterDefs = []counterDef{
	{portalauth.MetricLoginSuccess, "portalauth_login_success_total", "Successful logins across all portals."},
	{portalauth.MetricLoginFailure, "portalauth_login_failure_total", "Failed password logins and OTP starts."},
	{portalauth.MetricVerifySuccess, "portalauth_verify_success_total", "Successful OTP verifications."},
	{portalauth.MetricVerifyFailure, "portalauth_verify_failure_total", "Failed OTP verifications."},
	{portalauth.MetricPortalRejected, "portalauth_portal_rejected_total", "Logins rejected by portal eligibility rules."},
	{portalauth.MetricLogout, "portalauth_logout_total", "Explicit logouts."},
	{portalauth.MetricSessionExpired, "portalauth_session_expired_total", "Sessions ended by token expiration."},
	{portalauth.MetricExpirationWarning, "portalauth_expiration_warning_total", "Expiration warnings delivered to the user."},
	{portalauth.MetricHydrateSuccess, "portalauth_hydrate_success_total", "Session hydrations that restored credentials."},
	{portalauth.MetricHydrateEmpty, "portalauth_hydrate_empty_total", "Session hydrations that found no credentials."},
	{portalauth.MetricAgencyCreated, "portalauth_agency_created_total", "Agencies provisioned."},
	{portalauth.MetricAgencyCreationFailure, "portalauth_agency_creation_failure_total", "Failed agency provisioning attempts."},
	{portalauth.MetricStaleLoginDiscarded, "portalauth_stale_login_discarded_total", "Login responses discarded because the session was superseded."},
	{portalauth.MetricRoleOverride, "portalauth_role_override_total", "Development-mode role overrides."},
	{portalauth.MetricNotificationSuppressed, "portalauth_notification_suppressed_total", "Notifications suppressed by the debounce window."},
}

// Exporter renders portalauth metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter that reads from the given [portalauth.Engine].
func NewExporter(engine *portalauth.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource creates an exporter from a custom metrics source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (p *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render writes the current metrics in Prometheus text exposition format.
func (p *Exporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range counterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}

	writeCounter(&b, "portalauth_audit_dropped_total", "Dropped audit events due to dispatcher backpressure.", dropped)

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
