package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
)

// Span attribute keys.
const (
	AttrDevice        = attribute.Key("statusboard.device")
	AttrRenderID      = attribute.Key("statusboard.render_id")
	AttrFallback      = attribute.Key("statusboard.render.fallback")
	AttrTemplateBytes = attribute.Key("statusboard.template.bytes")
	AttrReplyBytes    = attribute.Key("statusboard.reply.bytes")
	AttrErrorKind     = attribute.Key("statusboard.error.kind")
	AttrDevicesAlive  = attribute.Key("statusboard.devices.alive")
	AttrDevicesDead   = attribute.Key("statusboard.devices.dead")

	AttrHTTPMethod = attribute.Key("http.request.method")
	AttrHTTPRoute  = attribute.Key("http.route")
	AttrHTTPStatus = attribute.Key("http.response.status_code")
	AttrURLPath    = attribute.Key("url.path")
)

// SetRender records the outcome of one template render on span.
func SetRender(span trace.Span, renderID, device string, templateLen, replyLen int, fallback bool) {
	span.SetAttributes(
		AttrRenderID.String(renderID),
		AttrDevice.String(device),
		AttrTemplateBytes.Int(templateLen),
		AttrReplyBytes.Int(replyLen),
		AttrFallback.Bool(fallback),
	)
}

// SetError records err on span and marks it failed. MHPL failures also carry
// their kind.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if kind := mhplErrors.KindOf(err); kind != "" {
		span.SetAttributes(AttrErrorKind.String(string(kind)))
	}
}

// SetOK marks span successful.
func SetOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
