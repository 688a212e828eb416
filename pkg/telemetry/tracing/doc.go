/*
Package tracing sets up OpenTelemetry tracing for statusboard.

When telemetry.tracing.enabled is true, New installs an SDK tracer provider
that exports spans over OTLP/gRPC and registers the W3C trace context
propagator. Otherwise the provider is a no-op and spans cost almost nothing.

	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, version)
	if err != nil {
		return err
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(ctx, "responder.respond")
	defer span.End()

Spans

The HTTP middleware opens one server span per request, named after the chi
route pattern. The responder opens a child span per rendered reply carrying
the device name, render ID and whether the reply fell back to raw template
text. Render failures set the span status to Error and add the MHPL error
kind as statusboard.error.kind.

Sampling

	always  every trace
	never   no traces
	ratio   telemetry.tracing.sample_ratio of new traces

Every sampler is parent based, so an incoming sampled traceparent header is
honoured.
*/
package tracing
