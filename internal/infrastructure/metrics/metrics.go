package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"storefront/pkg/config"
	"storefront/pkg/logger"
)

// AppMetrics holds every instrument the service records. A nil *AppMetrics
// is valid and records nothing.
type AppMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	OrdersCreated      metric.Int64Counter
	RevenueTotal       metric.Float64Counter
	OrderStatusChanges metric.Int64Counter

	NotificationsPublished metric.Int64Counter
	NotificationsDropped   metric.Int64Counter
	ActiveConnections      metric.Int64UpDownCounter

	ChatMessages  metric.Int64Counter
	ReviewChanges metric.Int64Counter

	serviceName string
}

// InitMetrics wires an OTLP/HTTP exporter when an endpoint is configured and
// falls back to a no-op meter otherwise. The returned shutdown flushes
// pending exports.
func InitMetrics(ctx context.Context, cfg *config.Config) (*AppMetrics, func(context.Context) error, error) {
	if cfg.OTELExporterOTLPEndpoint == "" {
		logger.Info("Metrics exporter disabled: OTEL_EXPORTER_OTLP_ENDPOINT not set")
		m, err := New(noop.NewMeterProvider().Meter(cfg.OTELServiceName), cfg.OTELServiceName)
		return m, func(context.Context) error { return nil }, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			semconv.ServiceInstanceID(cfg.InstanceID),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))),
	)
	otel.SetMeterProvider(provider)

	m, err := New(provider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Metrics exporting every 10s to %s/v1/metrics", cfg.OTELExporterOTLPEndpoint)
	return m, provider.Shutdown, nil
}

// New creates the instruments on meter.
func New(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	// milliseconds
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000}

	m := &AppMetrics{serviceName: serviceName}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}
	if m.HTTPRequestsErrors, err = meter.Int64Counter("http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...)); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}
	if m.OrdersCreated, err = meter.Int64Counter("orders_created_total",
		metric.WithDescription("Total number of orders created"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create orders counter: %w", err)
	}
	if m.RevenueTotal, err = meter.Float64Counter("revenue_total",
		metric.WithDescription("Total value of orders placed"), metric.WithUnit("USD")); err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}
	if m.OrderStatusChanges, err = meter.Int64Counter("order_status_changes_total",
		metric.WithDescription("Order state transitions by target status"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create order status counter: %w", err)
	}
	if m.NotificationsPublished, err = meter.Int64Counter("notifications_published_total",
		metric.WithDescription("Events published to rooms"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create notifications counter: %w", err)
	}
	if m.NotificationsDropped, err = meter.Int64Counter("notifications_dropped_total",
		metric.WithDescription("Events dropped because a subscriber queue was full"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create dropped notifications counter: %w", err)
	}
	if m.ActiveConnections, err = meter.Int64UpDownCounter("websocket_connections_active",
		metric.WithDescription("Open WebSocket connections"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create connections gauge: %w", err)
	}
	if m.ChatMessages, err = meter.Int64Counter("chat_messages_total",
		metric.WithDescription("Support chat messages posted"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create chat messages counter: %w", err)
	}
	if m.ReviewChanges, err = meter.Int64Counter("review_changes_total",
		metric.WithDescription("Review additions, edits and removals"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create review counter: %w", err)
	}

	return m, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(append(attrs, attribute.String("service.name", m.serviceName))...)
}

func (m *AppMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	opt := m.WithServiceName(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, opt)
	if status >= 400 {
		m.HTTPRequestsErrors.Add(ctx, 1, opt)
	}
	m.HTTPRequestDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *AppMetrics) RecordOrderCreated(ctx context.Context, paymentMethod string, amount float64) {
	if m == nil {
		return
	}
	opt := m.WithServiceName(attribute.String("payment_method", paymentMethod))
	m.OrdersCreated.Add(ctx, 1, opt)
	m.RevenueTotal.Add(ctx, amount, opt)
}

func (m *AppMetrics) RecordOrderStatusChange(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.OrderStatusChanges.Add(ctx, 1, m.WithServiceName(attribute.String("status", status)))
}

func (m *AppMetrics) RecordNotificationPublished(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.NotificationsPublished.Add(ctx, 1, m.WithServiceName(attribute.String("event", event)))
}

func (m *AppMetrics) RecordNotificationDropped(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.NotificationsDropped.Add(ctx, 1, m.WithServiceName(attribute.String("event", event)))
}

func (m *AppMetrics) ConnectionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveConnections.Add(ctx, 1, m.WithServiceName())
}

func (m *AppMetrics) ConnectionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveConnections.Add(ctx, -1, m.WithServiceName())
}

func (m *AppMetrics) RecordChatMessage(ctx context.Context, isAdmin bool) {
	if m == nil {
		return
	}
	m.ChatMessages.Add(ctx, 1, m.WithServiceName(attribute.Bool("is_admin", isAdmin)))
}

// RecordReviewChange records a review mutation; action is added, updated or removed.
func (m *AppMetrics) RecordReviewChange(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.ReviewChanges.Add(ctx, 1, m.WithServiceName(attribute.String("action", action)))
}
