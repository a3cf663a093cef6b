package metrics

import (
	"context"
	"sync"

	"github.com/prohmpiriya/postboard-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	UsersRegistered *telemetry.Counter
	LoginAttempts   *telemetry.Counter
	GuardRejections *telemetry.Counter
	PostMutations   *telemetry.Counter
	EventsDropped   *telemetry.Counter

	initOnce sync.Once
	initErr  error
)

// Init registers all instruments
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	UsersRegistered, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "postboard_users_registered_total",
		Description: "Total number of accounts registered",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	LoginAttempts, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "postboard_login_attempts_total",
		Description: "Login attempts by outcome",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	GuardRejections, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "postboard_guard_rejections_total",
		Description: "Requests rejected by the auth guard",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PostMutations, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "postboard_post_mutations_total",
		Description: "Post create, update and delete operations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsDropped, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "postboard_events_dropped_total",
		Description: "Lifecycle events that failed to publish",
		Unit:        "1",
	})
	return err
}

// RecordRegistration counts a new account
func RecordRegistration(ctx context.Context, role string) {
	if UsersRegistered != nil {
		UsersRegistered.Inc(ctx, attribute.String("role", role))
	}
}

// RecordLogin counts a login attempt; outcome is "success" or "failure"
func RecordLogin(ctx context.Context, outcome string) {
	if LoginAttempts != nil {
		LoginAttempts.Inc(ctx, attribute.String("outcome", outcome))
	}
}

// RecordGuardRejection counts a 401/403 from the guard
func RecordGuardRejection(ctx context.Context, reason string) {
	if GuardRejections != nil {
		GuardRejections.Inc(ctx, attribute.String("reason", reason))
	}
}

// RecordPostMutation counts a successful post write
func RecordPostMutation(ctx context.Context, action string) {
	if PostMutations != nil {
		PostMutations.Inc(ctx, attribute.String("action", action))
	}
}

// RecordEventDropped counts a failed publish
func RecordEventDropped(ctx context.Context, eventType string) {
	if EventsDropped != nil {
		EventsDropped.Inc(ctx, attribute.String("event_type", eventType))
	}
}
