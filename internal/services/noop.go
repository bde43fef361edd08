package services

import (
	"context"

	"github.com/aerox-airport/lost-luggage/internal/models"
)

// DisabledPublisher stands in for the event publisher when no broker is
// configured or reachable at startup. Report CRUD must not depend on the
// broker being available.
type DisabledPublisher struct{}

func (DisabledPublisher) LostSubmitted(context.Context, models.LostReportSubmitted) error    { return nil }
func (DisabledPublisher) FoundSubmitted(context.Context, models.FoundReportSubmitted) error  { return nil }
func (DisabledPublisher) LostStatusChanged(context.Context, models.LostStatusChanged) error  { return nil }
func (DisabledPublisher) FoundStatusChanged(context.Context, models.FoundStatusChanged) error { return nil }
func (DisabledPublisher) HealthCheck() error                                                 { return nil }
func (DisabledPublisher) Close() error                                                       { return nil }
