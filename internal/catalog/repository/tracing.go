package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/membership-platform/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// GormEventRepositoryWithTracing wraps GormEventRepository with tracing
type GormEventRepositoryWithTracing struct {
	*GormEventRepository
}

// NewGormEventRepositoryWithTracing creates a new repository with tracing
func NewGormEventRepositoryWithTracing(db *gorm.DB) *GormEventRepositoryWithTracing {
	return &GormEventRepositoryWithTracing{
		GormEventRepository: NewGormEventRepository(db),
	}
}

// FindByIDWithContext looks up an event inside a repository span
func (r *GormEventRepositoryWithTracing) FindByIDWithContext(ctx context.Context, id uint) (*domain.Event, error) {
	_, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("event.id", int(id)),
		),
	)
	defer span.End()

	event, err := r.GormEventRepository.FindByID(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("event.title", event.Title),
		attribute.String("event.status", event.Status),
		attribute.Int64("event.base_price_cents", event.BasePriceCents),
	)
	return event, nil
}

// CreateWithContext persists an event inside a repository span
func (r *GormEventRepositoryWithTracing) CreateWithContext(ctx context.Context, event *domain.Event) error {
	_, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("event.title", event.Title),
		),
	)
	defer span.End()

	err := r.GormEventRepository.Create(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("event.id", int(event.ID)))
	return nil
}
