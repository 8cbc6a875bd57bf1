package store

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/event-registration-server/internal/otel"
	"github.com/stacklok/event-registration-server/internal/registration"
)

// TracerName is the name of the tracer used by the store decorator
const TracerName = "github.com/stacklok/event-registration-server/store"

type tracingStore struct {
	next    Store
	tracer  trace.Tracer
	backend string
}

// WithTracing wraps next so every operation emits a span tagged with backend.
// A nil provider returns next unchanged.
func WithTracing(next Store, provider trace.TracerProvider, backend string) Store {
	if provider == nil {
		return next
	}
	return &tracingStore{
		next:    next,
		tracer:  provider.Tracer(TracerName),
		backend: backend,
	}
}

func (t *tracingStore) LoadAll(ctx context.Context) ([]registration.Record, error) {
	ctx, span := otel.StartSpan(ctx, t.tracer, "store.LoadAll",
		trace.WithAttributes(otel.AttrStoreBackend.String(t.backend)))
	defer span.End()

	records, err := t.next.LoadAll(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(records)))
	return records, nil
}

func (t *tracingStore) Append(ctx context.Context, rec registration.Record) error {
	ctx, span := otel.StartSpan(ctx, t.tracer, "store.Append",
		trace.WithAttributes(otel.AttrStoreBackend.String(t.backend)))
	defer span.End()

	err := t.next.Append(ctx, rec)
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		span.SetAttributes(otel.AttrDuplicate.Bool(true))
	case err != nil:
		otel.RecordError(span, err)
	}
	return err
}

func (t *tracingStore) Import(ctx context.Context, recs []registration.Record) (int, error) {
	ctx, span := otel.StartSpan(ctx, t.tracer, "store.Import",
		trace.WithAttributes(otel.AttrStoreBackend.String(t.backend)))
	defer span.End()

	added, err := t.next.Import(ctx, recs)
	if err != nil {
		otel.RecordError(span, err)
		return 0, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(added))
	return added, nil
}
