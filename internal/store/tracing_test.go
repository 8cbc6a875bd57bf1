package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/event-registration-server/internal/registration"
	"github.com/stacklok/event-registration-server/internal/store/mocks"
)

func TestWithTracing_NilProvider(t *testing.T) {
	t.Parallel()

	inner := NewMemoryStore()
	assert.Same(t, inner, WithTracing(inner, nil, "memory"))
}

func TestWithTracing_Spans(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := mocks.NewMockStore(ctrl)

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s := WithTracing(inner, tp, "file")
	ctx := context.Background()

	inner.EXPECT().LoadAll(gomock.Any()).Return([]registration.Record{{Email: "a@b.c"}}, nil)
	inner.EXPECT().Append(gomock.Any(), gomock.Any()).Return(ErrDuplicateEmail)
	inner.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	require.ErrorIs(t, s.Append(ctx, registration.Record{}), ErrDuplicateEmail)
	require.Error(t, s.Append(ctx, registration.Record{}))

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "store.LoadAll", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
	assert.Equal(t, codes.Error, spans[2].Status.Code)
}
