package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Init(context.Background(), Config{Enabled: false, Exporter: ExporterStdout})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	shutdown, err = Init(context.Background(), Config{Enabled: true, Exporter: ExporterNone})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	t.Parallel()

	_, err := Init(context.Background(), Config{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
}

// Not parallel: installs the global tracer provider.
func TestInit_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		Enabled:     true,
		Exporter:    ExporterStdout,
		ServiceName: "swot-test",
		Writer:      &buf,
	})
	require.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "analyze")
	RecordError(ctx, errors.New("boom"))
	RecordError(ctx, nil)
	span.End()

	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), `"Name":"analyze"`)
	require.Contains(t, buf.String(), "swot-test")
	require.Contains(t, buf.String(), "boom")
}
