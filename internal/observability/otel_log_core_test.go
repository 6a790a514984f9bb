package observability

import (
	"errors"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestShouldSkipLog(t *testing.T) {
	if !shouldSkipLog("http request", map[string]any{"path": "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if shouldSkipLog("http request", map[string]any{"path": "/v1/matches/61/anomalies"}) {
		t.Fatalf("did not expect match route log to be skipped")
	}
	if shouldSkipLog("qstash job published", map[string]any{"path": "/healthz"}) {
		t.Fatalf("did not expect non-request event to be skipped")
	}
}

func TestFieldValues_MergesCoreAndEntryFields(t *testing.T) {
	values := fieldValues(
		[]zapcore.Field{zap.String("component", "usecase.anomaly")},
		[]zapcore.Field{zap.Int64("match_id", 61), zap.Error(errors.New("connection refused"))},
	)
	if values["component"] != "usecase.anomaly" {
		t.Fatalf("unexpected component: %+v", values)
	}
	if values["match_id"] != int64(61) {
		t.Fatalf("unexpected match_id: %+v", values["match_id"])
	}
	if values["error"] != "connection refused" {
		t.Fatalf("unexpected error value: %+v", values["error"])
	}
}

func TestBuildOTelLogAttributes_SortedKeys(t *testing.T) {
	attrs := buildOTelLogAttributes(map[string]any{"match_id": int64(61), "alerts": 2, "status": "flagged"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "alerts" || attrs[0].Value.AsInt64() != 2 {
		t.Fatalf("unexpected first attribute %+v", attrs[0])
	}
	if attrs[2].Key != "status" || attrs[2].Value.AsString() != "flagged" {
		t.Fatalf("unexpected last attribute %+v", attrs[2])
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{"RW": 4, "RM": 1}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if len(v.AsMap()) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(v.AsMap()))
	}
}

func TestToOTelSeverity(t *testing.T) {
	if toOTelSeverity(zapcore.WarnLevel) != otellog.SeverityWarn {
		t.Fatalf("unexpected warn severity")
	}
	if toOTelSeverity(zapcore.ErrorLevel) != otellog.SeverityError {
		t.Fatalf("unexpected error severity")
	}
}
