package metrics

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(io.Discard) })
	return &buf
}

func TestNew_DefaultDimension(t *testing.T) {
	SetDefaultDimension("Backend", "sqlite")
	t.Cleanup(func() {
		mu.Lock()
		delete(defaultDims, "Backend")
		mu.Unlock()
	})

	r := New("TestNamespace")
	if r.namespace != "TestNamespace" {
		t.Errorf("expected namespace TestNamespace, got %s", r.namespace)
	}
	if r.dimensions["Backend"] != "sqlite" {
		t.Errorf("expected Backend dimension sqlite, got %s", r.dimensions["Backend"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	buf := captureOutput(t)

	rec := New(Namespace)
	rec.Dimension("Step", "quiz")
	rec.Metric("LatencyMs", 1234.5, UnitMilliseconds)
	rec.Metric("CallCount", 1, UnitCount)
	rec.Property("cycle", "abc-123")
	rec.Flush()

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	awsMap, ok := doc["_aws"].(map[string]interface{})
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}
	cwArr, ok := awsMap["CloudWatchMetrics"].([]interface{})
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}
	cw := cwArr[0].(map[string]interface{})
	if cw["Namespace"] != "EduStudio" {
		t.Errorf("expected namespace EduStudio, got %v", cw["Namespace"])
	}

	if doc["Step"] != "quiz" {
		t.Errorf("expected Step=quiz, got %v", doc["Step"])
	}
	if doc["LatencyMs"] != 1234.5 {
		t.Errorf("expected LatencyMs=1234.5, got %v", doc["LatencyMs"])
	}
	if doc["CallCount"] != float64(1) {
		t.Errorf("expected CallCount=1, got %v", doc["CallCount"])
	}
	if doc["cycle"] != "abc-123" {
		t.Errorf("expected cycle=abc-123, got %v", doc["cycle"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	buf := captureOutput(t)

	New("Test").Flush()

	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recorder, got: %s", buf.String())
	}
}

func TestRecorder_Chaining(t *testing.T) {
	rec := New("Test").
		Dimension("Op", "test").
		Metric("Duration", 100, UnitMilliseconds).
		Count("Calls").
		Property("id", "xyz")

	if rec.dimensions["Op"] != "test" {
		t.Error("chaining Dimension failed")
	}
	if rec.values["Duration"] != float64(100) {
		t.Error("chaining Metric failed")
	}
	if rec.values["Calls"] != float64(1) {
		t.Error("chaining Count failed")
	}
	if m := rec.metrics["Calls"]; m.Unit != UnitCount {
		t.Errorf("expected unit Count, got %v", m.Unit)
	}
	if rec.properties["id"] != "xyz" {
		t.Error("chaining Property failed")
	}
}

func TestRecordStep(t *testing.T) {
	buf := captureOutput(t)

	RecordStep("persist", ResultTimeout, 1500*time.Millisecond)

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid EMF line: %v", err)
	}
	if doc["Step"] != "persist" || doc["Result"] != "timeout" {
		t.Errorf("unexpected dimensions: %v", doc)
	}
	if doc["StepLatencyMs"] != float64(1500) {
		t.Errorf("expected StepLatencyMs=1500, got %v", doc["StepLatencyMs"])
	}
}
