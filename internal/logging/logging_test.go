package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	custom := slog.New(slog.NewTextHandler(buf, nil))

	t.Run("with logger in context", func(t *testing.T) {
		got := FromContext(NewContextWithLogger(context.Background(), custom))
		got.Info("scoped logger test")
		if !strings.Contains(buf.String(), "scoped logger test") {
			t.Errorf("expected the context logger to be returned, buffer: %s", buf.String())
		}
	})

	t.Run("without logger in context falls back to default", func(t *testing.T) {
		got := FromContext(context.Background())
		if got == nil {
			t.Fatal("expected non-nil fallback logger")
		}
	})
}

func TestRequestLogger_AttachesRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))

	handler := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("handler executed")
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/restaurants", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	output := buf.String()
	if !strings.Contains(output, "handler executed") {
		t.Errorf("expected handler log line, got: %s", output)
	}
	if !strings.Contains(output, `"request_id":`) || strings.Contains(output, `"request_id":""`) {
		t.Errorf("expected a non-empty request_id field, got: %s", output)
	}
}

// logLine builds a LogBuilder against a JSON buffer and decodes the
// single entry it writes.
func logLine(t *testing.T, build func(b *LogBuilder)) map[string]any {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))

	build(With(logger))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log entry %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogBuilder_DomainFields(t *testing.T) {
	entry := logLine(t, func(b *LogBuilder) {
		b.Layer("routes").Op("selectRestaurant").User("u1").
			Restaurant("r42").Period("week").Info("selection received")
	})

	want := map[string]string{
		"layer":         "routes",
		"operation":     "selectRestaurant",
		"user_id":       "u1",
		"restaurant_id": "r42",
		"period":        "week",
		"msg":           "selection received",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("entry[%q] = %v, want %q", key, entry[key], value)
		}
	}
}

func TestLogBuilder_Err(t *testing.T) {
	entry := logLine(t, func(b *LogBuilder) {
		b.Layer("api").Err(errors.New("remote down")).Warn("menu fetch failed")
	})
	if entry[ErrorKey] != "remote down" {
		t.Errorf("expected error field, got %v", entry[ErrorKey])
	}
	if entry["level"] != "WARN" {
		t.Errorf("expected WARN level, got %v", entry["level"])
	}

	entry = logLine(t, func(b *LogBuilder) {
		b.Err(nil).Info("nothing wrong")
	})
	if _, present := entry[ErrorKey]; present {
		t.Error("expected nil error to add no field")
	}
}

func TestLogBuilder_TypedFields(t *testing.T) {
	entry := logLine(t, func(b *LogBuilder) {
		b.Str("city", "Espoo").Int("count", 7).Bool("favourite", true).Error("filter failed")
	})

	if entry["city"] != "Espoo" {
		t.Errorf("expected city field, got %v", entry["city"])
	}
	if entry["count"] != float64(7) {
		t.Errorf("expected count field, got %v", entry["count"])
	}
	if entry["favourite"] != true {
		t.Errorf("expected favourite field, got %v", entry["favourite"])
	}
	if entry["level"] != "ERROR" {
		t.Errorf("expected ERROR level, got %v", entry["level"])
	}
}

func TestLog_UsesContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	ctx := NewContextWithLogger(context.Background(), logger)

	Log(ctx).Layer("favourites").Restaurant("r1").Info("toggle applied")

	output := buf.String()
	if !strings.Contains(output, `"restaurant_id":"r1"`) {
		t.Errorf("expected restaurant_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"layer":"favourites"`) {
		t.Errorf("expected layer in output, got: %s", output)
	}
}
