package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	meta := NewMeta("config get", "test")
	if err := WriteSuccess(&buf, meta, map[string]any{"key": "color"}); err != nil {
		t.Fatalf("WriteSuccess err=%v", err)
	}
	var payload SuccessEnvelope
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal err=%v", err)
	}
	if !payload.Ok || payload.Meta.Command != "config get" || payload.Meta.SchemaVersion != SchemaVersion {
		t.Fatalf("unexpected envelope: %+v", payload)
	}
}

func TestWriteErrorDefaults(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteError(&buf, NewMeta("serve", ""), ErrorBody{ExitCode: 2}); err != nil {
		t.Fatalf("WriteError err=%v", err)
	}
	var payload ErrorEnvelope
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal err=%v", err)
	}
	if payload.Ok {
		t.Fatalf("expected ok false")
	}
	if payload.Error.Code != "unknown" || payload.Error.Message != "unknown error" || payload.Error.ExitCode != 2 {
		t.Fatalf("unexpected error body: %+v", payload.Error)
	}
}

func TestWriteErrorKeepsDetails(t *testing.T) {
	var buf bytes.Buffer
	body := ErrorBody{
		Code:     CodeUsage,
		Message:  "missing required argument \"port\"",
		ExitCode: 2,
		Details:  map[string]any{"missing": []string{"port"}},
	}
	if err := WriteError(&buf, NewMeta("serve", "1.0.0"), body); err != nil {
		t.Fatalf("WriteError err=%v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"missing":["port"]`)) || !bytes.Contains(buf.Bytes(), []byte(`"exit_code":2`)) {
		t.Fatalf("unexpected json: %s", buf.String())
	}
}

func TestWriteErrorPropagatesWriteFailure(t *testing.T) {
	if err := WriteError(errWriter{}, NewMeta("x", ""), ErrorBody{Code: CodeInternal}); err == nil {
		t.Fatalf("expected write error")
	}
}

func TestWithDuration(t *testing.T) {
	meta := WithDuration(NewMeta("x", ""), time.Now().Add(-2*time.Second))
	if meta.DurationMS <= 0 {
		t.Fatalf("expected duration > 0, got %f", meta.DurationMS)
	}
}
