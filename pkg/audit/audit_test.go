package audit

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func fixedLogger(buf *bytes.Buffer) *Logger {
	logger := NewLogger()
	logger.SetWriter(buf)
	logger.hostname = "host1"
	logger.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 7000000, time.UTC) }
	return logger
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf)

	logger.Log(RecordEvent{
		Operation:  OperationCreate,
		Collection: "organizations",
		RecordID:   "abc",
		UserID:     "alice",
		ClientIP:   "192.168.1.1",
		Success:    true,
	})

	want := fmt.Sprintf(`<13>1 2025-02-03T04:05:06.007Z host1 ezra %d record-create `+
		`[action@43868 operation="create" result="success"][auth@43868 user="alice"]`+
		`[client@43868 ip="192.168.1.1"][subject@43868 collection="organizations" id="abc"] `+
		"alice created organizations/abc\n", os.Getpid())
	if buf.String() != want {
		t.Errorf("Log() wrote\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestRecordEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     RecordEvent
		wantMsg   string
		wantSev   Severity
		wantMsgID string
	}{
		{
			name:      "successful create",
			event:     RecordEvent{Operation: OperationCreate, Collection: "groups", RecordID: "g1", UserID: "alice", Success: true},
			wantMsg:   "alice created groups/g1",
			wantSev:   SeverityNotice,
			wantMsgID: "record-create",
		},
		{
			name:      "anonymous update",
			event:     RecordEvent{Operation: OperationUpdate, Collection: "members", RecordID: "m1", Success: true},
			wantMsg:   "anonymous updated members/m1",
			wantSev:   SeverityNotice,
			wantMsgID: "record-update",
		},
		{
			name: "failed delete",
			event: RecordEvent{
				Operation:    OperationDelete,
				Collection:   "locations",
				RecordID:     "l1",
				UserID:       "bob",
				ErrorMessage: "Not found",
			},
			wantMsg:   "bob tried to delete locations/l1: Not found",
			wantSev:   SeverityWarning,
			wantMsgID: "record-delete",
		},
		{
			name:      "failed create without id",
			event:     RecordEvent{Operation: OperationCreate, Collection: "groups"},
			wantMsg:   "anonymous tried to create groups",
			wantSev:   SeverityWarning,
			wantMsgID: "record-create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Message(); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.Facility() != FacilityUser {
				t.Errorf("Facility() = %v, want %v", tt.event.Facility(), FacilityUser)
			}
			if tt.event.MessageID() != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", tt.event.MessageID(), tt.wantMsgID)
			}
		})
	}
}

func TestStructuredData(t *testing.T) {
	sd := RecordEvent{Operation: OperationUpdate, Collection: "groups", RecordID: "g1"}.StructuredData()

	if _, ok := sd[SDIDAuth]; ok {
		t.Error("auth element should be omitted for anonymous callers")
	}
	if _, ok := sd[SDIDClient]; ok {
		t.Error("client element should be omitted without an address")
	}
	if sd[SDIDSubject]["id"] != "g1" {
		t.Errorf("subject.id = %v, want g1", sd[SDIDSubject]["id"])
	}
	if sd[SDIDAction]["result"] != "failure" {
		t.Errorf("action.result = %v, want failure", sd[SDIDAction]["result"])
	}
}

func TestAuditToggle(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	DefaultLogger = fixedLogger(&buf)
	defer func() {
		DefaultLogger = original
		SetEnabled(true)
	}()

	SetEnabled(false)
	if IsEnabled() {
		t.Error("Expected audit to be disabled")
	}
	Log(RecordEvent{Operation: OperationDelete, Collection: "groups", Success: true})
	if buf.Len() != 0 {
		t.Errorf("disabled audit wrote %q", buf.String())
	}

	SetEnabled(true)
	Log(RecordEvent{Operation: OperationDelete, Collection: "groups", Success: true})
	if !strings.Contains(buf.String(), "record-delete") {
		t.Errorf("enabled audit wrote %q", buf.String())
	}
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", `"simple"`},
		{`with"quote`, `"with\"quote"`},
		{`with\backslash`, `"with\\backslash"`},
		{`with]bracket`, `"with\]bracket"`},
		{`all"special\chars]`, `"all\"special\\chars\]"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeSDValue(tt.input)
			if got != tt.want {
				t.Errorf("escapeSDValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
