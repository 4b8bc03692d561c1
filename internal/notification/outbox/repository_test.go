package outbox

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestRecordPushDecodesPayload(t *testing.T) {
	leadID := uuid.New()
	payload, _ := json.Marshal(PushPayload{UserID: uuid.New(), Token: "ExponentPushToken[x]", Title: "Follow up", LeadID: &leadID})
	rec := Record{ID: uuid.New(), Kind: KindPush, Payload: payload}

	got, err := rec.Push()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Token != "ExponentPushToken[x]" || got.LeadID == nil || *got.LeadID != leadID {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestRecordPushRejectsOtherKinds(t *testing.T) {
	rec := Record{ID: uuid.New(), Kind: "email", Payload: json.RawMessage(`{}`)}
	if _, err := rec.Push(); err == nil {
		t.Fatal("expected error for non-push record")
	}
}

func TestNilRepositoryReportsNotConfigured(t *testing.T) {
	var r *Repository
	if _, err := r.Insert(t.Context(), InsertParams{Kind: KindPush}); err == nil {
		t.Fatal("expected error from nil repository")
	}
}
