package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"carelog/internal/adapters/email"
	domain "carelog/internal/domain/entry"
)

// mockSender captures outgoing emails.
type mockSender struct {
	sent    []email.SendRequest
	sendErr error
}

func (m *mockSender) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.sendErr != nil {
		return email.SendResult{}, m.sendErr
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "msg-1", SentAt: time.Now()}, nil
}

var digestNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func TestExecuteSendOverdueDigest(t *testing.T) {
	store := &mockEntryStore{entries: []domain.Entry{
		{Person: "Alice", Date: "2024-01-01", Site: "Henley"},    // long overdue
		{Person: "Bob", Date: "2024-06-05", Site: "Enfield"},     // 5 days, fine
		{Person: "Carol", Date: "not a date", Site: "Henley"},    // never visited
	}}
	sender := &mockSender{}

	result, err := ExecuteSendOverdueDigest(context.Background(),
		OverdueDigestInput{Recipient: "team@example.org", Now: digestNow},
		OverdueDigestDeps{EntryStore: store, Sender: sender},
	)
	if err != nil {
		t.Fatalf("ExecuteSendOverdueDigest: %v", err)
	}

	if result.PeopleListed != 2 {
		t.Errorf("PeopleListed = %d, want 2", result.PeopleListed)
	}
	if result.MessageID != "msg-1" {
		t.Errorf("MessageID = %q, want msg-1", result.MessageID)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}

	req := sender.sent[0]
	if len(req.To) != 1 || req.To[0] != "team@example.org" {
		t.Errorf("To = %v", req.To)
	}
	if !strings.Contains(req.HTML, "Alice") {
		t.Error("body missing overdue person Alice")
	}
	if !strings.Contains(req.HTML, "Carol") {
		t.Error("body missing never-visited person Carol")
	}
	if strings.Contains(req.HTML, "Bob") {
		t.Error("body should not list recently visited person Bob")
	}
}

func TestExecuteSendOverdueDigestNobodyOverdue(t *testing.T) {
	store := &mockEntryStore{entries: []domain.Entry{
		{Person: "Bob", Date: "2024-06-05", Site: "Enfield"},
	}}
	sender := &mockSender{}

	result, err := ExecuteSendOverdueDigest(context.Background(),
		OverdueDigestInput{Recipient: "team@example.org", Now: digestNow},
		OverdueDigestDeps{EntryStore: store, Sender: sender},
	)
	if err != nil {
		t.Fatalf("ExecuteSendOverdueDigest: %v", err)
	}
	if result.PeopleListed != 0 {
		t.Errorf("PeopleListed = %d, want 0", result.PeopleListed)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d emails, want none", len(sender.sent))
	}
}

func TestExecuteSendOverdueDigestCustomThreshold(t *testing.T) {
	store := &mockEntryStore{entries: []domain.Entry{
		{Person: "Bob", Date: "2024-06-05", Site: "Enfield"}, // 5 days
	}}
	sender := &mockSender{}

	result, err := ExecuteSendOverdueDigest(context.Background(),
		OverdueDigestInput{Recipient: "team@example.org", ThresholdDays: 3, Now: digestNow},
		OverdueDigestDeps{EntryStore: store, Sender: sender},
	)
	if err != nil {
		t.Fatalf("ExecuteSendOverdueDigest: %v", err)
	}
	if result.PeopleListed != 1 {
		t.Errorf("PeopleListed = %d, want 1", result.PeopleListed)
	}
}

func TestExecuteSendOverdueDigestNoRecipient(t *testing.T) {
	_, err := ExecuteSendOverdueDigest(context.Background(),
		OverdueDigestInput{},
		OverdueDigestDeps{EntryStore: &mockEntryStore{}, Sender: &mockSender{}},
	)
	if !errors.Is(err, ErrNoRecipient) {
		t.Errorf("err = %v, want ErrNoRecipient", err)
	}
}

func TestExecuteSendOverdueDigestSendError(t *testing.T) {
	store := &mockEntryStore{entries: []domain.Entry{
		{Person: "Alice", Date: "2024-01-01", Site: "Henley"},
	}}
	sender := &mockSender{sendErr: errors.New("provider down")}

	_, err := ExecuteSendOverdueDigest(context.Background(),
		OverdueDigestInput{Recipient: "team@example.org", Now: digestNow},
		OverdueDigestDeps{EntryStore: store, Sender: sender},
	)
	if err == nil {
		t.Fatal("expected send error")
	}
}
