package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESSendOnePerRecipient(t *testing.T) {
	fake := &fakeSES{}
	s := &SESSender{client: fake, fromEmail: "noreply@example.com", fromName: "FamiList"}

	err := s.Send(context.Background(), Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello",
		Text:    "Body",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fake.inputs) != 2 {
		t.Fatalf("SendEmail calls = %d, want 2", len(fake.inputs))
	}

	in := fake.inputs[1]
	if got := aws.ToString(in.FromEmailAddress); got != "FamiList <noreply@example.com>" {
		t.Errorf("from = %q", got)
	}
	if got := in.Destination.ToAddresses; len(got) != 1 || got[0] != "b@example.com" {
		t.Errorf("to = %v", got)
	}
	if got := aws.ToString(in.Content.Simple.Subject.Data); got != "Hello" {
		t.Errorf("subject = %q", got)
	}
}

func TestSESSendError(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	s := &SESSender{client: fake, fromEmail: "noreply@example.com"}

	if err := s.Send(context.Background(), Message{To: []string{"a@example.com"}}); err == nil {
		t.Fatal("expected error")
	}
}
