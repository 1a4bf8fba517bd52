package test

import (
	"context"
	"sync"

	"github.com/ecutune/ecutune/internal/domain/model"
)

// VerificationFacadeStub feeds preloaded batches to the verifier and records
// every verification call.
type VerificationFacadeStub struct {
	sync.Mutex
	Batches  [][]model.Order
	FetchErr error

	Verified  []model.Order
	VerifyErr error
}

func (s *VerificationFacadeStub) OrdersAwaitingVerification(ctx context.Context, limit int) ([]model.Order, error) {
	s.Lock()
	defer s.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	return batch, nil
}

func (s *VerificationFacadeStub) VerifyPayment(ctx context.Context, order model.Order) error {
	s.Lock()
	defer s.Unlock()
	s.Verified = append(s.Verified, order)
	return s.VerifyErr
}

// SenderStub records outgoing mail and can be told to fail.
type SenderStub struct {
	sync.Mutex
	Messages []SentMail
	SendErr  error
}

// SentMail is one captured message.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

func (s *SenderStub) Send(to, subject, htmlBody string) error {
	s.Lock()
	defer s.Unlock()
	if s.SendErr != nil {
		return s.SendErr
	}
	s.Messages = append(s.Messages, SentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Sent returns a copy of the captured messages.
func (s *SenderStub) Sent() []SentMail {
	s.Lock()
	defer s.Unlock()
	out := make([]SentMail, len(s.Messages))
	copy(out, s.Messages)
	return out
}
