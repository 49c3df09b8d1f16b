package store

import (
	"time"

	"auction-sync/internal/domain"
)

type PaymentState struct {
	Payments    []domain.Payment `json:"payments"`
	Payment     *domain.Payment  `json:"payment"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

// UnreadCount counts pending payments the user has not been told about.
func (s PaymentState) UnreadCount() int {
	n := 0
	for _, p := range s.Payments {
		if p.Unread() {
			n++
		}
	}
	return n
}

func reducePayment(s PaymentState, action paymentAction, now time.Time) (PaymentState, bool) {
	switch a := action.(type) {
	case PaymentsRequested:
		s.Loading = true
		s.Error = ""
		return s, true
	case PaymentsFetched:
		s.Payments = append([]domain.Payment(nil), a.Items...)
		s.Loading = false
		s.Error = ""
		s.LastUpdated = now
		return s, true
	case PaymentFetched:
		p := a.Payment
		s.Payment = &p
		for i, item := range s.Payments {
			if item.OrderCode == p.OrderCode {
				items := append([]domain.Payment(nil), s.Payments...)
				items[i] = p
				s.Payments = items
				break
			}
		}
		s.Loading = false
		s.Error = ""
		s.LastUpdated = now
		return s, true
	case PaymentRequestFailed:
		s.Loading = false
		s.Error = a.Err
		return s, true
	case PaymentCleared:
		s.Payment = nil
		s.Error = ""
		return s, true
	default:
		return s, false
	}
}
