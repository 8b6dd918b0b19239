package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	m := New()

	m.LoansCreated.Inc()
	m.PaymentsAllocated.WithLabelValues("cash").Inc()
	m.PaymentsAllocated.WithLabelValues("cash").Inc()
	m.SessionsOpened.Inc()

	if got := testutil.ToFloat64(m.LoansCreated); got != 1 {
		t.Fatalf("loans created = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.PaymentsAllocated.WithLabelValues("cash")); got != 2 {
		t.Fatalf("cash payments = %v, want 2", got)
	}

	if got := testutil.ToFloat64(m.SessionsOpened); got != 1 {
		t.Fatalf("sessions opened = %v, want 1", got)
	}
}
