package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestObserveCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBotMetrics(reg)

	m.ObserveInbound("text", "ok")
	m.ObserveInbound("text", "ok")
	m.ObserveRejected("lock_unavailable")
	m.ObserveOutbound("delivered")

	mf := gather(t, reg, "swiftchat_bot_inbound_webhook_total")
	if mf == nil {
		t.Fatal("inbound counter not registered")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 inbound observations, got %v", got)
	}
	if mf := gather(t, reg, "swiftchat_bot_rejected_total"); mf == nil {
		t.Fatal("rejected counter not registered")
	}
	if mf := gather(t, reg, "swiftchat_bot_outbound_total"); mf == nil {
		t.Fatal("outbound counter not registered")
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *BotMetrics
	m.ObserveInbound("text", "ok")
	m.ObserveRejected("validation_locked")
	m.ObserveOutbound("failed")
	m.ObserveWebhookLatency("text", 0.01)
}
