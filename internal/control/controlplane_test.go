package control

import (
	"testing"

	"github.com/skywave-radio/console/internal/config"
	"github.com/skywave-radio/console/internal/spectrum"
)

func newTestPlane() *ControlPlane {
	return New(nil, config.DefaultRxConfig(), config.DefaultTxConfig())
}

func TestRxConfigSetAndRejectInvalid(t *testing.T) {
	cp := newTestPlane()

	good := config.DefaultRxConfig()
	good.ThresholdDb = -40
	if err := cp.SetRxConfig(good); err != nil {
		t.Fatalf("SetRxConfig(valid) error = %v", err)
	}
	if got := cp.RxConfig().ThresholdDb; got != -40 {
		t.Errorf("RxConfig().ThresholdDb = %v, want -40", got)
	}

	bad := config.DefaultRxConfig()
	bad.SampleRateHz = -1
	if err := cp.SetRxConfig(bad); err == nil {
		t.Error("SetRxConfig(invalid sampleRateHz) returned nil error")
	}
	// Rejected config must not clobber the last-accepted one.
	if got := cp.RxConfig().ThresholdDb; got != -40 {
		t.Errorf("RxConfig().ThresholdDb after rejected set = %v, want -40", got)
	}
}

func TestTxConfigSetAndRejectInvalid(t *testing.T) {
	cp := newTestPlane()

	bad := config.DefaultTxConfig()
	bad.TargetDbfs = 10
	if err := cp.SetTxConfig(bad); err == nil {
		t.Error("SetTxConfig(invalid targetDbfs) returned nil error")
	}
}

func TestArmAndCancelRequestsConsumedOnce(t *testing.T) {
	cp := newTestPlane()

	if _, _, ok := cp.TakeArmRequest(); ok {
		t.Fatal("TakeArmRequest() before Arm() returned ok=true")
	}

	cp.Arm(1.0, 2.0)
	preS, postS, ok := cp.TakeArmRequest()
	if !ok || preS != 1.0 || postS != 2.0 {
		t.Errorf("TakeArmRequest() = (%v, %v, %v), want (1.0, 2.0, true)", preS, postS, ok)
	}
	if _, _, ok := cp.TakeArmRequest(); ok {
		t.Error("second TakeArmRequest() returned ok=true, want false (consumed once)")
	}

	// Negative values are clamped to zero.
	cp.Arm(-5, -5)
	preS, postS, ok = cp.TakeArmRequest()
	if !ok || preS != 0 || postS != 0 {
		t.Errorf("TakeArmRequest() after Arm(-5,-5) = (%v, %v, %v), want (0, 0, true)", preS, postS, ok)
	}

	if cp.TakeCancelRequest() {
		t.Fatal("TakeCancelRequest() before Cancel() returned true")
	}
	cp.Cancel()
	if !cp.TakeCancelRequest() {
		t.Error("TakeCancelRequest() after Cancel() returned false")
	}
	if cp.TakeCancelRequest() {
		t.Error("second TakeCancelRequest() returned true, want false (consumed once)")
	}
}

func TestTxEnabledToggle(t *testing.T) {
	cp := newTestPlane()
	if cp.TxEnabled() {
		t.Fatal("TxEnabled() before StartTx() is true")
	}
	cp.StartTx()
	if !cp.TxEnabled() {
		t.Error("TxEnabled() after StartTx() is false")
	}
	cp.StopTx()
	if cp.TxEnabled() {
		t.Error("TxEnabled() after StopTx() is true")
	}
}

func TestEmitFrameNewestWins(t *testing.T) {
	cp := newTestPlane()

	f1 := &spectrum.Frame{CenterHz: 1}
	f2 := &spectrum.Frame{CenterHz: 2}
	cp.EmitFrame(f1)
	cp.EmitFrame(f2)

	got := <-cp.Frames()
	if got.CenterHz != 2 {
		t.Errorf("Frames() yielded CenterHz %v, want 2 (newest wins)", got.CenterHz)
	}

	select {
	case <-cp.Frames():
		t.Error("Frames() yielded a second frame, want the channel drained to one slot")
	default:
	}
}

func TestEventsDropWhenQueueFull(t *testing.T) {
	cp := newTestPlane()
	for i := 0; i < eventQueueCapacity+10; i++ {
		cp.EmitCaptureComplete("x")
	}
	// Outbox is bounded; draining should yield at most its capacity.
	n := 0
	for {
		select {
		case <-cp.Events():
			n++
		default:
			if n > eventQueueCapacity {
				t.Errorf("drained %d events, want <= %d", n, eventQueueCapacity)
			}
			return
		}
	}
}
