package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/notify"
)

func newDigestFixture() (*DigestService, *memStore, *memLog, *fakeSender) {
	store := newMemStore()
	logs := &memLog{}
	sender := &fakeSender{}
	ds := NewDigestService(store, logs, sender, opsNumber, "en", discardLogger()).WithClock(fixedNow)
	return ds, store, logs, sender
}

func TestDailyDigestOrdersByEffectiveTime(t *testing.T) {
	ds, store, logs, sender := newDigestFixture()
	confirmed := "08:30 AM"
	store.addBooking(models.Booking{CustomerName: "Late", Area: "Jahra", PreferredDate: "2026-10-15", PreferredTime: "04:00 PM", Status: models.StatusPending})
	store.addBooking(models.Booking{CustomerName: "Early", Area: "Bayan", PreferredDate: "2026-10-15", PreferredTime: "11:00 AM", ConfirmedTime: &confirmed, Status: models.StatusConfirmed})
	store.addBooking(models.Booking{CustomerName: "Done", PreferredDate: "2026-10-15", PreferredTime: "09:00 AM", Status: models.StatusCompleted})
	store.addBooking(models.Booking{CustomerName: "Tomorrow", PreferredDate: "2026-10-16", PreferredTime: "09:00 AM", Status: models.StatusPending})

	res, err := ds.SendDailyDigest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Bookings != 2 || res.Status != models.DeliverySent || res.Date != "2026-10-15" {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one digest message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	early, late := strings.Index(msg, "Early"), strings.Index(msg, "Late")
	if early < 0 || late < 0 || early > late {
		t.Errorf("expected Early before Late:\n%s", msg)
	}
	if !strings.Contains(msg, "08:30 AM") {
		t.Errorf("expected confirmed time in digest:\n%s", msg)
	}
	if strings.Contains(msg, "Done") || strings.Contains(msg, "Tomorrow") {
		t.Errorf("digest should only list today's open bookings:\n%s", msg)
	}
	if got := logs.byKind(models.KindDailyDigest); len(got) != 1 {
		t.Errorf("expected one digest log entry, got %d", len(got))
	}
}

func TestDailyDigestEmptyDaySendsNothing(t *testing.T) {
	ds, _, logs, sender := newDigestFixture()
	res, err := ds.SendDailyDigest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != models.DeliverySkipped || len(sender.sent) != 0 || len(logs.entries) != 0 {
		t.Errorf("nothing should be sent or logged on an empty day")
	}
}

func TestDailyDigestGatewayStates(t *testing.T) {
	ds, store, _, sender := newDigestFixture()
	store.addBooking(models.Booking{PreferredDate: "2026-10-15", PreferredTime: "10:00 AM", Status: models.StatusPending})

	sender.err = notify.ErrDisabled
	res, err := ds.SendDailyDigest(context.Background())
	if err != nil || res.Status != models.DeliverySkipped {
		t.Errorf("disabled gateway should be skipped, got %+v %v", res, err)
	}

	sender.err = errors.New("twilio down")
	res, err = ds.SendDailyDigest(context.Background())
	if err == nil || res.Status != models.DeliveryFailed {
		t.Errorf("expected failure, got %+v %v", res, err)
	}
}

func TestDailyDigestStoreError(t *testing.T) {
	ds, store, _, _ := newDigestFixture()
	store.failList = errors.New("timeout")
	if _, err := ds.SendDailyDigest(context.Background()); err == nil {
		t.Errorf("expected list error to surface")
	}
}

func TestDigestScheduleValidation(t *testing.T) {
	ds, _, _, _ := newDigestFixture()
	if _, err := ds.Start("not a schedule"); err == nil {
		t.Errorf("expected invalid schedule error")
	}
	c, err := ds.Start("0 7 * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Stop()
}
