package app

import (
	"reflect"
	"testing"

	"github.com/dkeye/Parley/internal/domain"
)

func TestDelivery_Lifecycle(t *testing.T) {
	d := NewDeliveryTracker()
	d.RecordSent("m1", "conv")

	st, ok := d.Status("m1")
	if !ok || !st.Sent || st.Delivered || st.Read {
		t.Fatalf("status after sent = %+v", st)
	}

	// No online recipient: the message stays "sent".
	d.RecordDelivered("m1", nil)
	if st, _ := d.Status("m1"); st.Delivered {
		t.Fatalf("delivered without online recipients")
	}

	d.RecordDelivered("m1", []domain.UserID{"r"})
	st, _ = d.Status("m1")
	if !st.Delivered || !reflect.DeepEqual(st.Recipients, []domain.UserID{"r"}) {
		t.Fatalf("status after delivery = %+v", st)
	}

	// Delivery is monotonic: a later call cannot rewrite recipients.
	d.RecordDelivered("m1", []domain.UserID{"other"})
	if st, _ := d.Status("m1"); !reflect.DeepEqual(st.Recipients, []domain.UserID{"r"}) {
		t.Fatalf("recipients rewritten to %v", st.Recipients)
	}
}

func TestDelivery_ReadOncePerReader(t *testing.T) {
	d := NewDeliveryTracker()
	d.RecordSent("m1", "conv")

	if !d.RecordRead("m1", "r") {
		t.Fatalf("first read should report the transition")
	}
	if d.RecordRead("m1", "r") {
		t.Fatalf("duplicate read should not report a transition")
	}
	if st, _ := d.Status("m1"); !st.Read {
		t.Fatalf("read flag not set")
	}

	// A different reader is a new transition for broadcast purposes,
	// but read stays true throughout.
	if !d.RecordRead("m1", "other") {
		t.Fatalf("new reader should report a transition")
	}
	if st, _ := d.Status("m1"); !st.Read {
		t.Fatalf("read flag lost")
	}
}

func TestDelivery_UnknownMessageIsNoop(t *testing.T) {
	d := NewDeliveryTracker()

	d.RecordDelivered("ghost", []domain.UserID{"r"})
	if d.RecordRead("ghost", "r") {
		t.Fatalf("read of unknown message should not report a transition")
	}
	if _, ok := d.Status("ghost"); ok {
		t.Fatalf("unknown message acquired a status")
	}
	if _, ok := d.Conversation("ghost"); ok {
		t.Fatalf("unknown message acquired a conversation")
	}
}

func TestDelivery_Conversation(t *testing.T) {
	d := NewDeliveryTracker()
	d.RecordSent("m1", "conv")
	conv, ok := d.Conversation("m1")
	if !ok || conv != "conv" {
		t.Fatalf("Conversation = (%q, %v)", conv, ok)
	}
}
