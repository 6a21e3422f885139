package app

import (
	"sync"

	"github.com/dkeye/Parley/internal/domain"
)

type deliveryRecord struct {
	conversation domain.ConversationID
	sent         bool
	delivered    bool
	read         bool
	recipients   []domain.UserID
	readers      map[domain.UserID]struct{}
}

// DeliveryStatus is a read-only snapshot of a message's lifecycle.
type DeliveryStatus struct {
	Sent       bool
	Delivered  bool
	Read       bool
	Recipients []domain.UserID
}

// DeliveryTracker records the sent/delivered/read lifecycle per
// message. Transitions are monotonic and operating on an unknown
// message id is a no-op, so races against conversation teardown stay
// harmless.
type DeliveryTracker struct {
	mu      sync.Mutex
	records map[domain.MessageID]*deliveryRecord
}

func NewDeliveryTracker() *DeliveryTracker {
	return &DeliveryTracker{records: make(map[domain.MessageID]*deliveryRecord)}
}

func (d *DeliveryTracker) RecordSent(mid domain.MessageID, conv domain.ConversationID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.records[mid]; ok {
		return
	}
	d.records[mid] = &deliveryRecord{
		conversation: conv,
		sent:         true,
		readers:      make(map[domain.UserID]struct{}),
	}
}

// RecordDelivered marks the message delivered to the given recipients.
// With no online recipient the message stays "sent"; a later catch-up
// path outside this process owns that case.
func (d *DeliveryTracker) RecordDelivered(mid domain.MessageID, online []domain.UserID) {
	if len(online) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[mid]
	if !ok || rec.delivered {
		return
	}
	rec.delivered = true
	rec.recipients = append([]domain.UserID(nil), online...)
}

// RecordRead reports true only the first time this reader reads this
// message, so the caller broadcasts exactly once per real transition.
func (d *DeliveryTracker) RecordRead(mid domain.MessageID, reader domain.UserID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[mid]
	if !ok {
		return false
	}
	if _, seen := rec.readers[reader]; seen {
		return false
	}
	rec.readers[reader] = struct{}{}
	rec.read = true
	return true
}

func (d *DeliveryTracker) Conversation(mid domain.MessageID) (domain.ConversationID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[mid]
	if !ok {
		return "", false
	}
	return rec.conversation, true
}

func (d *DeliveryTracker) Status(mid domain.MessageID) (DeliveryStatus, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[mid]
	if !ok {
		return DeliveryStatus{}, false
	}
	return DeliveryStatus{
		Sent:       rec.sent,
		Delivered:  rec.delivered,
		Read:       rec.read,
		Recipients: append([]domain.UserID(nil), rec.recipients...),
	}, true
}
