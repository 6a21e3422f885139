package app

import (
	"errors"
	"sort"
	"testing"

	"github.com/dkeye/Parley/internal/domain"
)

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("s1", domain.User{ID: "u1"}, nil, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("s1", domain.User{ID: "u2"}, nil, nil); !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("err = %v, want ErrDuplicateSession", err)
	}
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("s1", domain.User{ID: "u1"}, nil, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sess, ok := r.Unregister("s1")
	if !ok || sess.User.ID != "u1" {
		t.Fatalf("Unregister = (%+v, %v)", sess, ok)
	}
	if _, ok := r.Unregister("s1"); ok {
		t.Fatalf("second Unregister should report absence")
	}
}

func TestRegistry_LookupByUser(t *testing.T) {
	r := NewRegistry()
	for _, sid := range []domain.SessionID{"s1", "s2"} {
		if err := r.Register(sid, domain.User{ID: "u1"}, nil, nil); err != nil {
			t.Fatalf("Register(%s): %v", sid, err)
		}
	}
	if err := r.Register("s3", domain.User{ID: "u2"}, nil, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sids := r.LookupByUser("u1")
	sort.Slice(sids, func(i, j int) bool { return sids[i] < sids[j] })
	if len(sids) != 2 || sids[0] != "s1" || sids[1] != "s2" {
		t.Fatalf("LookupByUser = %v", sids)
	}

	r.Unregister("s1")
	r.Unregister("s2")
	if got := r.LookupByUser("u1"); got != nil {
		t.Fatalf("LookupByUser after unregister = %v, want nil", got)
	}
}

func TestRegistry_RoomAssociation(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("s1", domain.User{ID: "u1"}, nil, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if !r.SetRoom("s1", "r1") {
		t.Fatalf("SetRoom failed")
	}
	sess, _ := r.Get("s1")
	if sess.Room != "r1" {
		t.Fatalf("Room = %q, want r1", sess.Room)
	}

	r.ClearRoom("s1")
	sess, _ = r.Get("s1")
	if sess.Room != "" {
		t.Fatalf("Room = %q, want empty", sess.Room)
	}

	if r.SetRoom("missing", "r1") {
		t.Fatalf("SetRoom on unknown session should fail")
	}
}
