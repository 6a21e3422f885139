package app

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/dkeye/Parley/internal/domain"
)

func TestRoomStore_JoinLeaveRoster(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")

	roster := s.Join(room, "x")
	if !reflect.DeepEqual(roster, []domain.UserID{"x"}) {
		t.Fatalf("roster after first join = %v, want [x]", roster)
	}

	roster = s.Join(room, "y")
	if !reflect.DeepEqual(roster, []domain.UserID{"x", "y"}) {
		t.Fatalf("roster = %v, want [x y]", roster)
	}

	// Duplicate join is idempotent and keeps join order.
	roster = s.Join(room, "x")
	if !reflect.DeepEqual(roster, []domain.UserID{"x", "y"}) {
		t.Fatalf("roster after duplicate join = %v, want [x y]", roster)
	}

	roster, closed := s.Leave(room, "x")
	if closed {
		t.Fatalf("room closed with a participant remaining")
	}
	if !reflect.DeepEqual(roster, []domain.UserID{"y"}) {
		t.Fatalf("roster after leave = %v, want [y]", roster)
	}

	_, closed = s.Leave(room, "y")
	if !closed {
		t.Fatalf("expected room to close when last participant leaves")
	}
	if _, ok := s.Roster(room); ok {
		t.Fatalf("expected room to be destroyed")
	}
}

func TestRoomStore_LeaveUnknownRoomIsNoop(t *testing.T) {
	s := NewRoomStore()
	roster, closed := s.Leave("nope", "x")
	if roster != nil || closed {
		t.Fatalf("Leave(unknown) = (%v, %v), want (nil, false)", roster, closed)
	}
}

func TestRoomStore_AddOffer_UnknownRoom(t *testing.T) {
	s := NewRoomStore()
	if _, err := s.AddOffer("nope", "x", "sdp"); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("AddOffer on unknown room: err = %v, want ErrUnknownRoom", err)
	}
}

func TestRoomStore_BindAnswer_AtMostOneAnswerer(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")
	s.Join(room, "x")
	s.Join(room, "y")
	s.Join(room, "z")

	if _, err := s.AddOffer(room, "x", "p1"); err != nil {
		t.Fatalf("AddOffer: %v", err)
	}

	neg, err := s.BindAnswer(room, "x", "y", "p2")
	if err != nil {
		t.Fatalf("BindAnswer: %v", err)
	}
	if neg.Offerer != "x" || neg.Answerer != "y" || neg.Answer != "p2" {
		t.Fatalf("bound negotiation = %+v", neg)
	}

	if _, err := s.BindAnswer(room, "x", "z", "p3"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second answer: err = %v, want ErrAlreadyAnswered", err)
	}
}

func TestRoomStore_BindAnswer_NoOpenOffer(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")
	s.Join(room, "x")
	s.Join(room, "y")

	if _, err := s.BindAnswer(room, "x", "y", "p"); !errors.Is(err, ErrNoOpenOffer) {
		t.Fatalf("err = %v, want ErrNoOpenOffer", err)
	}
}

func TestRoomStore_BindAnswer_LastOfferWins(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")
	s.Join(room, "x")
	s.Join(room, "y")

	if _, err := s.AddOffer(room, "x", "first"); err != nil {
		t.Fatalf("AddOffer: %v", err)
	}
	second, err := s.AddOffer(room, "x", "second")
	if err != nil {
		t.Fatalf("AddOffer: %v", err)
	}

	neg, err := s.BindAnswer(room, "x", "y", "answer")
	if err != nil {
		t.Fatalf("BindAnswer: %v", err)
	}
	if neg.ID != second || neg.Offer != "second" {
		t.Fatalf("bound offer = %q (id %s), want the re-offer", neg.Offer, neg.ID)
	}

	// The abandoned first offer must not remain answerable.
	if _, err := s.BindAnswer(room, "x", "y", "again"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("err = %v, want ErrAlreadyAnswered", err)
	}
}

func TestRoomStore_LeaveRemovesOfferersNegotiations(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")
	s.Join(room, "x")
	s.Join(room, "y")

	if _, err := s.AddOffer(room, "x", "p1"); err != nil {
		t.Fatalf("AddOffer: %v", err)
	}
	s.Leave(room, "x")

	if _, err := s.BindAnswer(room, "x", "y", "p2"); !errors.Is(err, ErrNoOpenOffer) {
		t.Fatalf("err = %v, want ErrNoOpenOffer after offerer left", err)
	}
}

func TestRoomStore_Candidates(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")
	s.Join(room, "x")
	s.Join(room, "y")

	if _, err := s.AddOffer(room, "x", "sdp"); err != nil {
		t.Fatalf("AddOffer: %v", err)
	}

	// Offer-side candidates before any answer are buffered: no target.
	target, err := s.AddCandidate(room, "x", true, domain.Candidate(`"c1"`))
	if err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}
	if target != "" {
		t.Fatalf("pre-answer candidate target = %q, want empty", target)
	}

	neg, err := s.BindAnswer(room, "x", "y", "answer")
	if err != nil {
		t.Fatalf("BindAnswer: %v", err)
	}
	if len(neg.OffererCandidates) != 1 {
		t.Fatalf("buffered candidates = %d, want 1", len(neg.OffererCandidates))
	}

	// After the answer both directions resolve to the counterpart.
	target, err = s.AddCandidate(room, "x", true, domain.Candidate(`"c2"`))
	if err != nil || target != "y" {
		t.Fatalf("offer-side candidate: target = %q, err = %v, want y", target, err)
	}
	target, err = s.AddCandidate(room, "y", false, domain.Candidate(`"c3"`))
	if err != nil || target != "x" {
		t.Fatalf("answer-side candidate: target = %q, err = %v, want x", target, err)
	}
}

func TestRoomStore_Candidate_NoNegotiation(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")
	s.Join(room, "x")

	if _, err := s.AddCandidate(room, "x", true, domain.Candidate(`"c"`)); !errors.Is(err, ErrNoNegotiation) {
		t.Fatalf("err = %v, want ErrNoNegotiation", err)
	}
	if _, err := s.AddCandidate("nope", "x", true, domain.Candidate(`"c"`)); !errors.Is(err, ErrNoNegotiation) {
		t.Fatalf("unknown room: err = %v, want ErrNoNegotiation", err)
	}
}

func TestRoomStore_List(t *testing.T) {
	s := NewRoomStore()
	s.Join("r1", "x")
	s.Join("r1", "y")
	s.Join("r2", "z")

	infos := s.List()
	if len(infos) != 2 {
		t.Fatalf("List() = %d rooms, want 2", len(infos))
	}
	counts := map[domain.RoomID]int{}
	for _, info := range infos {
		counts[info.ID] = info.MemberCount
	}
	if counts["r1"] != 2 || counts["r2"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestRoomStore_JoinRetriesDestroyedState(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")

	s.Join(room, "x")
	orphan := s.rooms[room]
	if _, closed := s.Leave(room, "x"); !closed {
		t.Fatalf("last leave should destroy the room")
	}

	// A joiner that resolved the state before the destroy must not
	// land on the orphan; it gets a fresh room instead.
	roster := s.Join(room, "y")
	if !reflect.DeepEqual(roster, []domain.UserID{"y"}) {
		t.Fatalf("roster = %v, want [y]", roster)
	}
	s.mu.RLock()
	fresh := s.rooms[room]
	s.mu.RUnlock()
	if fresh == orphan {
		t.Fatalf("join reused the destroyed room state")
	}
	orphan.mu.Lock()
	if !orphan.closed || len(orphan.participants) != 0 {
		t.Fatalf("orphan state mutated after destroy: %v", orphan.participants)
	}
	orphan.mu.Unlock()

	if _, err := s.AddOffer(room, "y", "sdp"); err != nil {
		t.Fatalf("AddOffer on recreated room: %v", err)
	}
}

func TestRoomStore_ConcurrentJoinLeaveChurn(t *testing.T) {
	s := NewRoomStore()
	room := domain.RoomID("r1")

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			churn := domain.UserID(string(rune('a' + g)))
			for i := 0; i < 2000; i++ {
				s.Join(room, "keeper")
				s.Join(room, churn)
				s.Leave(room, churn)
			}
		}(g)
	}
	wg.Wait()

	roster, ok := s.Roster(room)
	if !ok {
		t.Fatalf("room vanished with a joined user remaining")
	}
	found := false
	for _, p := range roster {
		if p == "keeper" {
			found = true
		}
	}
	if !found {
		t.Fatalf("roster = %v, want it to contain keeper", roster)
	}
}
