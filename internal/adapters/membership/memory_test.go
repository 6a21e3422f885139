package membership

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dkeye/Parley/internal/domain"
)

func TestStore_MembersOf(t *testing.T) {
	s := NewStore()
	s.Set("conv", []domain.UserID{"a", "b"})

	got, err := s.MembersOf("conv")
	if err != nil {
		t.Fatalf("MembersOf: %v", err)
	}
	if !reflect.DeepEqual(got, []domain.UserID{"a", "b"}) {
		t.Fatalf("members = %v", got)
	}

	// Returned slice is a copy; mutating it must not leak back.
	got[0] = "evil"
	again, _ := s.MembersOf("conv")
	if again[0] != "a" {
		t.Fatalf("store mutated through returned slice")
	}
}

func TestStore_UnknownConversation(t *testing.T) {
	s := NewStore()
	if _, err := s.MembersOf("ghost"); !errors.Is(err, ErrUnknownConversation) {
		t.Fatalf("err = %v, want ErrUnknownConversation", err)
	}
}
