package access_test

import (
	"testing"

	"github.com/geocoder89/tasktracker/internal/access"
)

func TestVisibleTo(t *testing.T) {
	tests := []struct {
		name     string
		actor    access.Actor
		ownerID  string
		wantAll  bool
		wantIncl bool
	}{
		{name: "owner_sees_own", actor: access.Actor{UserID: "a"}, ownerID: "a", wantIncl: true},
		{name: "other_hidden", actor: access.Actor{UserID: "b"}, ownerID: "a", wantIncl: false},
		{name: "staff_sees_all", actor: access.Actor{UserID: "s", Staff: true}, ownerID: "a", wantAll: true, wantIncl: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := access.VisibleTo(tt.actor)
			if scope.All() != tt.wantAll {
				t.Fatalf("All() = %v, want %v", scope.All(), tt.wantAll)
			}
			if scope.Includes(tt.ownerID) != tt.wantIncl {
				t.Fatalf("Includes(%q) = %v, want %v", tt.ownerID, scope.Includes(tt.ownerID), tt.wantIncl)
			}
		})
	}
}

func TestCanWrite(t *testing.T) {
	if !access.CanWrite(access.Actor{UserID: "a"}, "a") {
		t.Fatal("owner should be able to write")
	}
	if access.CanWrite(access.Actor{UserID: "b"}, "a") {
		t.Fatal("non-owner should not be able to write")
	}
	if access.CanWrite(access.Actor{UserID: "s", Staff: true}, "a") {
		t.Fatal("staff must not get a write override")
	}
	if access.CanWrite(access.Actor{}, "") {
		t.Fatal("anonymous actor must not match an empty owner")
	}
}

func TestCanReassign(t *testing.T) {
	if !access.CanReassign(access.Actor{UserID: "s", Staff: true}, "a") {
		t.Fatal("staff may reassign")
	}
	if access.CanReassign(access.Actor{UserID: "b"}, "a") {
		t.Fatal("non-owner non-staff may not reassign")
	}
}

func TestOwnerForCreate(t *testing.T) {
	other := "b"

	if got := access.OwnerForCreate(access.Actor{UserID: "a"}, &other); got != "a" {
		t.Fatalf("non-staff override must be ignored, got %q", got)
	}
	if got := access.OwnerForCreate(access.Actor{UserID: "s", Staff: true}, &other); got != "b" {
		t.Fatalf("staff override should apply, got %q", got)
	}
	if got := access.OwnerForCreate(access.Actor{UserID: "s", Staff: true}, nil); got != "s" {
		t.Fatalf("staff without override owns the row, got %q", got)
	}
}
