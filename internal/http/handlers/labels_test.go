package handlers_test

import (
	"net/http"
	"testing"
)

func TestLabelsHandler_NameUniquePerOwner(t *testing.T) {
	e := newTestEnv(t)
	alice := e.account(t, "alice", false)
	bob := e.account(t, "bob", false)

	e.createLabel(t, alice, "Work")
	e.createLabel(t, bob, "Work")

	w := e.do(t, http.MethodPost, "/labels/", &alice, `{"name":"Work"}`)
	mustStatus(t, w, http.StatusBadRequest)
	if d := decode[errorJSON](t, w).Detail; d != "A label with this name already exists for this user." {
		t.Fatalf("detail = %q", d)
	}

	w = e.do(t, http.MethodGet, "/labels/", &alice, "")
	mustStatus(t, w, http.StatusOK)
	got := decode[[]labelJSON](t, w)
	if len(got) != 1 || got[0].Owner.Username != "alice" {
		t.Fatalf("alice labels = %+v", got)
	}
}

func TestLabelsHandler_UpdateAndDelete(t *testing.T) {
	e := newTestEnv(t)
	alice := e.account(t, "alice", false)
	bob := e.account(t, "bob", false)

	work := e.createLabel(t, alice, "Work")
	e.createLabel(t, alice, "Home")
	path := "/labels/" + work.ID + "/"

	w := e.do(t, http.MethodPatch, path, &alice, `{"name":"Home"}`)
	mustStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodPut, path, &alice, `{}`)
	mustStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodPut, path, &alice, `{"name":"Office"}`)
	mustStatus(t, w, http.StatusOK)
	if got := decode[labelJSON](t, w); got.Name != "Office" {
		t.Fatalf("name = %q", got.Name)
	}

	w = e.do(t, http.MethodGet, path, &bob, "")
	mustStatus(t, w, http.StatusNotFound)

	w = e.do(t, http.MethodDelete, path, &bob, "")
	mustStatus(t, w, http.StatusNotFound)

	w = e.do(t, http.MethodDelete, path, &alice, "")
	mustStatus(t, w, http.StatusNoContent)

	w = e.do(t, http.MethodGet, path, &alice, "")
	mustStatus(t, w, http.StatusNotFound)
}
