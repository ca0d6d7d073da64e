package storage

import (
	"reflect"
	"testing"
	"time"
)

func TestHandoffStore_SingleConsumption(t *testing.T) {
	store := NewHandoffStore(time.Hour)

	want := CompanyHandoff{
		CompanyID:   "c1",
		CompanyName: "Acme",
		StudentIDs:  []int{12, 7},
		EventTitle:  "Acme Campus Drive",
	}
	token := store.Put(want)
	if token == "" {
		t.Fatal("empty token")
	}

	got, ok := store.Take(token)
	if !ok {
		t.Fatal("first Take missed")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, ok := store.Take(token); ok {
		t.Error("second Take succeeded, want single consumption")
	}
}

func TestHandoffStore_UnknownToken(t *testing.T) {
	store := NewHandoffStore(time.Hour)
	if _, ok := store.Take("no-such-token"); ok {
		t.Error("Take succeeded for unknown token")
	}
}

func TestHandoffStore_IndependentTokens(t *testing.T) {
	store := NewHandoffStore(time.Hour)

	t1 := store.Put(CompanyHandoff{CompanyID: "c1", StudentIDs: []int{1}})
	t2 := store.Put(CompanyHandoff{CompanyID: "c2", StudentIDs: []int{2}})
	if t1 == t2 {
		t.Fatal("duplicate tokens")
	}

	if _, ok := store.Take(t1); !ok {
		t.Error("t1 missed")
	}
	got, ok := store.Take(t2)
	if !ok || got.CompanyID != "c2" {
		t.Errorf("t2 = %+v, ok=%v", got, ok)
	}
}
