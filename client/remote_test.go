package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/sim"
)

func TestRemote_VerifyCapturesToken(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/otp/send":
			var in map[string]int
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in["userId"] != 1 {
				t.Errorf("send body = %v, err %v", in, err)
			}
			json.NewEncoder(w).Encode(map[string]int{"ttl": 600})
		case "/auth/otp/verify":
			json.NewEncoder(w).Encode(sim.Session{
				Token: "tok-abc",
				User:  models.User{ID: 1, Name: "Demo User"},
			})
		case "/requests/status/pending":
			sawAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode([]models.Request{})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, time.Second)
	ctx := context.Background()

	ttl, err := r.SendOTP(ctx, 1)
	if err != nil || ttl != 10*time.Minute {
		t.Fatalf("SendOTP() = %v, %v", ttl, err)
	}
	sess, err := r.VerifyOTP(ctx, 1, "1234")
	if err != nil || sess.Token != "tok-abc" {
		t.Fatalf("VerifyOTP() = %+v, %v", sess, err)
	}
	if _, err := r.PendingRequests(ctx); err != nil {
		t.Fatalf("PendingRequests() failed: %v", err)
	}
	if sawAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q, want bearer token from verify", sawAuth)
	}
}

func TestRemote_Paths(t *testing.T) {
	type hit struct{ method, path string }
	var got hit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = hit{r.Method, r.URL.RequestURI()}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL+"/", time.Second) // trailing slash is trimmed
	ctx := context.Background()

	calls := []struct {
		name string
		call func() error
		want hit
	}{
		{"GetUser", func() error { _, err := r.GetUser(ctx, 3); return err }, hit{"GET", "/users/3"}},
		{"UpdateUser", func() error { _, err := r.UpdateUser(ctx, 3, sim.UserPatch{}); return err }, hit{"PUT", "/users/3"}},
		{"DeleteUser", func() error { return r.DeleteUser(ctx, 3) }, hit{"DELETE", "/users/3"}},
		{"CreateEquipment", func() error { _, err := r.CreateEquipment(ctx, sim.CreateEquipmentInput{}); return err }, hit{"POST", "/equipments"}},
		{"UpdateEquipment", func() error { _, err := r.UpdateEquipment(ctx, 9, sim.EquipmentPatch{}); return err }, hit{"PUT", "/equipments/9"}},
		{"DeleteEquipment", func() error { return r.DeleteEquipment(ctx, 9) }, hit{"DELETE", "/equipments/9"}},
		{"CreateRequest", func() error { _, err := r.CreateRequest(ctx, sim.CreateRequestInput{}); return err }, hit{"POST", "/requests"}},
		{"MyRequests", func() error { _, err := r.MyRequests(ctx, 4); return err }, hit{"GET", "/requests/user?userId=4"}},
		{"Approve", func() error { _, err := r.ApproveRequest(ctx, 5); return err }, hit{"POST", "/requests/5/approve"}},
		{"Reject", func() error { _, err := r.RejectRequest(ctx, 5); return err }, hit{"POST", "/requests/5/reject"}},
		{"Return", func() error { _, err := r.ReturnRequest(ctx, 5); return err }, hit{"POST", "/requests/5/return"}},
	}
	for _, tc := range calls {
		if err := tc.call(); err != nil {
			t.Errorf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s hit %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRemote_ListEquipmentDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/equipments" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]models.Equipment{
			{ID: 1, Name: "Digital Camera", TotalStock: 5, AvailableStock: 5},
		})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, time.Second)
	items, err := r.ListEquipment(context.Background())
	if err != nil || len(items) != 1 || items[0].Name != "Digital Camera" {
		t.Fatalf("ListEquipment() = %+v, %v", items, err)
	}
}

func TestRemote_StatusErrors(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusNotFound, `{"error":"equipment not found"}`, models.ErrNotFound},
		{http.StatusBadRequest, `{"error":"quantity exceeds stock"}`, models.ErrValidation},
		{http.StatusUnprocessableEntity, `{"error":"bad payload"}`, models.ErrValidation},
		{http.StatusConflict, `{"error":"stale version"}`, models.ErrValidation},
		{http.StatusGone, `{"error":"verification code expired"}`, models.ErrCodeExpired},
		{http.StatusUnauthorized, `{"error":"verification code mismatch"}`, models.ErrCodeMismatch},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))
		r := NewRemote(srv.URL, time.Second)
		_, err := r.ApproveRequest(context.Background(), 1)
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestRemote_UnauthorizedWithoutCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"missing bearer token"}`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, time.Second)
	_, err := r.PendingRequests(context.Background())
	if err == nil || errors.Is(err, models.ErrCodeMismatch) {
		t.Errorf("plain 401 should not map to a code mismatch: %v", err)
	}
}

func TestRemote_LogoutClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, time.Second)
	r.SetToken("tok")
	if err := r.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if got := r.bearer(); got != "" {
		t.Errorf("token after logout = %q", got)
	}
}
