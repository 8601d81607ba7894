package telegram

import "testing"

func TestGateDisabledWithoutChannel(t *testing.T) {
	_, srv := newFakeAPI()
	defer srv.Close()

	gate := NewAccessGate(testClient(srv), "")
	if !gate.IsAuthorized(100) {
		t.Fatal("gate without a channel must allow everyone")
	}
}

func TestGateMembershipStatuses(t *testing.T) {
	api, srv := newFakeAPI()
	defer srv.Close()
	gate := NewAccessGate(testClient(srv), "@channel")

	cases := []struct {
		status string
		want   bool
	}{
		{"member", true},
		{"administrator", true},
		{"creator", true},
		{"left", false},
		{"kicked", false},
		{"restricted", false},
	}
	for _, tc := range cases {
		api.responses["getChatMember"] = `{"ok":true,"result":{"status":"` + tc.status + `"}}`
		if got := gate.IsAuthorized(100); got != tc.want {
			t.Fatalf("status %q: got %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestGateFailsClosedOnError(t *testing.T) {
	api, srv := newFakeAPI()
	defer srv.Close()
	api.responses["getChatMember"] = `{"ok":false,"description":"Bad Request: user not found"}`

	gate := NewAccessGate(testClient(srv), "@channel")
	if gate.IsAuthorized(100) {
		t.Fatal("API errors must deny access")
	}
}

func TestChannelURL(t *testing.T) {
	gate := NewAccessGate(nil, "@mychannel")
	if got := gate.ChannelURL(); got != "https://t.me/mychannel" {
		t.Fatalf("channel url: %q", got)
	}
}
