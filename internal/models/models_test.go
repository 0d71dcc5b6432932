package models

import "testing"

func TestConversationKeySymmetry(t *testing.T) {
	a := "0b1f8e4a-1111-4a2b-8c3d-000000000001"
	b := "f4d2c9aa-2222-4e5f-9a1b-000000000002"

	k1 := NewConversationKey(a, b)
	k2 := NewConversationKey(b, a)

	if k1 != k2 {
		t.Fatalf("key not symmetric: %v vs %v", k1, k2)
	}
	if !k1.Contains(a) || !k1.Contains(b) {
		t.Error("key does not contain its own participants")
	}
	if k1.Contains("other") {
		t.Error("key claims to contain a stranger")
	}
}

func TestConversationKeyPeer(t *testing.T) {
	k := NewConversationKey("bbb", "aaa")

	if got := k.Peer("aaa"); got != "bbb" {
		t.Errorf("Peer(aaa) = %q, want bbb", got)
	}
	if got := k.Peer("bbb"); got != "aaa" {
		t.Errorf("Peer(bbb) = %q, want aaa", got)
	}
}

func TestConversationKeyMatches(t *testing.T) {
	k := NewConversationKey("aaa", "bbb")

	tests := []struct {
		name   string
		msg    Message
		expect bool
	}{
		{"a to b", Message{SenderID: "aaa", ReceiverID: "bbb"}, true},
		{"b to a", Message{SenderID: "bbb", ReceiverID: "aaa"}, true},
		{"stranger sender", Message{SenderID: "ccc", ReceiverID: "bbb"}, false},
		{"stranger receiver", Message{SenderID: "aaa", ReceiverID: "ccc"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.Matches(&tt.msg); got != tt.expect {
				t.Errorf("Matches() = %v, want %v", got, tt.expect)
			}
		})
	}
}
