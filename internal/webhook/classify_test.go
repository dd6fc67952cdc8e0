package webhook

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Kind
	}{
		{"Get Loan", KindReplyOption},
		{"get loan", KindReplyOption},
		{"  CHECK ELIGIBILITY  ", KindReplyOption},
		{"More Details", KindReplyOption},
		{"I am interested", KindInterested},
		{"i'm interested", KindInterested},
		{"Interested!", KindInterested},
		{"Very interested in a loan", KindInterested},
		{"hello", KindIgnored},
		{"", KindIgnored},
		{"loan please", KindIgnored},
	}

	for _, tt := range tests {
		if got := Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestReplyResponse(t *testing.T) {
	response, ok := ReplyResponse("Get Loan")
	if !ok {
		t.Fatal("expected response for Get Loan")
	}
	if !strings.Contains(response, "collateral free loans") {
		t.Errorf("unexpected get loan response: %s", response)
	}

	response, ok = ReplyResponse("check eligibility")
	if !ok {
		t.Fatal("expected response for check eligibility")
	}
	if !strings.Contains(response, "Documents Needed") {
		t.Errorf("unexpected eligibility response: %s", response)
	}

	if _, ok := ReplyResponse("something else"); ok {
		t.Error("unexpected response for unknown text")
	}
}

func TestIsReplyOption_RequiresExactMatch(t *testing.T) {
	// Substring matches must not count, only the bare option text
	if IsReplyOption("I want to get loan") {
		t.Error("embedded option text should not match")
	}
	if !IsReplyOption("GET LOAN") {
		t.Error("case-insensitive exact match should count")
	}
}
