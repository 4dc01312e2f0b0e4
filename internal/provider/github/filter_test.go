package github

import "testing"

func TestClassifyEvent(t *testing.T) {
	tests := []struct {
		header string
		want   EventKind
		ok     bool
	}{
		{"issue_comment", EventIssueComment, true},
		{"pull_request_review_comment", EventPullRequestReviewComment, true},
		{"pull_request", "", false},
		{"push", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ClassifyEvent(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ClassifyEvent(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestContainsMention(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"@smolpaws please help", true},
		{"hey @SMOLPAWS", true},
		{"@smolpaws: fix this", true},
		{"@smolpaws", true},
		{"notasmolpaws", false},
		{"@smolpawsbot do it", false},
		{"email@smolpaws nope", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ContainsMention(tt.body); got != tt.want {
			t.Errorf("ContainsMention(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestStripMention(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"@smolpaws fix the bug", "fix the bug"},
		{"@SMOLPAWS", ""},
		{"please @smolpaws help", "please  help"},
	}
	for _, tt := range tests {
		if got := StripMention(tt.body); got != tt.want {
			t.Errorf("StripMention(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestAllowListEmptyAllowsAll(t *testing.T) {
	policy := NewAllowList("", "", "", "")
	payload := &EventPayload{
		Sender:       &User{Login: "anyone"},
		Repository:   &Repository{FullName: "org/repo", Owner: &User{Login: "org"}},
		Installation: &Installation{ID: 42},
	}
	if !policy.Allows(payload) {
		t.Error("empty allow list should allow everything")
	}
	if !policy.Allows(&EventPayload{}) {
		t.Error("empty allow list should allow payloads with missing fields")
	}
}

func TestAllowListCaseFolding(t *testing.T) {
	policy := NewAllowList("alice, Bob", "", "", "")

	allowed := &EventPayload{Sender: &User{Login: "Alice"}}
	if !policy.Allows(allowed) {
		t.Error("sender Alice should match actor allow list entry alice")
	}
	rejected := &EventPayload{Sender: &User{Login: "carol"}}
	if policy.Allows(rejected) {
		t.Error("sender carol should be rejected")
	}
	missing := &EventPayload{}
	if policy.Allows(missing) {
		t.Error("payload without sender should be rejected when actors are restricted")
	}
}

func TestAllowListAllDimensions(t *testing.T) {
	policy := NewAllowList("alice", "org", "org/repo", "42")
	payload := &EventPayload{
		Sender:       &User{Login: "alice"},
		Repository:   &Repository{FullName: "Org/Repo", Owner: &User{Login: "ORG"}},
		Installation: &Installation{ID: 42},
	}
	if !policy.Allows(payload) {
		t.Error("payload matching every dimension should be allowed")
	}

	payload.Installation.ID = 43
	if policy.Allows(payload) {
		t.Error("non-matching installation id should reject despite other matches")
	}
}

func TestIssueNumber(t *testing.T) {
	tests := []struct {
		name    string
		payload EventPayload
		want    int
		ok      bool
	}{
		{"issue", EventPayload{Issue: &Issue{Number: 7}}, 7, true},
		{"pull request", EventPayload{PullRequest: &PullRequestRef{Number: 5}}, 5, true},
		{"issue wins over pr", EventPayload{Issue: &Issue{Number: 7}, PullRequest: &PullRequestRef{Number: 5}}, 7, true},
		{"neither", EventPayload{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.payload.IssueNumber()
			if got != tt.want || ok != tt.ok {
				t.Errorf("IssueNumber() = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
