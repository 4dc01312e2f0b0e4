package github

import (
	"regexp"
	"strconv"
	"strings"
)

// Mention is the trigger token. It must appear as a whole word in the
// comment body; "@smolpawsbot" is somebody else.
const Mention = "@smolpaws"

var (
	mentionRe = regexp.MustCompile(`(?i)(^|\s)` + Mention + `\b`)
	stripRe   = regexp.MustCompile(`(?i)` + Mention)
)

// ClassifyEvent maps the X-GitHub-Event header to an in-scope event kind.
// Everything else is ignored, which is not an error.
func ClassifyEvent(header string) (EventKind, bool) {
	switch EventKind(header) {
	case EventIssueComment, EventPullRequestReviewComment:
		return EventKind(header), true
	}
	return "", false
}

// ContainsMention reports whether the comment body mentions the bot as a
// whole word, case-insensitively.
func ContainsMention(body string) bool {
	return mentionRe.MatchString(body)
}

// StripMention removes every occurrence of the mention token from the body
// and trims the remainder. The result is the prompt handed to the agent.
func StripMention(body string) string {
	return strings.TrimSpace(stripRe.ReplaceAllString(body, ""))
}

// AllowList filters events by actor, repository owner, repository full name
// and installation id. Each dimension is an independent set of lowercase
// strings; an empty set allows everything for that dimension. The sets are
// evaluated as a logical AND.
type AllowList struct {
	Actors        map[string]struct{}
	Owners        map[string]struct{}
	Repos         map[string]struct{}
	Installations map[string]struct{}
}

// NewAllowList builds a policy from comma-separated environment values.
func NewAllowList(actors, owners, repos, installations string) AllowList {
	return AllowList{
		Actors:        parseList(actors),
		Owners:        parseList(owners),
		Repos:         parseList(repos),
		Installations: parseList(installations),
	}
}

func parseList(value string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, item := range strings.Split(value, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

// Allows reports whether the payload passes every non-empty dimension.
func (a AllowList) Allows(payload *EventPayload) bool {
	var actor, owner, repo, installation string
	if payload.Sender != nil {
		actor = strings.ToLower(payload.Sender.Login)
	}
	if payload.Repository != nil {
		repo = strings.ToLower(payload.Repository.FullName)
		if payload.Repository.Owner != nil {
			owner = strings.ToLower(payload.Repository.Owner.Login)
		}
	}
	if payload.Installation != nil {
		installation = strconv.FormatInt(payload.Installation.ID, 10)
	}

	if !matches(a.Actors, actor) {
		return false
	}
	if !matches(a.Owners, owner) {
		return false
	}
	if !matches(a.Repos, repo) {
		return false
	}
	return matches(a.Installations, installation)
}

func matches(set map[string]struct{}, value string) bool {
	if len(set) == 0 {
		return true
	}
	if value == "" {
		return false
	}
	_, ok := set[value]
	return ok
}
