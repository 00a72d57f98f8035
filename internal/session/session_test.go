package session

import (
	"testing"

	"github.com/DomDom3333/GameFinder/internal/matching"
)

func TestAddMemberGrantsAdminToFirstJoiner(t *testing.T) {
	sess := newSession("ABCD")

	if !sess.AddMember("c1", []string{"A"}, nil) {
		t.Fatalf("first joiner should be admin")
	}
	if sess.AddMember("c2", []string{"B"}, nil) {
		t.Fatalf("second joiner should not be admin")
	}
	if sess.Admin() != "c1" {
		t.Fatalf("expected c1 admin, got %s", sess.Admin())
	}
}

func TestAdminAlwaysMemberInvariant(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("c1", nil, nil)
	sess.AddMember("c2", nil, nil)
	sess.AddMember("c3", nil, nil)

	checkInvariant := func() {
		t.Helper()
		admin := sess.Admin()
		if admin == "" {
			if len(sess.Members()) != 0 {
				t.Fatalf("admin cleared while members remain")
			}
			return
		}
		if !sess.HasMember(admin) {
			t.Fatalf("admin %s is not a member", admin)
		}
	}

	checkInvariant()
	res := sess.RemoveMember("c1")
	if !res.AdminChanged || res.NewAdmin != "c2" {
		t.Fatalf("expected promotion of c2 (join order), got %+v", res)
	}
	checkInvariant()

	sess.RemoveMember("c2")
	checkInvariant()
	res = sess.RemoveMember("c3")
	if !res.Empty {
		t.Fatalf("expected empty session")
	}
	if sess.Admin() != "" {
		t.Fatalf("admin role must be cleared when no members remain")
	}
}

func TestRemoveAbsentMemberIsNoOp(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("c1", nil, nil)

	if res := sess.RemoveMember("ghost"); res.Removed {
		t.Fatalf("removing an absent member must be a no-op")
	}
	// Leave racing a disconnect: second removal is a no-op too.
	if res := sess.RemoveMember("c1"); !res.Removed {
		t.Fatalf("first removal should succeed")
	}
	if res := sess.RemoveMember("c1"); res.Removed {
		t.Fatalf("second removal must be a no-op")
	}
}

func TestRecordSwipeFiresMatchOnce(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("x", nil, nil)
	sess.AddMember("y", nil, nil)

	if sess.RecordSwipe("x", "g1", true) {
		t.Fatalf("no match before every member swiped")
	}
	if !sess.RecordSwipe("y", "g1", true) {
		t.Fatalf("expected match when last member swipes yes")
	}
	// Repeat evaluation is idempotent and must not re-fire.
	if sess.RecordSwipe("y", "g1", true) {
		t.Fatalf("match event must fire exactly once")
	}

	matched := sess.Matched()
	if len(matched) != 1 || matched[0] != "g1" {
		t.Fatalf("expected matched set {g1}, got %v", matched)
	}
}

func TestRecordSwipeOverwriteRevokesMatch(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("x", nil, nil)
	sess.AddMember("y", nil, nil)

	sess.RecordSwipe("x", "g1", true)
	sess.RecordSwipe("y", "g1", true)

	// y changes their mind; the latest decision wins.
	sess.RecordSwipe("y", "g1", false)
	if len(sess.Matched()) != 0 {
		t.Fatalf("match must be revoked when a member flips to no")
	}

	// Flipping back re-fires the match transition.
	if !sess.RecordSwipe("y", "g1", true) {
		t.Fatalf("expected match to fire again after flip back to yes")
	}
}

func TestLeaveRecomputesMatches(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("x", nil, nil)
	sess.AddMember("y", nil, nil)

	sess.RecordSwipe("x", "g1", true)
	sess.RecordSwipe("y", "g1", true)
	sess.RecordSwipe("y", "g2", true)

	// y leaves: their swipes are purged and the matched set is recomputed
	// against the remaining membership. g1 still qualifies because x, the
	// single remaining member, said yes; g2 loses its only vote entirely.
	sess.RemoveMember("y")

	matched := sess.Matched()
	if len(matched) != 1 || matched[0] != "g1" {
		t.Fatalf("expected g1 to re-qualify for single remaining member, got %v", matched)
	}

	summaries := sess.Summaries()
	if len(summaries) != 1 || summaries[0].ID != "g1" || summaries[0].Likes != 1 {
		t.Fatalf("expected purged swipes to vanish from summaries, got %+v", summaries)
	}
}

func TestLeaveRevokesMatchForRemainingDissenter(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("x", nil, nil)
	sess.AddMember("y", nil, nil)
	sess.AddMember("z", nil, nil)

	sess.RecordSwipe("x", "g1", true)
	sess.RecordSwipe("y", "g1", true)
	sess.RecordSwipe("z", "g1", true)
	if len(sess.Matched()) != 1 {
		t.Fatalf("expected g1 matched")
	}

	// z departs; x and y both said yes so the match survives.
	sess.RemoveMember("z")
	if len(sess.Matched()) != 1 {
		t.Fatalf("match should survive when all remaining members said yes")
	}

	// y never swiped g2, so a yes from x alone cannot match while y remains.
	sess.RecordSwipe("x", "g2", true)
	matched := sess.Matched()
	if len(matched) != 1 || matched[0] != "g1" {
		t.Fatalf("expected only g1 matched, got %v", matched)
	}
}

func TestLateJoinerGainsNoRetroactiveSwipes(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("x", nil, nil)
	sess.RecordSwipe("x", "g1", true)

	sess.AddMember("late", nil, nil)
	// g1 was matched for the solo member; the new joiner has no recorded
	// swipe, so a recompute must not count them as a yes.
	sess.RemoveMember("x")
	if len(sess.Matched()) != 0 {
		t.Fatalf("late joiner must not inherit swipe entries, got %v", sess.Matched())
	}
}

func TestLeaveRecomputesCandidatesBeforeStart(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("c1", []string{"A", "B"}, nil)
	sess.AddMember("c2", []string{"B"}, nil)
	sess.AddMember("c3", []string{"C"}, nil)

	sess.RemoveMember("c3")
	got := sess.Candidates()
	if len(got) != 1 || got[0] != "B" {
		t.Fatalf("expected candidates recomputed to {B}, got %v", got)
	}
}

func TestStartRequiresAdmin(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("c1", []string{"A"}, nil)
	sess.AddMember("c2", []string{"A"}, nil)

	if _, err := sess.Start("c2", matching.FilterOptions{}); err != ErrNotAdmin {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}

	games, err := sess.Start("c1", matching.FilterOptions{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(games) != 1 || games[0] != "A" {
		t.Fatalf("expected candidates {A}, got %v", games)
	}
}

func TestSnapshotPrunesStaleConnections(t *testing.T) {
	sess := newSession("ABCD")
	sess.AddMember("c1", nil, nil)
	sess.AddMember("c2", nil, nil)

	names := map[string]string{"c2": "bob"}
	nameOf := func(connID string) (string, bool) {
		name, ok := names[connID]
		return name, ok
	}

	// c1 has no name mapping: it is stale and must be reconciled away, with
	// the admin role moving to the first surviving member.
	roster, admin := sess.Snapshot(nameOf)
	if len(roster) != 1 || roster[0] != "bob" {
		t.Fatalf("expected roster [bob], got %v", roster)
	}
	if admin != "bob" {
		t.Fatalf("expected admin handed to bob, got %q", admin)
	}
	if sess.HasMember("c1") {
		t.Fatalf("stale member should have been pruned")
	}
}
