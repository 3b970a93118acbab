package milestones

import (
	"testing"
	"time"

	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
)

func TestMilestoneSatisfied(t *testing.T) {
	cases := []struct {
		name     string
		m        Milestone
		count    int
		total    int
		expected bool
	}{
		{"zero requirements", Milestone{}, 0, 0, true},
		{"count short", Milestone{CountRequirement: 2}, 1, 10, false},
		{"count met", Milestone{CountRequirement: 2}, 2, 0, true},
		{"score short", Milestone{CountRequirement: 1, MinScoreRequirement: 9}, 2, 5, false},
		{"both met", Milestone{CountRequirement: 2, MinScoreRequirement: 9}, 2, 9, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.Satisfied(tc.count, tc.total); got != tc.expected {
				t.Fatalf("Satisfied(%d,%d): want=%v got=%v", tc.count, tc.total, tc.expected, got)
			}
		})
	}
}

func TestProgressCreditAchievesOnSecondBlock(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := &Milestone{CountRequirement: 2}
	p := &MilestoneProgress{}

	if p.Credit(m, 1, now) {
		t.Fatalf("first block should not achieve")
	}
	if !p.Credit(m, 1, now) {
		t.Fatalf("second block should achieve")
	}
	if !p.Achieved || p.AchievedAt == nil || !p.AchievedAt.Equal(now) {
		t.Fatalf("achieved state not recorded: %+v", p)
	}
	if p.Credit(m, 1, now) {
		t.Fatalf("already achieved progress must not report just-achieved again")
	}
	if p.Count != 3 || p.TotalScore != 3 {
		t.Fatalf("totals: count=%d total=%d", p.Count, p.TotalScore)
	}
}

func TestProgressRecomputeNeverReverts(t *testing.T) {
	now := time.Now()
	m := &Milestone{CountRequirement: 1, MinScoreRequirement: 5}
	p := &MilestoneProgress{Achieved: true, Count: 1, TotalScore: 5}
	if p.Recompute(m, 1, 0, now) {
		t.Fatalf("recompute should not report achievement")
	}
	if !p.Achieved {
		t.Fatalf("achieved reverted")
	}
	if p.TotalScore != 0 {
		t.Fatalf("total not replaced: %d", p.TotalScore)
	}
}

func TestTypeForBlock(t *testing.T) {
	got, ok := TypeForBlock(courses.BlockTypeAssessment)
	if !ok || got != TypeCorrectAnswers {
		t.Fatalf("assessment: got=%s ok=%v", got, ok)
	}
	if _, ok := TypeForBlock(courses.BlockTypeHTMLContent); ok {
		t.Fatalf("html content should not be trackable")
	}
}
