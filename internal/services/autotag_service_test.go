package services

import (
	"testing"

	"paisa/internal/models"
	"paisa/internal/pagination"
	"paisa/internal/testutil"
)

func TestNormalizePattern(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips_digits", "UPI-4521-Uber Trip 20250101", "upi--uber trip"},
		{"collapses_whitespace", "  Big   Bazaar  ", "big bazaar"},
		{"lowercases", "AMAZON PAY", "amazon pay"},
		{"empty_after_strip", "123456", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePattern(tc.in); got != tc.want {
				t.Errorf("NormalizePattern(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	t.Run("truncates_to_50_runes", func(t *testing.T) {
		long := "abcdefghij abcdefghij abcdefghij abcdefghij abcdefghij abcdefghij"
		got := NormalizePattern(long)
		if len([]rune(got)) > 50 {
			t.Errorf("expected at most 50 runes, got %d", len([]rune(got)))
		}
	})
}

func TestLearnAndMatch(t *testing.T) {
	t.Run("recalls_learned_description", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAutotagService(db)
		transport := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		testutil.AssertNoError(t, svc.Learn("Uber 4521 Trip", &transport.ID, nil))

		match, err := svc.Match("UBER 9987 TRIP")
		testutil.AssertNoError(t, err)
		if match == nil {
			t.Fatal("expected a match for a repeated description")
		}
		if match.CategoryID == nil || *match.CategoryID != transport.ID {
			t.Error("expected match to carry the learned category")
		}
	})

	t.Run("no_match_for_unseen_description", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAutotagService(db)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		testutil.AssertNoError(t, svc.Learn("Uber Trip", &cat.ID, nil))

		match, err := svc.Match("Electricity bill")
		testutil.AssertNoError(t, err)
		if match != nil {
			t.Errorf("expected no match, got pattern %q", match.Pattern)
		}
	})

	t.Run("oldest_pattern_wins", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAutotagService(db)
		first := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)
		second := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		testutil.AssertNoError(t, svc.Learn("Swiggy", &first.ID, nil))
		testutil.AssertNoError(t, svc.Learn("Swiggy Instamart", &second.ID, nil))

		match, err := svc.Match("Swiggy Instamart order 42")
		testutil.AssertNoError(t, err)
		if match == nil {
			t.Fatal("expected a match")
		}
		if match.CategoryID == nil || *match.CategoryID != first.ID {
			t.Error("expected the older pattern to win")
		}
	})

	t.Run("relearning_updates_existing_pattern", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAutotagService(db)
		old := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)
		fresh := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		testutil.AssertNoError(t, svc.Learn("Uber Trip 1", &old.ID, nil))
		testutil.AssertNoError(t, svc.Learn("Uber Trip 2", &fresh.ID, nil))

		var count int64
		testutil.AssertNoError(t, db.Model(&models.TagPattern{}).Count(&count).Error)
		if count != 1 {
			t.Fatalf("expected a single pattern row, got %d", count)
		}

		match, err := svc.Match("Uber Trip 3")
		testutil.AssertNoError(t, err)
		if match == nil || match.CategoryID == nil || *match.CategoryID != fresh.ID {
			t.Error("expected relearned pattern to carry the newer category")
		}
	})

	t.Run("nothing_learned_without_tag", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAutotagService(db)

		testutil.AssertNoError(t, svc.Learn("Uber Trip", nil, nil))

		var count int64
		testutil.AssertNoError(t, db.Model(&models.TagPattern{}).Count(&count).Error)
		if count != 0 {
			t.Errorf("expected no pattern rows, got %d", count)
		}
	})
}

func TestDeletePattern(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAutotagService(db)
	cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

	testutil.AssertNoError(t, svc.Learn("Uber Trip", &cat.ID, nil))

	page, err := svc.GetPatterns(pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 1 {
		t.Fatalf("expected 1 pattern, got %d", page.TotalItems)
	}

	testutil.AssertNoError(t, svc.DeletePattern(page.Data[0].ID))
	testutil.AssertAppError(t, svc.DeletePattern(page.Data[0].ID), "TAG_PATTERN_NOT_FOUND")
}
