package utils_test

import (
	"regexp"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/utils"
)

func TestGenerateReferralCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^USR-[A-Z0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			t.Fatalf("GenerateReferralCode: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Errorf("code %q does not match USR-XXXXXX format", code)
		}
	}
}

func TestBuildUplineOrdersNearestFirst(t *testing.T) {
	referrer := primitive.NewObjectID()
	grandparent := primitive.NewObjectID()
	great := primitive.NewObjectID()

	upline := utils.BuildUpline(referrer, []primitive.ObjectID{grandparent, great})

	want := []primitive.ObjectID{referrer, grandparent, great}
	if len(upline) != len(want) {
		t.Fatalf("got %d entries, want %d", len(upline), len(want))
	}
	for i := range want {
		if upline[i] != want[i] {
			t.Errorf("upline[%d] = %s, want %s", i, upline[i].Hex(), want[i].Hex())
		}
	}
}

func TestBuildUplineCapsAtMaxDepth(t *testing.T) {
	referrer := primitive.NewObjectID()
	referrerUpline := make([]primitive.ObjectID, models.MaxUplineDepth+10)
	for i := range referrerUpline {
		referrerUpline[i] = primitive.NewObjectID()
	}

	upline := utils.BuildUpline(referrer, referrerUpline)

	if len(upline) != models.MaxUplineDepth {
		t.Fatalf("got %d entries, want %d", len(upline), models.MaxUplineDepth)
	}
	if upline[0] != referrer {
		t.Error("referrer is not the first upline entry")
	}
	// Capping drops the most distant ancestors, never the nearest.
	if upline[models.MaxUplineDepth-1] != referrerUpline[models.MaxUplineDepth-2] {
		t.Error("cap removed the wrong end of the chain")
	}
}

func TestBuildUplineDoesNotAliasReferrerUpline(t *testing.T) {
	referrer := primitive.NewObjectID()
	original := []primitive.ObjectID{primitive.NewObjectID()}
	kept := original[0]

	upline := utils.BuildUpline(referrer, original)
	upline[1] = primitive.NewObjectID()

	if original[0] != kept {
		t.Error("mutating the built upline changed the referrer's upline")
	}
}
