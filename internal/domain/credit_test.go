package domain

import "testing"

func TestCostFor(t *testing.T) {
	cases := []struct {
		name       string
		kind       TaskKind
		resolution string
		want       CreditType
	}{
		{"image default", TaskKindImage, "", CreditTypeImageStandard},
		{"image 1K", TaskKindImage, "1K", CreditTypeImageStandard},
		{"image 2K", TaskKindImage, "2K", CreditTypeImageHigh},
		{"image 2k lowercase", TaskKindImage, "2k", CreditTypeImageHigh},
		{"image 2K padded", TaskKindImage, " 2K ", CreditTypeImageHigh},
		{"video ignores resolution", TaskKindVideo, "2K", CreditTypeVideo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CostFor(tc.kind, tc.resolution); got != tc.want {
				t.Errorf("CostFor(%q, %q) = %q, want %q", tc.kind, tc.resolution, got, tc.want)
			}
		})
	}
}

func TestCreditCosts(t *testing.T) {
	if got := CreditTypeImageStandard.Cost(); got != 5 {
		t.Errorf("image_standard cost = %d, want 5", got)
	}
	if got := CreditTypeImageHigh.Cost(); got != 7 {
		t.Errorf("image_high cost = %d, want 7", got)
	}
	if got := CreditTypeVideo.Cost(); got != 20 {
		t.Errorf("video cost = %d, want 20", got)
	}
	if got := CreditType("bogus").Cost(); got != 0 {
		t.Errorf("unknown cost = %d, want 0", got)
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	if TaskStatusProcessing.Terminal() {
		t.Error("processing must not be terminal")
	}
	if !TaskStatusSuccess.Terminal() {
		t.Error("success must be terminal")
	}
	if !TaskStatusFail.Terminal() {
		t.Error("fail must be terminal")
	}
}
