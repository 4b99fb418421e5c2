package models

import (
	"strings"
	"testing"
)

func TestFormStateValidate(t *testing.T) {
	valid := FormState{
		PersonA:   Person{Name: "Maria", Phone: "+34600111222", Email: "maria@example.com"},
		PersonB:   Person{Name: "Jon"},
		EventDate: "12-09-2026",
		ImagePath: "/tmp/couple.jpg",
	}

	t.Run("complete form passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("partner B contact details are optional", func(t *testing.T) {
		form := valid
		form.PersonB.Phone = ""
		form.PersonB.Email = ""
		if err := form.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("reports all missing fields together", func(t *testing.T) {
		err := FormState{}.Validate()
		if err == nil {
			t.Fatal("expected an error")
		}
		for _, field := range []string{"name 1", "phone 1", "email 1", "name 2", "date", "image"} {
			if !strings.Contains(err.Error(), field) {
				t.Errorf("expected %q in %q", field, err.Error())
			}
		}
	})

	t.Run("whitespace-only name is missing", func(t *testing.T) {
		form := valid
		form.PersonA.Name = "   "
		err := form.Validate()
		if err == nil || !strings.Contains(err.Error(), "name 1") {
			t.Errorf("expected a name 1 error, got %v", err)
		}
	})
}

func TestFormStateHasNames(t *testing.T) {
	form := FormState{PersonA: Person{Name: "Ana"}, PersonB: Person{Name: "Luis"}}
	if !form.HasNames() {
		t.Error("expected both names present")
	}
	form.PersonB.Name = " "
	if form.HasNames() {
		t.Error("expected a blank name to count as missing")
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ISO date converted", "2026-09-12", "12-09-2026"},
		{"already normalized", "12-09-2026", "12-09-2026"},
		{"free-form passthrough", "next summer", "next summer"},
		{"empty passthrough", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeDate(tc.input); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestArtifactResolved(t *testing.T) {
	tests := []struct {
		name     string
		artifact Artifact
		expected bool
	}{
		{"pending", Artifact{}, false},
		{"loading", Artifact{Loading: true}, false},
		{"succeeded", Artifact{URL: "http://localhost:8000/api/media/poster.mp4"}, true},
		{"failed", Artifact{Error: "generation failed"}, true},
		{"placeholder success", Artifact{URL: "http://localhost:8000/api/media/placeholder.mp4", IsPlaceholder: true}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.artifact.Resolved(); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestArtifactKindString(t *testing.T) {
	kinds := map[ArtifactKind]string{
		PosterImage: "poster_image",
		PosterVideo: "poster_video",
		Polaroid:    "polaroid",
		CoupleVideo: "couple_video",
		FinalVideo:  "final_video",
	}
	for kind, expected := range kinds {
		if got := kind.String(); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	}
}

func TestRunValidate(t *testing.T) {
	t.Run("requires ID", func(t *testing.T) {
		run := Run{FinalVideoURL: "http://localhost:8000/api/media/final.mp4"}
		if err := run.Validate(); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("requires final video URL", func(t *testing.T) {
		run := Run{ID: "run-1"}
		if err := run.Validate(); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("accepts a complete run", func(t *testing.T) {
		run := Run{ID: "run-1", FinalVideoURL: "http://localhost:8000/api/media/final.mp4"}
		if err := run.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
