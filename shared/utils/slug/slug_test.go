package slug

import "testing"

func TestMake(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Acme Inc", "acme-inc"},
		{"  Acme   Inc  ", "acme-inc"},
		{"Acme, Inc.", "acme-inc"},
		{"ACME!!!", "acme"},
		{"Team #42 / Ops", "team-42-ops"},
		{"--already--slugged--", "already-slugged"},
	}

	for _, tc := range cases {
		if got := Make(tc.name); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestGenerateNoCollision(t *testing.T) {
	got, err := Generate("Acme Inc", func(string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "acme-inc" {
		t.Errorf("got %q, want %q", got, "acme-inc")
	}
}

func TestGenerateResolvesCollisions(t *testing.T) {
	taken := map[string]bool{
		"acme-inc":   true,
		"acme-inc-2": true,
	}

	got, err := Generate("Acme Inc", func(candidate string) (bool, error) {
		return taken[candidate], nil
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "acme-inc-3" {
		t.Errorf("got %q, want %q", got, "acme-inc-3")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	exists := func(string) (bool, error) { return false, nil }

	first, err := Generate("Acme Inc", exists)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := Generate("Acme Inc", exists)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if first != second {
		t.Errorf("expected deterministic slugs, got %q and %q", first, second)
	}
}
