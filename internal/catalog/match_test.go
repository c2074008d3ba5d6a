package catalog

import "testing"

func testCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := New(
		Questions{
			Age:      "age?",
			Location: "location?",
			Shift:    "shift?",
			Weekends: "weekends?",
		},
		[]Location{
			{
				Key:      "jaral",
				Name:     "Jaral del Progreso",
				Keywords: []string{"jaral", "jaral del progreso"},
				Branches: []Branch{
					{
						Key:      "sucursal-jaral",
						Name:     "Sucursal Jaral",
						Phone:    "411 688 2261",
						Address:  "Porfirio Díaz 141",
						Keywords: []string{"jaral", "porfirio diaz"},
					},
				},
			},
			{
				Key:      "queretaro",
				Name:     "Querétaro",
				Keywords: []string{"queretaro", "qro"},
				Branches: []Branch{
					{
						Key:      "queretaro-centro",
						Name:     "Sucursal Querétaro Centro",
						Phone:    "442 212 4478",
						Address:  "Av. Corregidora Nte. 62",
						Keywords: []string{"centro", "corregidora"},
					},
					{
						Key:      "queretaro-juriquilla",
						Name:     "Sucursal Juriquilla",
						Phone:    "442 234 0915",
						Address:  "Blvd. Juriquilla 3100",
						Keywords: []string{"juriquilla"},
					},
				},
			},
		},
	)
	if err != nil {
		t.Fatalf("building test catalog: %v", err)
	}
	return c
}

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Querétaro", "queretaro"},
		{"SÍ", "si"},
		{"ya", "ya"},
		{"  jaral   del  PROGRESO ", "jaral del progreso"},
	}

	for _, tc := range cases {
		if got := Fold(tc.in); got != tc.want {
			t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveLocationByKeyword(t *testing.T) {
	c := testCatalog(t)

	loc := c.ResolveLocation("me gustaría trabajar en jaral del progreso")
	if loc == nil || loc.Key != "jaral" {
		t.Fatalf("expected jaral, got %+v", loc)
	}

	loc = c.ResolveLocation("Querétaro")
	if loc == nil || loc.Key != "queretaro" {
		t.Fatalf("expected queretaro, got %+v", loc)
	}
}

func TestResolveLocationNoMatch(t *testing.T) {
	c := testCatalog(t)

	if loc := c.ResolveLocation("guadalajara"); loc != nil {
		t.Fatalf("expected no match, got %q", loc.Key)
	}
	if loc := c.ResolveLocation(""); loc != nil {
		t.Fatalf("expected no match for empty text, got %q", loc.Key)
	}
}

// Every authored keyword must resolve back to its own entry.
func TestKeywordRoundTrip(t *testing.T) {
	c := testCatalog(t)

	for i := range c.Locations {
		loc := &c.Locations[i]
		for _, kw := range loc.Keywords {
			got := c.ResolveLocation(kw)
			if got == nil {
				t.Fatalf("location keyword %q resolved to nothing", kw)
			}
			// A keyword may legitimately be shadowed by an earlier entry;
			// within this catalog the keyword sets are disjoint.
			if got.Key != loc.Key {
				t.Fatalf("location keyword %q resolved to %q, want %q", kw, got.Key, loc.Key)
			}
		}

		for j := range loc.Branches {
			br := &loc.Branches[j]
			for _, kw := range br.Keywords {
				got := loc.ResolveBranch(kw)
				if got == nil {
					t.Fatalf("branch keyword %q resolved to nothing", kw)
				}
				if got.Key != br.Key {
					t.Fatalf("branch keyword %q resolved to %q, want %q", kw, got.Key, br.Key)
				}
			}
		}
	}
}

// Resolution is first-match in catalog order, not longest-match. A text
// containing keywords of two locations resolves to the earlier one.
func TestResolveLocationFirstMatchWins(t *testing.T) {
	c := testCatalog(t)

	loc := c.ResolveLocation("jaral o queretaro, cualquiera")
	if loc == nil || loc.Key != "jaral" {
		t.Fatalf("expected first catalog entry to win, got %+v", loc)
	}
}

func TestResolveBranchWithinLocation(t *testing.T) {
	c := testCatalog(t)
	loc := c.LocationByKey("queretaro")
	if loc == nil {
		t.Fatalf("missing queretaro location")
	}

	br := loc.ResolveBranch("la de juriquilla por favor")
	if br == nil || br.Key != "queretaro-juriquilla" {
		t.Fatalf("expected juriquilla, got %+v", br)
	}

	if br := loc.ResolveBranch("la del aeropuerto"); br != nil {
		t.Fatalf("expected no match, got %q", br.Key)
	}
}

func TestFindBranch(t *testing.T) {
	c := testCatalog(t)

	br := c.FindBranch("Sucursal Jaral")
	if br == nil || br.Phone != "411 688 2261" {
		t.Fatalf("expected Sucursal Jaral with phone, got %+v", br)
	}

	if br := c.FindBranch("Sucursal Inexistente"); br != nil {
		t.Fatalf("expected nil for unknown branch name, got %+v", br)
	}
}
