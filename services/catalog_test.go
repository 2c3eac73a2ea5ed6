package services

import (
	"context"
	"testing"
)

func TestCompanyListCountsPeople(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	for _, name := range []string{"Acme", "Bolt", "Zenith"} {
		if _, err := svc.Companies.Create(ctx, owner, CompanyInput{Name: name}); err != nil {
			t.Fatalf("Companies.Create(%s): %v", name, err)
		}
	}
	mustPerson(t, svc, PersonInput{FirstName: "Alice", Company: "zenith"})
	mustPerson(t, svc, PersonInput{FirstName: "Bob", Company: "zenith"})
	mustPerson(t, svc, PersonInput{FirstName: "Carol", Company: "bolt"})

	companies, err := svc.Companies.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []struct {
		slug string
		n    int64
	}{{"zenith", 2}, {"bolt", 1}, {"acme", 0}}
	if len(companies) != len(want) {
		t.Fatalf("List returned %d companies, want %d", len(companies), len(want))
	}
	for i, w := range want {
		if companies[i].Slug != w.slug || companies[i].NumPeople != w.n {
			t.Errorf("List[%d] = %s/%d, want %s/%d", i, companies[i].Slug, companies[i].NumPeople, w.slug, w.n)
		}
	}

	used, err := svc.People.Companies(ctx, owner)
	if err != nil {
		t.Fatalf("People.Companies: %v", err)
	}
	if len(used) != 2 {
		t.Errorf("People.Companies = %d, want 2", len(used))
	}
}

func TestCompanyHardDeleteUnlinksPeople(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	if _, err := svc.Companies.Create(ctx, owner, CompanyInput{Name: "Acme"}); err != nil {
		t.Fatalf("Companies.Create: %v", err)
	}
	alice := mustPerson(t, svc, PersonInput{FirstName: "Alice", Company: "acme"})
	if err := svc.Companies.HardDelete(ctx, owner, "acme"); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}
	p, err := svc.People.Get(ctx, owner, alice)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.CompanyID != nil || p.Company != nil {
		t.Errorf("alice still linked to company %v", p.CompanyID)
	}
	if _, err := svc.Companies.Get(ctx, owner, "acme"); !IsNotFound(err) {
		t.Errorf("Get after delete: err = %v, want not found", err)
	}
}

func TestSectorRename(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	s, err := svc.Sectors.Create(ctx, owner, SectorInput{Name: "Oil & Gas"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Slug != "oil-gas" {
		t.Errorf("Slug = %q, want oil-gas", s.Slug)
	}
	s, err = svc.Sectors.Update(ctx, owner, "oil-gas", SectorInput{Name: "Energy", Description: "power"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Slug != "energy" {
		t.Errorf("Slug after rename = %q, want energy", s.Slug)
	}
	_, err = svc.Sectors.Create(ctx, owner, SectorInput{})
	fieldError(t, err, "name")
}

func TestGroupMembers(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	if _, err := svc.Companies.Create(ctx, owner, CompanyInput{Name: "Acme"}); err != nil {
		t.Fatalf("Companies.Create: %v", err)
	}
	alice := mustPerson(t, svc, PersonInput{FirstName: "Alice"})
	bob := mustPerson(t, svc, PersonInput{FirstName: "Bob"})

	g, err := svc.Groups.Create(ctx, owner, GroupInput{Name: "Book Club", People: []string{alice, bob}, Companies: []string{"acme"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Slug != "book-club" || len(g.People) != 2 || len(g.Companies) != 1 {
		t.Errorf("group = %s with %d people and %d companies, want book-club 2/1", g.Slug, len(g.People), len(g.Companies))
	}

	if _, err := svc.People.SoftDelete(ctx, owner, bob); err != nil {
		t.Fatalf("SoftDelete(bob): %v", err)
	}
	g, err = svc.Groups.Get(ctx, owner, "book-club")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(g.People) != 1 {
		t.Errorf("group people after soft delete = %d, want 1", len(g.People))
	}

	_, err = svc.Groups.Update(ctx, owner, "book-club", GroupInput{Name: "Book Club", People: []string{"nobody"}})
	fieldError(t, err, "people")
}
