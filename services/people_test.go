package services

import (
	"context"
	"testing"
)

func TestPeopleSlugsAreUnique(t *testing.T) {
	svc, _ := setupServices(t)

	first := mustPerson(t, svc, PersonInput{FirstName: "Alice", LastName: "Smith"})
	second := mustPerson(t, svc, PersonInput{FirstName: "Alice", LastName: "Smith"})
	if first != "alice-smith" {
		t.Errorf("first slug = %q, want alice-smith", first)
	}
	if second != "alice-smith-1" {
		t.Errorf("second slug = %q, want alice-smith-1", second)
	}
}

func TestPeopleSlugReusedAfterSoftDelete(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	slug := mustPerson(t, svc, PersonInput{FirstName: "Alice", LastName: "Smith"})
	n, err := svc.People.SoftDelete(ctx, owner, slug)
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if n != 1 {
		t.Errorf("SoftDelete affected %d rows, want 1", n)
	}
	if _, err := svc.People.Get(ctx, owner, slug); !IsNotFound(err) {
		t.Errorf("Get after soft delete: err = %v, want not found", err)
	}
	if again := mustPerson(t, svc, PersonInput{FirstName: "Alice", LastName: "Smith"}); again != "alice-smith" {
		t.Errorf("slug after soft delete = %q, want alice-smith", again)
	}
}

func TestPeopleAreScopedToOwner(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	slug := mustPerson(t, svc, PersonInput{FirstName: "Alice"})
	if _, err := svc.People.Get(ctx, owner+1, slug); !IsNotFound(err) {
		t.Errorf("Get as another owner: err = %v, want not found", err)
	}
	_, err := svc.People.Create(ctx, owner+1, PersonInput{FirstName: "Bob", Partner: slug})
	fieldError(t, err, "partner")

	other, err := svc.People.Create(ctx, owner+1, PersonInput{FirstName: "Alice"})
	if err != nil {
		t.Fatalf("Create as another owner: %v", err)
	}
	if other.Slug != slug {
		t.Errorf("other owner's slug = %q, want %q", other.Slug, slug)
	}
}

func TestPartnerLinksStayMutual(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	bob := mustPerson(t, svc, PersonInput{FirstName: "Bob", LastName: "Jones"})
	carol := mustPerson(t, svc, PersonInput{FirstName: "Carol", LastName: "Jones", Partner: bob})

	b, err := svc.People.Get(ctx, owner, bob)
	if err != nil {
		t.Fatalf("Get(bob): %v", err)
	}
	if b.Partner == nil || b.Partner.Slug != carol {
		t.Fatalf("bob's partner = %v, want %s", b.Partner, carol)
	}

	// dave takes bob, carol must be released
	dave := mustPerson(t, svc, PersonInput{FirstName: "Dave", Partner: bob})
	c, err := svc.People.Get(ctx, owner, carol)
	if err != nil {
		t.Fatalf("Get(carol): %v", err)
	}
	if c.PartnerID != nil {
		t.Errorf("carol's partner = %v, want none", *c.PartnerID)
	}
	b, _ = svc.People.Get(ctx, owner, bob)
	if b.Partner == nil || b.Partner.Slug != dave {
		t.Errorf("bob's partner = %v, want %s", b.Partner, dave)
	}

	// clearing the link on one side clears both
	if _, err := svc.People.Update(ctx, owner, dave, PersonInput{FirstName: "Dave"}); err != nil {
		t.Fatalf("Update(dave): %v", err)
	}
	b, _ = svc.People.Get(ctx, owner, bob)
	if b.PartnerID != nil {
		t.Errorf("bob's partner after clearing = %v, want none", *b.PartnerID)
	}
}

func TestPeopleRejectSelfLinks(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	alice := mustPerson(t, svc, PersonInput{FirstName: "Alice"})
	_, err := svc.People.Update(ctx, owner, alice, PersonInput{FirstName: "Alice", Partner: alice})
	fieldError(t, err, "partner")
	_, err = svc.People.Update(ctx, owner, alice, PersonInput{FirstName: "Alice", KnownVia: alice})
	fieldError(t, err, "known_via")
}

func TestPeopleKnownViaCycleAllowed(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	alice := mustPerson(t, svc, PersonInput{FirstName: "Alice"})
	bob := mustPerson(t, svc, PersonInput{FirstName: "Bob", KnownVia: alice})
	a, err := svc.People.Update(ctx, owner, alice, PersonInput{FirstName: "Alice", KnownVia: bob})
	if err != nil {
		t.Fatalf("Update(alice): %v", err)
	}
	if got := a.DisplayName(); got != "Alice (via Bob)" {
		t.Errorf("DisplayName() = %q, want %q", got, "Alice (via Bob)")
	}
}

func TestPeopleInputValidation(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    PersonInput
		field string
	}{
		{"no name", PersonInput{City: "Austin"}, "first_name"},
		{"short phone", PersonInput{FirstName: "Al", PersonalPhone: "555-1234"}, "personal_phone"},
		{"bad email", PersonInput{FirstName: "Al", WorkEmail: "nope"}, "work_email"},
		{"bad birthday", PersonInput{FirstName: "Al", Birthday: "03/04/1990"}, "birthday"},
		{"unknown company", PersonInput{FirstName: "Al", Company: "acme"}, "company"},
		{"unknown sector", PersonInput{FirstName: "Al", Sectors: []string{"energy"}}, "sectors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.People.Create(ctx, owner, tt.in)
			fieldError(t, err, tt.field)
		})
	}

	p, err := svc.People.Create(ctx, owner, PersonInput{FirstName: "Al", WorkPhone: "555.123.4567", Birthday: "1990-03-04"})
	if err != nil {
		t.Fatalf("Create with dotted phone: %v", err)
	}
	if p.Birthday == nil || p.Birthday.Format("2006-01-02") != "1990-03-04" {
		t.Errorf("Birthday = %v, want 1990-03-04", p.Birthday)
	}
}

func TestPeopleListFilters(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	if _, err := svc.Companies.Create(ctx, owner, CompanyInput{Name: "Acme"}); err != nil {
		t.Fatalf("Companies.Create: %v", err)
	}
	if _, err := svc.Sectors.Create(ctx, owner, SectorInput{Name: "Energy"}); err != nil {
		t.Fatalf("Sectors.Create: %v", err)
	}
	mustPerson(t, svc, PersonInput{FirstName: "Alice", City: "Austin", Company: "acme", Sectors: []string{"energy"}})
	bob := mustPerson(t, svc, PersonInput{FirstName: "Bob", City: "Boston"})
	mustPerson(t, svc, PersonInput{FirstName: "Carol", City: "austin"})
	mustConversation(t, svc, ConversationInput{People: []string{bob}, Mode: "email", Summary: "hello"})

	tests := []struct {
		name string
		opts PersonListOptions
		want []string
	}{
		{"all", PersonListOptions{}, []string{"alice", "bob", "carol"}},
		{"city", PersonListOptions{City: "AUSTIN"}, []string{"alice", "carol"}},
		{"company", PersonListOptions{Company: "acme"}, []string{"alice"}},
		{"sector", PersonListOptions{Sector: "energy"}, []string{"alice"}},
		{"unknown sector ignored", PersonListOptions{Sector: "nope"}, []string{"alice", "bob", "carol"}},
		{"contacted", PersonListOptions{ContactedSince: "week"}, []string{"bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.People.List(ctx, owner, tt.opts)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var got []string
			for _, p := range page.Items {
				got = append(got, p.Slug)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("List[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}

	_, err := svc.People.List(ctx, owner, PersonListOptions{ContactedSince: "fortnight"})
	fieldError(t, err, "contacted_since")

	cities, err := svc.People.Cities(ctx, owner)
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	if len(cities) != 3 {
		t.Errorf("Cities = %v, want three entries", cities)
	}
}

func TestPeopleSearch(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	mustPerson(t, svc, PersonInput{FirstName: "Alice", LastName: "Smith"})
	alan := mustPerson(t, svc, PersonInput{FirstName: "Alan", LastName: "Turing"})
	mustPerson(t, svc, PersonInput{FirstName: "Bob", LastName: "Allen"})
	mustPerson(t, svc, PersonInput{FirstName: "Carol", LastName: "King"})
	mustConversation(t, svc, ConversationInput{People: []string{alan}, Mode: "text", Summary: "hi"})

	res, err := svc.People.Search(ctx, owner, "al", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.People) != 3 {
		t.Fatalf("Search(al) returned %d people, want 3", len(res.People))
	}
	if res.People[0].Slug != alan {
		t.Errorf("first hit = %s, want %s (most conversations)", res.People[0].Slug, alan)
	}
	if res.MoreResults {
		t.Error("MoreResults = true, want false")
	}

	res, _ = svc.People.Search(ctx, owner, "alice sm", 1)
	if len(res.People) != 1 || res.People[0].Name != "Alice Smith" {
		t.Errorf("Search(alice sm) = %+v, want Alice Smith", res.People)
	}
}
