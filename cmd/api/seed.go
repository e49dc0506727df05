package main

import (
	"time"

	clientsdomain "leadportal_backend/internal/clients/domain"
	clientsrepo "leadportal_backend/internal/clients/repository"
	"leadportal_backend/internal/leads/domain"
	leadsrepo "leadportal_backend/internal/leads/repository"
	"leadportal_backend/platform/logger"

	"github.com/google/uuid"
)

// seedNamespace derives seeded ids, which stay the same across restarts.
var seedNamespace = uuid.MustParse("6f1c2a8e-3b4d-4c5e-9f60-7a8b9c0d1e2f")

func seedID(name string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(name))
}

// seedMemory loads the reference questions, a campaign and one account per
// role into the in-memory stores.
func seedMemory(leadStore *leadsrepo.MemoryStore, clientStore *clientsrepo.MemoryStore, log *logger.Logger) {
	now := time.Now()

	questions := []struct {
		name  string
		title string
		kind  string
		tag   domain.QuestionTag
	}{
		{"question:first_name", "First name", "text", domain.TagFirstName},
		{"question:last_name", "Last name", "text", domain.TagLastName},
		{"question:email", "Email", "email", domain.TagEmail},
		{"question:contact_number", "Contact number", "phone", domain.TagContactNumber},
		{"question:represented", "Represented by a firm attorney?", "select", domain.TagRepresentedByFirmAttorney},
		{"question:incident_date", "Date of incident", "date", ""},
	}
	for _, q := range questions {
		question := domain.Question{ID: seedID(q.name), Title: q.title, Type: q.kind}
		if q.tag != "" {
			tag := q.tag
			question.Tag = &tag
		}
		leadStore.PutQuestion(question)
	}

	leadStore.PutCampaign(domain.Campaign{ID: seedID("campaign:default"), Title: "Default", IsActive: true})

	vendorID := seedID("user:vendor")
	users := []domain.User{
		{ID: seedID("user:admin"), Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: vendorID, Name: "Vendor", Email: "vendor@example.com", Role: domain.RoleVendor},
		{
			ID:           seedID("user:verifier"),
			Name:         "Verifier",
			Email:        "verifier@example.com",
			Role:         domain.RoleStaff,
			Capabilities: []string{domain.CapabilityVerifier, domain.CapabilityLeadManagement},
		},
		{
			ID:                seedID("user:sub_admin"),
			Name:              "Sub Admin",
			Email:             "subadmin@example.com",
			Role:              domain.RoleSubAdmin,
			AssignedVendorIDs: []uuid.UUID{vendorID},
		},
	}

	client := clientsdomain.Client{
		ID:       seedID("user:client"),
		Name:     "Example Firm",
		Email:    "intake@firm.example",
		IsActive: true,
	}
	users = append(users, domain.User{ID: client.ID, Name: client.Name, Email: client.Email, Role: domain.RoleClient})

	for _, u := range users {
		u.IsActive = true
		u.CreatedAt = now
		leadStore.PutUser(u)
		log.Info("seeded user", "role", u.Role, "id", u.ID)
	}
	clientStore.PutClient(client)
}
