// Package aggregate turns pre-aggregated lead counts into dashboard series:
// category cards, the status pie and the trend bars.
package aggregate

import (
	"cmp"
	"slices"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
)

var categoryOrder = []domain.Category{
	domain.CategoryNew,
	domain.CategoryPending,
	domain.CategoryApproved,
	domain.CategoryRejected,
	domain.CategoryPaid,
	domain.CategoryBillable,
}

var categoryLabels = map[domain.Category]string{
	domain.CategoryNew:      "New Leads",
	domain.CategoryPending:  "Pending Leads",
	domain.CategoryApproved: "Approved Leads",
	domain.CategoryRejected: "Rejected Leads",
	domain.CategoryPaid:     "Paid Leads",
	domain.CategoryBillable: "Billable Leads",
}

var (
	staffPieStatuses = []domain.Status{
		domain.StatusAnsweringMachine,
		domain.StatusCallback,
		domain.StatusVerified,
		domain.StatusVM,
		domain.StatusNew,
	}
	vendorPieStatuses = []domain.Status{
		domain.StatusVerified,
		domain.StatusNew,
		domain.StatusUnderVerification,
		domain.StatusSubmittedToAttorney,
	}
)

// CategoryCount is one summary card.
type CategoryCount struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"title"`
	Count    int             `json:"value"`
}

// AllowedCategories returns the cards a role may see, in display order.
func AllowedCategories(role domain.Role) []domain.Category {
	switch role {
	case domain.RoleAdmin, domain.RoleSubAdmin:
		return slices.Clone(categoryOrder)
	case domain.RoleStaff, domain.RoleVendor:
		return []domain.Category{domain.CategoryNew, domain.CategoryPending, domain.CategoryApproved}
	}
	return nil
}

// Categories folds status counts into the role's category cards. Every
// allowed card is present even at zero, and pending only counts leads
// submitted by staff.
func Categories(role domain.Role, counts []repository.StatusRoleCount) []CategoryCount {
	allowed := AllowedCategories(role)
	totals := make(map[domain.Category]int, len(allowed))
	for _, c := range counts {
		category := c.Status.Category()
		if category == "" {
			continue
		}
		if category == domain.CategoryPending && c.SubmitterRole != domain.RoleStaff {
			continue
		}
		totals[category] += c.Count
	}

	out := make([]CategoryCount, 0, len(allowed))
	for _, category := range allowed {
		out = append(out, CategoryCount{
			Category: category,
			Label:    categoryLabels[category],
			Count:    totals[category],
		})
	}
	return out
}

// PieStatuses returns the statuses a role's pie chart may show.
func PieStatuses(role domain.Role) []domain.Status {
	switch role {
	case domain.RoleStaff:
		return slices.Clone(staffPieStatuses)
	case domain.RoleVendor:
		return slices.Clone(vendorPieStatuses)
	}
	return domain.AllStatuses()
}

// Slice is one status in the distribution.
type Slice struct {
	Status domain.Status `json:"status"`
	Label  string        `json:"label"`
	Color  string        `json:"color"`
	Count  int           `json:"count"`
}

// Distribution is the status pie.
type Distribution struct {
	HasData bool    `json:"isDataExist"`
	Slices  []Slice `json:"slices"`
}

// StatusDistribution groups raw statuses for the role's pie, keeping only
// statuses with at least one lead, sorted by status key.
func StatusDistribution(role domain.Role, counts []repository.StatusRoleCount) Distribution {
	allowed := PieStatuses(role)
	totals := make(map[domain.Status]int)
	for _, c := range counts {
		if c.Count > 0 && slices.Contains(allowed, c.Status) {
			totals[c.Status] += c.Count
		}
	}

	slicesOut := make([]Slice, 0, len(totals))
	for status, n := range totals {
		slicesOut = append(slicesOut, Slice{
			Status: status,
			Label:  status.Label(),
			Color:  status.Color(),
			Count:  n,
		})
	}
	slices.SortFunc(slicesOut, func(a, b Slice) int { return cmp.Compare(a.Status, b.Status) })
	return Distribution{HasData: len(slicesOut) > 0, Slices: slicesOut}
}
