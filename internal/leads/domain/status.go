// Package domain provides core business rules for the leads bounded context.
package domain

import "sort"

// Status is the lifecycle state of a lead.
type Status string

const (
	StatusNew                 Status = "new"
	StatusUnderVerification   Status = "under_verification"
	StatusSubmittedToAttorney Status = "submitted_to_attorney"
	StatusApprove             Status = "approve"
	StatusVerified            Status = "verified"
	StatusReject              Status = "reject"
	StatusPaid                Status = "paid"
	StatusBillable            Status = "billable"
	StatusReturn              Status = "return"
	StatusReplace             Status = "replace"
	StatusAnsweringMachine    Status = "answering_machine"
	StatusCallback            Status = "callback"
	StatusVM                  Status = "vm"
)

// Category is the coarse reporting group of a status.
type Category string

const (
	CategoryNew      Category = "new"
	CategoryPending  Category = "pending"
	CategoryApproved Category = "approved"
	CategoryRejected Category = "rejected"
	CategoryPaid     Category = "paid"
	CategoryBillable Category = "billable"
)

var statusCategory = map[Status]Category{
	StatusNew:                 CategoryNew,
	StatusUnderVerification:   CategoryPending,
	StatusSubmittedToAttorney: CategoryPending,
	StatusApprove:             CategoryApproved,
	StatusVerified:            CategoryApproved,
	StatusReject:              CategoryRejected,
	StatusPaid:                CategoryPaid,
	StatusBillable:            CategoryBillable,
	StatusReturn:              "",
	StatusReplace:             "",
	StatusAnsweringMachine:    "",
	StatusCallback:            "",
	StatusVM:                  "",
}

// onlyAdminStatuses are terminal states hidden from a verifier's assigned queue.
var onlyAdminStatuses = map[Status]bool{
	StatusVerified: true,
	StatusApprove:  true,
	StatusReject:   true,
	StatusReturn:   true,
	StatusReplace:  true,
	StatusBillable: true,
	StatusPaid:     true,
}

var statusLabels = map[Status]string{
	StatusAnsweringMachine:    "Answering Machine",
	StatusCallback:            "Callback",
	StatusVerified:            "Verified",
	StatusVM:                  "Vm",
	StatusNew:                 "New",
	StatusUnderVerification:   "Under Verification",
	StatusSubmittedToAttorney: "Submitted To Attorney",
	StatusApprove:             "Approve",
	StatusReject:              "Reject",
	StatusReturn:              "Return",
	StatusReplace:             "Replace",
	StatusBillable:            "Billable",
	StatusPaid:                "Paid",
}

var statusColors = map[Status]string{
	StatusAnsweringMachine:    "#FF6384",
	StatusCallback:            "#36A2EB",
	StatusVerified:            "#FFCE56",
	StatusVM:                  "#66BB6A",
	StatusNew:                 "#FFA726",
	StatusUnderVerification:   "#AB47BC",
	StatusSubmittedToAttorney: "#29B6F6",
	StatusApprove:             "#EF5350",
	StatusReject:              "#FF7043",
	StatusReturn:              "#26A69A",
	StatusReplace:             "#9CCC65",
	StatusBillable:            "#5C6BC0",
	StatusPaid:                "#42A5F5",
}

const fallbackColor = "#CCCCCC"

// ParseStatus returns the status for s and whether it is known.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusCategory[st]
	return st, ok
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusCategory[s]
	return ok
}

// Category returns the reporting category, or "" when the status has none.
func (s Status) Category() Category {
	return statusCategory[s]
}

// IsOnlyAdmin reports whether s is reserved for admin-only terminal handling.
func (s Status) IsOnlyAdmin() bool {
	return onlyAdminStatuses[s]
}

// Label returns the display label of s.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Color returns the stable chart color of s.
func (s Status) Color() string {
	if color, ok := statusColors[s]; ok {
		return color
	}
	return fallbackColor
}

// AllStatuses returns every known status sorted by key.
func AllStatuses() []Status {
	out := make([]Status, 0, len(statusCategory))
	for s := range statusCategory {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OnlyAdminStatuses returns the admin-only statuses sorted by key.
func OnlyAdminStatuses() []Status {
	out := make([]Status, 0, len(onlyAdminStatuses))
	for s := range onlyAdminStatuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StatusesIn returns the statuses mapped to category c, sorted by key.
func StatusesIn(c Category) []Status {
	out := make([]Status, 0, 2)
	for s, cat := range statusCategory {
		if cat == c {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
