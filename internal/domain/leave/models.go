package leave

import "time"

// Category is a leave bucket against which days are allocated and deducted.
type Category string

const (
	CategoryAnnual    Category = "annual"
	CategorySick      Category = "sick"
	CategoryCasual    Category = "casual"
	CategoryMaternity Category = "maternity"
	CategoryPaternity Category = "paternity"
	CategoryUnpaid    Category = "unpaid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DefaultAllocations are the opening yearly allocations written by the seed.
var DefaultAllocations = map[Category]int{
	CategoryAnnual: 20,
	CategorySick:   10,
	CategoryCasual: 7,
}

// Entry is the balance snapshot for a single category.
type Entry struct {
	Allocated int `json:"allocated"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// Balance is an immutable per-category snapshot consumed by the policy
// engine. Categories without a ledger row simply have no key.
type Balance map[Category]Entry

// Remaining reports the spendable days in a category. A negative stored
// value indicates upstream data corruption and is not trusted; it reads
// as zero for eligibility decisions.
func (b Balance) Remaining(cat Category) int {
	entry, ok := b[cat]
	if !ok || entry.Remaining < 0 {
		return 0
	}
	return entry.Remaining
}

type Request struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	UserName        string    `json:"userName,omitempty"`
	Type            Category  `json:"type"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Days            int       `json:"days"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	ApprovedBy      string    `json:"approvedBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TypeOption is one selectable entry of the request-form catalog.
type TypeOption struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

type CalendarEntry struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Type      Category  `json:"type"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Days      int       `json:"days"`
	Status    string    `json:"status"`
}
