package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	Balance(ctx context.Context, userID string) (Balance, error)
	CreateRequest(ctx context.Context, req Request) (string, error)
	GetRequest(ctx context.Context, requestID string) (Request, error)
	ListRequestsForUser(ctx context.Context, userID string, limit, offset int) ([]Request, error)
	ListRequestsForUsers(ctx context.Context, userIDs []string, status string, limit, offset int) ([]Request, error)
	ListAllRequests(ctx context.Context, status string, limit, offset int) ([]Request, error)
	ApproveRequest(ctx context.Context, requestID, approverID string, buckets []Category) error
	RejectRequest(ctx context.Context, requestID, approverID, rejectionReason string) error
	CancelRequest(ctx context.Context, requestID, userID string) error
	CalendarEntries(ctx context.Context, from, to time.Time, includePending bool) ([]CalendarEntry, error)
}

// UserDirectory is the slice of the auth store the leave domain needs
// for approval routing and notifications.
type UserDirectory interface {
	DirectReportIDs(ctx context.Context, managerUserID string) ([]string, error)
	IsManagerOf(ctx context.Context, managerUserID, userID string) (bool, error)
	ManagerUserID(ctx context.Context, userID string) (string, error)
}
