// Package wfh reads work-from-home records from the legacy HR system.
// The upstream payload shape has drifted over the years, so everything
// is normalized defensively at this boundary: an unrecognized shape
// degrades to an empty list rather than an error.
package wfh

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	TypeFullDay = "full_day"
	TypeHalfDay = "half_day"

	StatusPending = "pending"
)

type Request struct {
	ID              string `json:"id"`
	UserID          string `json:"userId,omitempty"`
	StartDate       string `json:"startDate,omitempty"`
	EndDate         string `json:"endDate,omitempty"`
	Reason          string `json:"reason,omitempty"`
	WFHType         string `json:"wfhType"`
	Status          string `json:"status"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	ApprovedBy      string `json:"approvedBy,omitempty"`
}

// wrapperKeys are tried in order when the payload is not a bare array.
var wrapperKeys = []string{"data", "requests", "wfh_requests", "results"}

// Normalize converts a raw upstream payload into a clean list. The
// payload may be a bare array or wrapped under one of several keys;
// anything unrecognizable yields an empty list.
func Normalize(raw []byte) []Request {
	items, ok := extractItems(raw)
	if !ok {
		return []Request{}
	}

	out := make([]Request, 0, len(items))
	for _, item := range items {
		out = append(out, normalizeItem(item))
	}
	return out
}

func extractItems(raw []byte) ([]map[string]any, bool) {
	var bare []map[string]any
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, true
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, false
	}
	for _, key := range wrapperKeys {
		inner, ok := wrapped[key]
		if !ok {
			continue
		}
		var items []map[string]any
		if err := json.Unmarshal(inner, &items); err == nil {
			return items, true
		}
	}
	return nil, false
}

func normalizeItem(item map[string]any) Request {
	req := Request{
		ID:              firstString(item, "wfh_id", "id"),
		UserID:          firstString(item, "user_id", "userId"),
		StartDate:       firstString(item, "start_date", "startDate"),
		EndDate:         firstString(item, "end_date", "endDate"),
		Reason:          stringField(item, "reason"),
		CreatedAt:       firstString(item, "created_at", "createdAt"),
		UpdatedAt:       firstString(item, "updated_at", "updatedAt"),
		RejectionReason: firstString(item, "rejection_reason", "rejectionReason"),
		ApprovedBy:      firstString(item, "approved_by", "approvedBy"),
	}

	req.WFHType = normalizeType(item["wfh_type"])

	status := strings.ToLower(strings.TrimSpace(stringField(item, "status")))
	if status == "" {
		status = StatusPending
	}
	req.Status = status

	return req
}

// normalizeType maps any value containing "full" (case-insensitively)
// to full_day and anything else present to half_day. Absent means the
// legacy default, "Full Day".
func normalizeType(value any) string {
	if value == nil {
		return TypeFullDay
	}
	text := strings.ToLower(strings.TrimSpace(asString(value)))
	if text == "" {
		return TypeFullDay
	}
	if strings.Contains(text, "full") {
		return TypeFullDay
	}
	return TypeHalfDay
}

func firstString(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := item[key]; ok {
			if text := asString(value); text != "" {
				return text
			}
		}
	}
	return ""
}

func stringField(item map[string]any, key string) string {
	return asString(item[key])
}

// asString tolerates the legacy API emitting numbers where identifiers
// are expected. Numeric IDs are rendered in plain decimal; %v would
// turn large ones into scientific notation.
func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
