package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// MalformedResponseError means the generator's payload could not be parsed
// as the expected array shape at all. Raw carries the original text for
// diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed generator response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ItemError records one item that was dropped during normalization and why.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

// RoomDraft is a validated room parsed from a generator payload, ready to
// be persisted. Skipped lists items the payload contained but that failed
// validation; per the drop-and-continue policy they are reported, not fatal.
type RoomDraft struct {
	ID      string
	Name    string
	Items   []LineItem
	Skipped []ItemError
}

// rawItem mirrors the generator's item schema. Pointer fields distinguish
// absent keys from zero values; modelNumber and description are accepted
// aliases seen across generator revisions.
type rawItem struct {
	Category        *string      `json:"category"`
	ItemDescription *string      `json:"itemDescription"`
	Description     *string      `json:"description"`
	Brand           *string      `json:"brand"`
	Model           *string      `json:"model"`
	ModelNumber     *string      `json:"modelNumber"`
	Quantity        *json.Number `json:"quantity"`
	UnitPrice       *json.Number `json:"unitPrice"`
	Margin          *float64     `json:"margin"`
	Notes           string       `json:"notes"`
	ImageURL        string       `json:"imageUrl"`
}

type rawRoom struct {
	Name  string            `json:"name"`
	Items []json.RawMessage `json:"items"`
	BOQ   []json.RawMessage `json:"boq"`
}

// ParseGeneratedRooms validates a payload claiming to be an array of rooms,
// each with a non-empty name and a list of items. A payload that is not a
// well-formed room array fails with MalformedResponseError; individual bad
// items are dropped and reported per room.
func ParseGeneratedRooms(raw string) ([]RoomDraft, error) {
	body := extractJSON(raw)

	var roomMsgs []json.RawMessage
	if err := json.Unmarshal([]byte(body), &roomMsgs); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}

	drafts := make([]RoomDraft, 0, len(roomMsgs))
	for i, msg := range roomMsgs {
		var rr rawRoom
		if err := json.Unmarshal(msg, &rr); err != nil {
			return nil, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("room %d is not room-shaped: %w", i, err)}
		}
		if strings.TrimSpace(rr.Name) == "" {
			return nil, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("room %d has no name", i)}
		}

		itemMsgs := rr.Items
		if itemMsgs == nil {
			itemMsgs = rr.BOQ
		}

		items, skipped := normalizeItems(itemMsgs)
		drafts = append(drafts, RoomDraft{
			ID:      uuid.NewString(),
			Name:    strings.TrimSpace(rr.Name),
			Items:   items,
			Skipped: skipped,
		})
	}
	return drafts, nil
}

// ParseGeneratedItems validates a payload claiming to be a bare item array,
// the shape returned by single-room generation and refinement calls.
func ParseGeneratedItems(raw string) ([]LineItem, []ItemError, error) {
	body := extractJSON(raw)

	var itemMsgs []json.RawMessage
	if err := json.Unmarshal([]byte(body), &itemMsgs); err != nil {
		return nil, nil, &MalformedResponseError{Raw: raw, Err: err}
	}

	items, skipped := normalizeItems(itemMsgs)
	return items, skipped, nil
}

// normalizeItems converts raw item records into validated line items,
// dropping and recording each record that fails.
func normalizeItems(msgs []json.RawMessage) ([]LineItem, []ItemError) {
	items := make([]LineItem, 0, len(msgs))
	var skipped []ItemError

	for i, msg := range msgs {
		item, err := normalizeItem(msg)
		if err != nil {
			skipped = append(skipped, ItemError{Index: i, Err: err})
			continue
		}
		items = append(items, item)
	}
	return items, skipped
}

func normalizeItem(msg json.RawMessage) (LineItem, error) {
	var ri rawItem
	if err := json.Unmarshal(msg, &ri); err != nil {
		return LineItem{}, fmt.Errorf("not item-shaped: %w", err)
	}

	category, err := requiredString("category", ri.Category)
	if err != nil {
		return LineItem{}, err
	}
	description, err := requiredString("description", firstPresent(ri.ItemDescription, ri.Description))
	if err != nil {
		return LineItem{}, err
	}
	brand, err := requiredString("brand", ri.Brand)
	if err != nil {
		return LineItem{}, err
	}
	model, err := requiredString("model", firstPresent(ri.Model, ri.ModelNumber))
	if err != nil {
		return LineItem{}, err
	}

	quantity, err := requiredQuantity(ri.Quantity)
	if err != nil {
		return LineItem{}, err
	}
	unitPrice, err := requiredPrice(ri.UnitPrice)
	if err != nil {
		return LineItem{}, err
	}

	item, err := NewLineItem(category, description, brand, model, quantity, unitPrice)
	if err != nil {
		return LineItem{}, err
	}

	// A numeric margin key is an explicit override, including zero; a
	// missing key stays nil and inherits the global margin downstream.
	if ri.Margin != nil {
		if *ri.Margin < 0 {
			return LineItem{}, &ValidationError{Field: "margin", Reason: "must not be negative"}
		}
		m := *ri.Margin
		item.Margin = &m
	}
	item.Notes = strings.TrimSpace(ri.Notes)
	item.ImageURL = strings.TrimSpace(ri.ImageURL)
	return item, nil
}

func requiredString(field string, v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", &ValidationError{Field: field, Reason: "required"}
	}
	return strings.TrimSpace(*v), nil
}

func firstPresent(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && strings.TrimSpace(*v) != "" {
			return v
		}
	}
	return nil
}

func requiredQuantity(v *json.Number) (int, error) {
	if v == nil {
		return 0, &ValidationError{Field: "quantity", Reason: "required"}
	}
	f, err := v.Float64()
	if err != nil {
		return 0, &ValidationError{Field: "quantity", Reason: "not a number"}
	}
	if f < 0 {
		return 0, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if f != math.Trunc(f) {
		return 0, &ValidationError{Field: "quantity", Reason: "must be a whole number"}
	}
	return int(f), nil
}

func requiredPrice(v *json.Number) (float64, error) {
	if v == nil {
		return 0, &ValidationError{Field: "unitPrice", Reason: "required"}
	}
	f, err := v.Float64()
	if err != nil {
		return 0, &ValidationError{Field: "unitPrice", Reason: "not a number"}
	}
	if f < 0 {
		return 0, &ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	}
	return f, nil
}

// extractJSON trims whitespace and markdown code fences that some model
// revisions wrap around their JSON output.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
