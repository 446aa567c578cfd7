package timetable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ── TimetableID ──

// SyntheticPrefix marks timetables the ERP derives from session records.
const SyntheticPrefix = "timetable_"

// TimetableID identifies a timetable: either a persisted integer key or a
// synthetic key for timetables derived from sessions. The zero value means
// the timetable has not been created yet.
type TimetableID struct {
	persisted int64
	synthetic string
}

// PersistedID wraps a backend primary key.
func PersistedID(n int64) TimetableID { return TimetableID{persisted: n} }

// SyntheticID wraps a derived key such as "timetable_42".
func SyntheticID(key string) TimetableID { return TimetableID{synthetic: key} }

// ParseTimetableID accepts "42" or "timetable_42".
func ParseTimetableID(s string) (TimetableID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, SyntheticPrefix) && len(s) > len(SyntheticPrefix) {
		return SyntheticID(s), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return TimetableID{}, fmt.Errorf("%w: timetable id %q", ErrInvalidID, s)
	}
	return PersistedID(n), nil
}

// IsZero reports an id that was never assigned.
func (id TimetableID) IsZero() bool { return id.persisted == 0 && id.synthetic == "" }

// IsSynthetic reports a derived, read-only timetable.
func (id TimetableID) IsSynthetic() bool { return id.synthetic != "" }

// Persisted returns the integer key and whether the id is persisted.
func (id TimetableID) Persisted() (int64, bool) {
	return id.persisted, id.persisted != 0
}

func (id TimetableID) String() string {
	switch {
	case id.synthetic != "":
		return id.synthetic
	case id.persisted != 0:
		return strconv.FormatInt(id.persisted, 10)
	default:
		return ""
	}
}

// MarshalJSON writes persisted ids as numbers and synthetic ids as strings,
// matching what the ERP sends.
func (id TimetableID) MarshalJSON() ([]byte, error) {
	switch {
	case id.synthetic != "":
		return json.Marshal(id.synthetic)
	case id.persisted != 0:
		return []byte(strconv.FormatInt(id.persisted, 10)), nil
	default:
		return []byte("null"), nil
	}
}

func (id *TimetableID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` || raw == "false" {
		*id = TimetableID{}
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = unq
	}
	parsed, err := ParseTimetableID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ── SlotID ──

const transientPrefix = "tmp-"

// SlotID identifies a slot. Persisted ids come from the backend; transient
// ids are minted by an editing session and live in their own namespace, so
// the two can never collide.
type SlotID struct {
	value     int64
	transient bool
}

// PersistedSlotID wraps a backend slot key.
func PersistedSlotID(n int64) SlotID { return SlotID{value: n} }

// TransientSlotID wraps a session-local key.
func TransientSlotID(n int64) SlotID { return SlotID{value: n, transient: true} }

// ParseSlotID accepts "42" or "tmp-3".
func ParseSlotID(s string) (SlotID, error) {
	s = strings.TrimSpace(s)
	transient := strings.HasPrefix(s, transientPrefix)
	n, err := strconv.ParseInt(strings.TrimPrefix(s, transientPrefix), 10, 64)
	if err != nil || n <= 0 {
		return SlotID{}, fmt.Errorf("%w: slot id %q", ErrInvalidID, s)
	}
	return SlotID{value: n, transient: transient}, nil
}

func (id SlotID) IsZero() bool      { return id.value == 0 }
func (id SlotID) IsTransient() bool { return id.transient }

// Persisted returns the backend key and whether the id is persisted.
func (id SlotID) Persisted() (int64, bool) {
	return id.value, id.value != 0 && !id.transient
}

func (id SlotID) String() string {
	if id.value == 0 {
		return ""
	}
	if id.transient {
		return transientPrefix + strconv.FormatInt(id.value, 10)
	}
	return strconv.FormatInt(id.value, 10)
}

func (id SlotID) MarshalJSON() ([]byte, error) {
	if id.value == 0 {
		return []byte("null"), nil
	}
	if id.transient {
		return json.Marshal(id.String())
	}
	return []byte(strconv.FormatInt(id.value, 10)), nil
}

func (id *SlotID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` || raw == "false" {
		*id = SlotID{}
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = unq
	}
	parsed, err := ParseSlotID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
