package models

import "time"

// Charge is the result of one "generate new code" action. It is never stored.
type Charge struct {
    ID         string    `json:"id"`
    PageSlug   string    `json:"page_slug"`
    Payload    string    `json:"payload"`
    // CopyText is what the page's copy button puts on the clipboard.
    CopyText   string    `json:"copy_text"`
    IssuedAt   time.Time `json:"issued_at"`
    ExpiresAt  time.Time `json:"expires_at"`
    TTLSeconds int       `json:"ttl_seconds"`
    Countdown  string    `json:"countdown"`
}

type ValidatePayload struct {
    Payload string `json:"payload"`
}

type Validation struct {
    Valid    bool        `json:"valid"`
    Claimed  string      `json:"claimed_checksum,omitempty"`
    Expected string      `json:"expected_checksum,omitempty"`
    Error    string      `json:"error,omitempty"`
    Fields   []FieldView `json:"fields,omitempty"`
}

type FieldView struct {
    Tag      string      `json:"tag"`
    Length   int         `json:"length"`
    Value    string      `json:"value"`
    Children []FieldView `json:"children,omitempty"`
}
