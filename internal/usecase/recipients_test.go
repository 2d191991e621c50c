package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"John Smith", "John_Smith"},
		{"Jean–Paul O'Connor", "Jean-Paul_OConnor"},
		{"A/B\\C", "A_B_C"},
		{"  spaced   out  ", "spaced_out"},
		{"Café Müller", "Caf_M_ller"},
		{"__already__clean__", "already_clean"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SanitizeName(c.in), "input %q", c.in)
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	inputs := []string{"Jean–Paul O'Connor", "A/B\\C", "Café Müller", "Mr John Smith"}
	for _, in := range inputs {
		once := SanitizeName(in)
		assert.Equal(t, once, SanitizeName(once))
	}
}

func TestSanitizeNameTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcdefgh "
	}
	assert.LessOrEqual(t, len(SanitizeName(long)), 100)
}

func TestSanitizeNameTruncationStaysIdempotent(t *testing.T) {
	// The 100th byte of the sanitized form lands on an underscore
	long := strings.Repeat("a", 99) + " bcdef"
	once := SanitizeName(long)
	assert.Equal(t, strings.Repeat("a", 99), once)
	assert.Equal(t, once, SanitizeName(once))
}

func TestExpectedMotorFilename(t *testing.T) {
	got := ExpectedMotorFilename("Mr John Smith", "MT/2024/001")
	assert.Equal(t, "Motor_Renewal_Mr_John_Smith_MT_2024_001.pdf", got)
}

func TestParseSheetDate(t *testing.T) {
	// Excel serial 45657 = 2024-12-31
	d, ok := ParseSheetDate("45657")
	assert.True(t, ok)
	assert.Equal(t, "2024-12-31", d.Format("2006-01-02"))

	d, ok = ParseSheetDate("31/12/2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-12-31", d.Format("2006-01-02"))

	d, ok = ParseSheetDate("31/12/2024 00:00")
	assert.True(t, ok)
	assert.Equal(t, "2024-12-31", d.Format("2006-01-02"))

	d, ok = ParseSheetDate("2024-12-31")
	assert.True(t, ok)
	assert.Equal(t, "2024-12-31", d.Format("2006-01-02"))

	_, ok = ParseSheetDate("")
	assert.False(t, ok)
	_, ok = ParseSheetDate("not a date")
	assert.False(t, ok)
}

func TestRenewalPeriod(t *testing.T) {
	coverEnd := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	start, end := RenewalPeriod(coverEnd)
	assert.Equal(t, "2025-01-01", start.Format("2006-01-02"))
	assert.Equal(t, "2025-12-31", end.Format("2006-01-02"))
}

func TestBuildMotorRecipients(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []map[string]string{
		{
			"Email ID":        "john@example.com",
			"Title":           "Mr",
			"Firstname":       "John",
			"Surname":         "Smith",
			"Policy No":       "MT/2024/001",
			"Cover End Dt":    "31/12/2026",
			"New Net Premium": "15250.75",
			"Make":            "Toyota",
			"Model":           "Corolla",
			"Vehicle No":      "AB 1234",
		},
		{
			// Corporate row: no title
			"Email ID":  "fleet@acme.mu",
			"Firstname": "Acme",
			"Surname":   "Logistics Ltd",
			"Policy No": "MT/2024/002",
		},
		{
			// No usable e-mail, skipped
			"Email ID":  "not-an-email",
			"Firstname": "Ghost",
		},
	}

	recipients := BuildMotorRecipients(records, now)
	assert.Len(t, recipients, 2)

	first := recipients[0]
	assert.Equal(t, "Mr John Smith", first.Name)
	assert.Equal(t, "Motor_Renewal_Mr_John_Smith_MT_2024_001.pdf", first.ExpectedFilename)
	assert.Equal(t, "31 December 2026", first.ExpiryDate)
	assert.Equal(t, "01 January 2027", first.RenewalStart)
	assert.Equal(t, "31 December 2027", first.RenewalEnd)
	assert.Equal(t, "15250.75", first.Premium)

	corporate := recipients[1]
	assert.Equal(t, "Valued Customer", corporate.Name)
	// Filename still uses the literal name fields
	assert.Equal(t, "Motor_Renewal_Acme_Logistics_Ltd_MT_2024_002.pdf", corporate.ExpectedFilename)
	assert.Equal(t, "0", corporate.Premium)
	// Missing cover end falls back to one year from now
	assert.Equal(t, "01 August 2027", corporate.ExpiryDate)
}

func TestBuildHealthRecipients(t *testing.T) {
	records := []map[string]string{
		{"Email ID": "jane@example.com", "Insured Name": "Jane Doe", "Policy No": "HS/2025/010"},
		{"Email": "alt@example.com", "Name": "Alt Column"},
		{"Email ID": ""},
	}

	recipients := BuildHealthRecipients(records)
	assert.Len(t, recipients, 2)
	assert.Equal(t, "Jane Doe", recipients[0].Name)
	assert.Equal(t, "HS/2025/010", recipients[0].PolicyNo)
	assert.Equal(t, "alt@example.com", recipients[1].Email)
	assert.Equal(t, "Alt Column", recipients[1].Name)
}
