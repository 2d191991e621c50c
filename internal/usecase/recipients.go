package usecase

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

const maxSafeNameLength = 100

var (
	nonASCII    = regexp.MustCompile(`[^\x00-\x7F]+`)
	underscores = regexp.MustCompile(`_+`)
)

// SanitizeName normalizes a customer name the same way the generation script
// names its output files: dashes unified, quotes stripped, non-ASCII runs,
// spaces and path separators replaced with underscores, runs of underscores
// collapsed, trimmed and truncated. Idempotent.
func SanitizeName(name string) string {
	s := name
	for _, dash := range []string{"–", "—"} {
		s = strings.ReplaceAll(s, dash, "-")
	}
	for _, q := range []string{"\"", "“", "”", "'", "‘", "’", "`"} {
		s = strings.ReplaceAll(s, q, "")
	}
	s = nonASCII.ReplaceAllString(s, "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = underscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxSafeNameLength {
		// Truncation can land on an underscore; trim again so the result
		// is a fixed point.
		s = strings.Trim(s[:maxSafeNameLength], "_")
	}
	return s
}

// SanitizePolicy keeps the policy number readable but filesystem-safe.
func SanitizePolicy(policy string) string {
	s := strings.ReplaceAll(policy, "/", "_")
	return strings.ReplaceAll(s, "\\", "_")
}

// ExpectedMotorFilename is the deterministic artifact name the generation
// script produces for a motor row.
func ExpectedMotorFilename(name, policy string) string {
	return "Motor_Renewal_" + SanitizeName(name) + "_" + SanitizePolicy(policy) + ".pdf"
}

const displayDateLayout = "02 January 2006"

// ParseSheetDate handles the forms a cover-end cell shows up as: an Excel
// serial number, DD/MM/YYYY with optional time, or an ISO date.
func ParseSheetDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 59 {
		// Excel epoch, day 0 = 1899-12-30.
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), true
	}
	if strings.Contains(v, "/") {
		datePart := strings.Fields(v)[0]
		parts := strings.Split(datePart, "/")
		if len(parts) == 3 {
			day, errD := strconv.Atoi(parts[0])
			month, errM := strconv.Atoi(parts[1])
			year, errY := strconv.Atoi(parts[2])
			if errD == nil && errM == nil && errY == nil {
				return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", displayDateLayout, "01-02-06"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RenewalPeriod starts the day after the current expiry and runs for exactly
// one year, ending the day before the next anniversary.
func RenewalPeriod(coverEnd time.Time) (start, end time.Time) {
	start = coverEnd.AddDate(0, 0, 1)
	end = start.AddDate(1, 0, -1)
	return start, end
}

// BuildMotorRecipients turns motor listing records into recipients. Rows
// without a usable e-mail address are skipped. A blank Title marks a
// corporate policyholder: the greeting degrades to a generic salutation but
// the expected filename still uses the literal name fields.
func BuildMotorRecipients(records []map[string]string, now time.Time) []entity.Recipient {
	var recipients []entity.Recipient
	for i, record := range records {
		email := strings.TrimSpace(record["Email ID"])
		if email == "" {
			email = strings.TrimSpace(record["Email"])
		}
		if email == "" || !strings.Contains(email, "@") {
			log.Printf("Skipping record %d: invalid email %q", i+1, email)
			continue
		}

		title := strings.TrimSpace(record["Title"])
		bareName := strings.TrimSpace(strings.TrimSpace(record["Firstname"]) + " " + strings.TrimSpace(record["Surname"]))
		displayName := strings.TrimSpace(title + " " + bareName)
		filenameName := displayName
		if title == "" {
			displayName = "Valued Customer"
			filenameName = bareName
		}

		coverEnd, ok := ParseSheetDate(record["Cover End Dt"])
		if !ok {
			coverEnd = now.AddDate(1, 0, 0)
		}
		renewalStart, renewalEnd := RenewalPeriod(coverEnd)

		policy := strings.TrimSpace(record["Policy No"])
		premium := record["New Net Premium"]
		if premium == "" {
			premium = "0"
		}

		recipients = append(recipients, entity.Recipient{
			Email:            email,
			Name:             displayName,
			PolicyNo:         policy,
			ExpectedFilename: ExpectedMotorFilename(filenameName, policy),
			ExpiryDate:       coverEnd.Format(displayDateLayout),
			RenewalStart:     renewalStart.Format(displayDateLayout),
			RenewalEnd:       renewalEnd.Format(displayDateLayout),
			Premium:          premium,
			Make:             record["Make"],
			Model:            record["Model"],
			VehicleNo:        record["Vehicle No"],
		})
	}
	return recipients
}

// BuildHealthRecipients reads the simpler health listing: e-mail, insured
// name and policy number only. Artifact matching relies on the fuzzy paths.
func BuildHealthRecipients(records []map[string]string) []entity.Recipient {
	var recipients []entity.Recipient
	for i, record := range records {
		email := strings.TrimSpace(record["Email ID"])
		if email == "" {
			email = strings.TrimSpace(record["Email"])
		}
		if email == "" || !strings.Contains(email, "@") {
			log.Printf("Skipping health record %d: invalid email %q", i+1, email)
			continue
		}
		name := strings.TrimSpace(record["Insured Name"])
		if name == "" {
			name = strings.TrimSpace(record["Name"])
		}
		recipients = append(recipients, entity.Recipient{
			Email:    email,
			Name:     name,
			PolicyNo: strings.TrimSpace(record["Policy No"]),
		})
	}
	return recipients
}
