// Package prose recovers structured records from model-written markdown.
//
// The patterns follow the formatting convention of the disease prediction
// model: a numbered bold list ("**1. Dr. ...") with one emoji-prefixed line
// per field. Nothing here returns an error; input that does not follow the
// convention yields fewer records or placeholder fields.
package prose

import (
	"regexp"
	"strings"
)

// UnknownDoctorName is used when a retained block has no "Dr" line.
const UnknownDoctorName = "Unknown Doctor"

var (
	listItemSplit = regexp.MustCompile(`\*\*\d+\.\s*`)
	namePattern   = regexp.MustCompile(`Dr[^\n]*`)
	addressLine   = regexp.MustCompile(`📍(.*)`)
	phoneLine     = regexp.MustCompile(`📞(.*)`)
	ratingLine    = regexp.MustCompile(`⭐(.*)`)
	websiteLine   = regexp.MustCompile(`🌐(.*)`)
	boldMarker    = regexp.MustCompile(`\*\*`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Doctor is a doctor entry recovered from prose. Missing fields are empty.
type Doctor struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Rating  string `json:"rating"`
	Website string `json:"website"`
}

// DoctorExtractor turns a block of prose into doctor records.
type DoctorExtractor interface {
	Extract(text string) []Doctor
}

// MarkdownListExtractor parses numbered bold markdown lists of doctors.
type MarkdownListExtractor struct{}

// Ensure MarkdownListExtractor implements DoctorExtractor at compile time.
var _ DoctorExtractor = MarkdownListExtractor{}

// Extract splits text at "**<n>." list markers and parses every block that names a doctor.
func (MarkdownListExtractor) Extract(text string) []Doctor {
	doctors := []Doctor{}
	for _, block := range listItemSplit.Split(text, -1) {
		if !namesDoctor(block) {
			continue
		}
		doctors = append(doctors, parseBlock(block))
	}
	return doctors
}

func namesDoctor(block string) bool {
	return strings.HasPrefix(strings.TrimSpace(block), "Dr") || strings.Contains(block, "Dr.")
}

func parseBlock(block string) Doctor {
	doctor := Doctor{
		Name:    UnknownDoctorName,
		Address: glyphValue(addressLine, block),
		Phone:   glyphValue(phoneLine, block),
		Rating:  glyphValue(ratingLine, block),
		Website: glyphValue(websiteLine, block),
	}
	if name := namePattern.FindString(block); name != "" {
		doctor.Name = strings.TrimSpace(name)
	}
	return doctor
}

// glyphValue returns the trimmed text after the first occurrence of the pattern's glyph.
func glyphValue(pattern *regexp.Regexp, block string) string {
	match := pattern.FindStringSubmatch(block)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// StripBold removes markdown bold markers.
func StripBold(text string) string {
	return boldMarker.ReplaceAllString(text, "")
}

// SpecialistLine returns the first line of the specialist prose without bold
// markers, with "Recommended Specialist:" shortened to "Specialist:".
func SpecialistLine(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	return strings.Replace(StripBold(first), "Recommended Specialist:", "Specialist:", 1)
}

// TelHref builds a tel: link target from a displayed phone number.
func TelHref(phone string) string {
	return "tel:" + whitespace.ReplaceAllString(phone, "")
}
