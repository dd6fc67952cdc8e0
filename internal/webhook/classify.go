package webhook

import "strings"

// Kind is the classification of an inbound message.
type Kind string

const (
	// KindReplyOption is one of the canned menu options from the
	// welcome message.
	KindReplyOption Kind = "reply_option"
	// KindInterested expresses interest and becomes an enquiry.
	KindInterested Kind = "interested"
	// KindIgnored is everything else.
	KindIgnored Kind = "ignored"
)

// Canned responses for the menu options offered in the welcome message.
// Keys are the normalized (lowercased, trimmed) message texts.
var replyResponses = map[string]string{
	"get loan": `Business Guru is banking associate for loans especially business loans.

We provide collateral free loans based on turnover for all kinds of business without considering CIBIL scores of the customer/business`,

	"check eligibility": `📋 Documents Needed for Eligibility Check
Please share:
1️⃣ Business Registration
2️⃣ GST Certificate
3️⃣ Company Bank Details
4️⃣ 6-12 Month Bank Statements
5️⃣ Website URL
6️⃣ Owner PAN + Aadhaar
7️⃣ Business PAN
8️⃣ Email & Mobile
- IE Code (Imports/Exports)
- Intl. Payment Gateway
- Send photos/PDFs one-by-one
We'll verify within 4 hours!`,

	"more details": `Welcome to Business Guru! We're delighted to have you with us. At Business Guru, we specialize in providing collateral loans to help businesses like yours grow and thrive. Our team of financial experts is ready to assist you with personalized loan solutions tailored to your business needs. We'll be contacting you shortly to discuss your requirements in detail and guide you through our simple application process.`,
}

// Classify buckets an inbound message text.
func Classify(text string) Kind {
	if IsReplyOption(text) {
		return KindReplyOption
	}
	if IsInterested(text) {
		return KindInterested
	}
	return KindIgnored
}

// IsReplyOption reports whether the text exactly matches one of the
// canned menu options, ignoring case and surrounding whitespace.
func IsReplyOption(text string) bool {
	_, ok := replyResponses[normalize(text)]
	return ok
}

// ReplyResponse returns the canned response for a menu option.
func ReplyResponse(text string) (string, bool) {
	response, ok := replyResponses[normalize(text)]
	return response, ok
}

// IsInterested reports whether the text expresses interest. Matching is a
// case-insensitive substring check so "I am interested", "Interested!" and
// "i'm interested in a loan" all qualify.
func IsInterested(text string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), "interested")
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
