package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

// FormatInvoiceNumber renders template for one issued invoice. Supported tokens:
// {YYYY} {YY} {MM} {DD} {SEQ} and {SEQn} (zero padded to n digits).
// Sequences wider than n are printed in full, never truncated.
func FormatInvoiceNumber(template string, issuedOn ledgerdomain.Date, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}
	if issuedOn.IsZero() {
		return "", fmt.Errorf("invoice issue date is required")
	}

	t := issuedOn.Time()
	out := strings.NewReplacer(
		"{YYYY}", t.Format("2006"),
		"{YY}", t.Format("06"),
		"{MM}", t.Format("01"),
		"{DD}", t.Format("02"),
		"{SEQ}", strconv.FormatInt(seq, 10),
	).Replace(template)

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		width, err := strconv.Atoi(seqPadRe.FindStringSubmatch(m)[1])
		if err != nil || width <= 0 || width > 18 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice number template: %s", out)
	}
	return out, nil
}

// Validate checks that template renders and carries a sequence token, so
// numbers stay unique per tenant.
func Validate(template string) error {
	if !strings.Contains(template, "{SEQ") {
		return fmt.Errorf("invoice number template %q has no {SEQ} token", template)
	}
	_, err := FormatInvoiceNumber(template, ledgerdomain.NewDate(2000, 1, 1), 1)
	return err
}
