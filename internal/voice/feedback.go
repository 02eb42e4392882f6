package voice

import (
	"fmt"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
)

// Feedback renders the confirmation line shown after a transcript is interpreted,
// e.g. "Identified: ₹500 | Food".
func Feedback(res Result, categories *domain.CategorySet, catalog *i18n.Catalog, lang i18n.Lang) string {
	label := res.CategoryID
	if categories != nil {
		label = categories.Label(res.CategoryID)
	}
	return fmt.Sprintf("%s: ₹%s | %s", catalog.T(lang, i18n.KeyIdentified), res.Amount, label)
}
