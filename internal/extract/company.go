package extract

import "regexp"

var (
	// PT Teknologi Maju, CV. Sinar Jaya
	reCompanyIDPrefix = regexp.MustCompile(`(?i)^(?:PT|CV)\.?\s+`)
	// Acme Inc., Initech Solutions, Siemens GmbH
	reCompanySuffix = regexp.MustCompile(`(?i)\b(?:inc\.|corp\.|ltd\.|llc|co\.|corporation|company|technologies|solutions|group|gmbh|s\.a\.)$`)
)

// CompanyRules is the primary company chain: Indonesian legal-entity prefix
// first, then international legal-entity suffixes.
var CompanyRules = Chain{
	wholeLine("company.id_prefix", reCompanyIDPrefix),
	wholeLine("company.intl_suffix", reCompanySuffix),
}
