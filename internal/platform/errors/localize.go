package errors

import (
	i18n "github.com/panelkit/dealerpanel/internal/platform/errors/i18n"
)

// AsDomain returns the first domain error in err's chain.
func AsDomain(err error) (*Error, bool) {
	for err != nil {
		if domainErr, ok := err.(*Error); ok {
			return domainErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Localize renders the user-facing message for err in the given locale.
// Errors outside this domain render as the localized unknown message.
func Localize(err error, locale string) string {
	catalog := i18n.ForLocale(locale)
	if domainErr, ok := AsDomain(err); ok {
		return catalog.Format(string(domainErr.Code), domainErr.Metadata)
	}
	return catalog.Format(string(CodeUnknown), nil)
}
