package pipeline

import (
	"strings"

	"hvdcmap/internal"
	"hvdcmap/internal/codes"
	"hvdcmap/internal/util"
)

// vendorSiteForHit derives display names for the vendor and site segments
// embedded in HVDC-style codes.
func vendorSiteForHit(resolver *codes.Resolver, hit internal.CodeHit) (vendor, site *string) {
	parts := strings.Split(strings.ToUpper(hit.Code), "-")
	switch hit.Kind {
	case internal.KindHVDCAdopt, internal.KindParenDerived:
		if len(parts) >= 3 {
			vendor = util.StringPtr(resolver.ResolveVendor(parts[2]))
		}
	case internal.KindHVDCGeneric:
		if len(parts) >= 3 {
			site = util.StringPtr(resolver.ResolveSite(parts[1]))
			vendor = util.StringPtr(resolver.ResolveVendor(parts[2]))
		}
	case internal.KindJPTWGRMTag:
		if len(parts) >= 2 {
			site = util.StringPtr(resolver.ResolveSite(parts[1]))
		}
	}
	return vendor, site
}

// BuildAdhocRows turns one-off extraction hits into export rows without
// persisting anything.
func BuildAdhocRows(hits []internal.CodeHit, matcher *Matcher, resolver *codes.Resolver) []internal.CodeExportRow {
	out := make([]internal.CodeExportRow, 0, len(hits))
	for _, hit := range hits {
		match := matcher.Match(hit.Code)
		row := internal.CodeExportRow{
			Source:         string(hit.Source),
			Kind:           string(hit.Kind),
			Code:           hit.Code,
			CrossRefStatus: string(match.Status),
			Confidence:     match.Confidence,
			CrossRefReason: string(match.Reason),
		}

		vendor, site := vendorSiteForHit(resolver, hit)
		row.Vendor = vendor
		row.Site = site

		if match.Record != nil {
			row.CargoCase = util.StringPtr(match.Record.Case)
			row.CargoStatus = util.StringPtr(match.Record.Status)
			row.CargoETA = match.Record.ETA
			row.CargoATA = match.Record.ATA
		}
		out = append(out, row)
	}
	return out
}
