package chart

import "strings"

// GenericTitle is used when neither program nor period is known.
const GenericTitle = "Target Capaian Program UKM PONJA"

// Title builds the chart heading from the descriptive metadata.
func Title(programService, period string) string {
	programService = strings.TrimSpace(programService)
	period = strings.TrimSpace(period)
	switch {
	case programService != "" && period != "":
		return "Target " + programService + " Periode " + period
	case programService != "":
		return "Target " + programService
	case period != "":
		return GenericTitle + " Periode " + period
	default:
		return GenericTitle
	}
}
