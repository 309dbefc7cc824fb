package appstream

// QualityIssue is a shortcoming found during the component quality pass.
// Vars are flattened key/value pairs for the hint explanation.
type QualityIssue struct {
	Tag  string
	Vars []string
}

// kinds that must carry a long description to be useful in a catalog
func kindRequiresDescription(k Kind) bool {
	switch k {
	case KindDesktopApp, KindConsoleApp, KindWebApp:
		return true
	default:
		return false
	}
}

// kinds that must be filed under at least one valid menu category
func kindRequiresCategories(k Kind) bool {
	return k == KindDesktopApp || k == KindWebApp
}

// CheckQuality runs the final metadata quality pass over a component.
// Icon requirements are not checked here, they depend on the outcome of
// icon processing and are verified by the compose pipeline afterwards.
func CheckQuality(cpt *Component) []QualityIssue {
	var issues []QualityIssue

	if cpt.Name() == "" {
		issues = append(issues, QualityIssue{Tag: "metainfo-no-name"})
	}
	if cpt.Summary() == "" {
		issues = append(issues, QualityIssue{Tag: "metainfo-no-summary"})
	}
	if kindRequiresDescription(cpt.Kind) && cpt.Description() == "" {
		issues = append(issues, QualityIssue{
			Tag:  "description-missing",
			Vars: []string{"kind", cpt.Kind.String()},
		})
	}
	if kindRequiresCategories(cpt.Kind) && !hasValidCategory(cpt) {
		issues = append(issues, QualityIssue{Tag: "no-valid-category"})
	}

	return issues
}

// CheckIconRequirements verifies a processed component carries the icons its
// kind demands. It must run after icon processing so cached icons from the
// unit have already been recorded.
func CheckIconRequirements(cpt *Component) []QualityIssue {
	hasIcon := len(cpt.Icons) > 0

	switch cpt.Kind {
	case KindDesktopApp:
		if !hasIcon {
			return []QualityIssue{{Tag: "gui-app-without-icon"}}
		}
	case KindWebApp:
		if !hasIcon {
			return []QualityIssue{{Tag: "web-app-without-icon"}}
		}
		// web apps cannot ship cached icons themselves
		if !cpt.HasIconOfKind(IconKindCached) && !cpt.HasIconOfKind(IconKindRemote) &&
			!cpt.HasIconOfKind(IconKindStock) {
			return []QualityIssue{{Tag: "no-stock-icon"}}
		}
	case KindFont:
		if !hasIcon {
			return []QualityIssue{{Tag: "font-without-icon"}}
		}
	case KindOperatingSystem:
		if !hasIcon {
			return []QualityIssue{{Tag: "os-without-icon"}}
		}
	}
	return nil
}

func hasValidCategory(cpt *Component) bool {
	for _, cat := range cpt.Categories {
		if cat == "" || filteredCategories[cat] {
			continue
		}
		if IsKnownCategory(cat) {
			return true
		}
	}
	return false
}
