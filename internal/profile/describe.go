// Package profile turns a completed answer set into the investor profile
// shown on the summary page.
package profile

import "github.com/fundora/kyb-cli/internal/model"

const notProvided = "Information non renseignée"

var riskDescriptions = map[string]string{
	"faible": "Profil prudent privilégiant la sécurité et la stabilité des investissements",
	"modere": "Profil équilibré recherchant un compromis entre sécurité et performance",
	"eleve":  "Profil dynamique acceptant une volatilité plus importante pour viser des rendements potentiellement supérieurs",
}

var horizonDescriptions = map[string]string{
	"court": "Horizon court terme (< 2 ans) privilégiant la liquidité",
	"moyen": "Horizon moyen terme (2-5 ans) permettant une stratégie équilibrée",
	"long":  "Horizon long terme (> 5 ans) permettant d'absorber les cycles de marché",
}

var objectiveDescriptions = map[string]string{
	"patrimoine":       "Gestion patrimoniale visant à développer et préserver le capital",
	"impact":           "Investissement à impact visant des retombées sociales et environnementales positives",
	"entrepreneuriat":  "Développement entrepreneurial soutenant l'innovation et la croissance",
	"reinvestissement": "Réinvestissement des bénéfices pour maximiser le potentiel de croissance",
}

var lossDescriptions = map[string]string{
	"aucune": "Aucune perte subie sur les investissements financiers",
	"5pct":   "Pertes limitées, jusqu'à 5 % des montants investis",
	"10pct":  "Pertes significatives, supérieures à 10 % des montants investis",
}

var peDescriptions = map[string]string{
	"excellente": "Excellente compréhension du fonctionnement des fonds de Private Equity",
	"bonne":      "Bonne compréhension du fonctionnement des fonds de Private Equity",
	"basique":    "Compréhension basique des fonds de Private Equity",
	"aucune":     "Aucune connaissance des fonds de Private Equity",
}

var experienceDescriptions = map[model.ExperienceLevel]string{
	model.ExperienceHigh:   "Investisseur expérimenté, familier du Private Equity et ayant diversifié ses placements",
	model.ExperienceMedium: "Investisseur disposant d'une première expérience sur plusieurs produits financiers",
	model.ExperienceLow:    "Investisseur débutant ou peu diversifié",
}

func describe(table map[string]string, code, fallback string) string {
	if d, ok := table[code]; ok {
		return d
	}
	return fallback
}

// RiskDescription describes a risk code (faible, modere, eleve).
func RiskDescription(code string) string {
	return describe(riskDescriptions, code, "Profil non défini")
}

// HorizonDescription describes a horizon code (court, moyen, long).
func HorizonDescription(code string) string {
	return describe(horizonDescriptions, code, "Horizon non défini")
}

// ObjectiveDescription describes an objective code.
func ObjectiveDescription(code string) string {
	return describe(objectiveDescriptions, code, "Objectif non défini")
}

// LossDescription describes the loss history (aucune, 5pct, 10pct).
func LossDescription(code string) string {
	return describe(lossDescriptions, code, notProvided)
}

// PEUnderstandingDescription describes the self-assessed private equity
// knowledge (excellente, bonne, basique, aucune).
func PEUnderstandingDescription(code string) string {
	return describe(peDescriptions, code, notProvided)
}

// ExperienceDescription describes an experience level.
func ExperienceDescription(level model.ExperienceLevel) string {
	if d, ok := experienceDescriptions[level]; ok {
		return d
	}
	return notProvided
}

const yes = "OUI"

// ClassifyExperience derives the experience level. Rules apply in order:
// invested, understands PE and more than three products is high; invested and
// more than one product is medium; anything else is low. understandsPE only
// matters for the high level.
func ClassifyExperience(hasInvested, understandsPE string, products model.Value) model.ExperienceLevel {
	invested := hasInvested == yes
	n := products.Len()

	switch {
	case invested && understandsPE == yes && n > 3:
		return model.ExperienceHigh
	case invested && n > 1:
		return model.ExperienceMedium
	default:
		return model.ExperienceLow
	}
}
