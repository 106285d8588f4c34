package utils

// Server-side labels for fixed keys: health checks and the interpretation
// codes attached to reliability, validity and hypothesis-test results.

var translations = map[string]map[string]string{
	"en": {
		"health.ok": "ok",

		"reliability.excellent":    "Excellent",
		"reliability.good":         "Good",
		"reliability.acceptable":   "Acceptable",
		"reliability.questionable": "Questionable",
		"reliability.poor":         "Poor",
		"reliability.unacceptable": "Unacceptable",

		"kmo.marvelous":    "Marvelous",
		"kmo.meritorious":  "Meritorious",
		"kmo.middling":     "Middling",
		"kmo.mediocre":     "Mediocre",
		"kmo.miserable":    "Miserable",
		"kmo.unacceptable": "Unacceptable",

		"bartlett.reject": "Reject H0: variables are correlated (suitable for factor analysis)",
		"bartlett.retain": "Do not reject H0: variables are not sufficiently correlated",

		"ivc.excellent":    "Excellent content validity",
		"ivc.good":         "Good content validity",
		"ivc.acceptable":   "Acceptable content validity",
		"ivc.insufficient": "Insufficient content validity - review items",

		"factorial.extracted": "Factor structure extracted",

		"convergent.excellent":    "Excellent convergent validity",
		"convergent.good":         "Good convergent validity",
		"convergent.acceptable":   "Acceptable convergent validity",
		"convergent.insufficient": "Insufficient convergent validity",

		"discriminant.excellent":    "Excellent discriminant validity",
		"discriminant.good":         "Good discriminant validity",
		"discriminant.moderate":     "Moderate discriminant validity",
		"discriminant.insufficient": "Insufficient discriminant validity (dimensions too related)",

		"criterion.excellent":    "Excellent criterion validity",
		"criterion.good":         "Good criterion validity",
		"criterion.acceptable":   "Acceptable criterion validity",
		"criterion.insufficient": "Insufficient criterion validity (not significant)",

		"hypothesis.reject": "Significant (null hypothesis rejected)",
		"hypothesis.retain": "Not significant (null hypothesis retained)",

		"cohen_d.small":      "Small effect",
		"cohen_d.medium":     "Medium effect",
		"cohen_d.large":      "Large effect",
		"cohen_d.very_large": "Very large effect",

		"eta_squared.small":  "Small effect",
		"eta_squared.medium": "Medium effect",
		"eta_squared.large":  "Large effect",

		"correlation.negligible":  "Negligible correlation",
		"correlation.weak":        "Weak correlation",
		"correlation.moderate":    "Moderate correlation",
		"correlation.strong":      "Strong correlation",
		"correlation.very_strong": "Very strong correlation",

		"cramers_v.weak":     "Weak association",
		"cramers_v.moderate": "Moderate association",
		"cramers_v.strong":   "Strong association",
	},
	"es": {
		"health.ok": "ok",

		"reliability.excellent":    "Elevada (Excelente)",
		"reliability.good":         "Muy alta (Buena)",
		"reliability.acceptable":   "Alta (Aceptable)",
		"reliability.questionable": "Moderada (Cuestionable)",
		"reliability.poor":         "Baja (Pobre)",
		"reliability.unacceptable": "Muy baja (Inaceptable)",

		"kmo.marvelous":    "Maravilloso",
		"kmo.meritorious":  "Meritorio",
		"kmo.middling":     "Mediano",
		"kmo.mediocre":     "Mediocre",
		"kmo.miserable":    "Miserable",
		"kmo.unacceptable": "Inaceptable",

		"bartlett.reject": "Rechazar H0: las variables están correlacionadas (apropiado para análisis factorial)",
		"bartlett.retain": "No rechazar H0: las variables NO están suficientemente correlacionadas",

		"ivc.excellent":    "Excelente validez de contenido",
		"ivc.good":         "Buena validez de contenido",
		"ivc.acceptable":   "Validez de contenido aceptable",
		"ivc.insufficient": "Validez de contenido insuficiente - revisar ítems",

		"factorial.extracted": "Estructura factorial extraída",

		"convergent.excellent":    "Excelente validez convergente",
		"convergent.good":         "Buena validez convergente",
		"convergent.acceptable":   "Validez convergente aceptable",
		"convergent.insufficient": "Validez convergente insuficiente",

		"discriminant.excellent":    "Excelente validez discriminante",
		"discriminant.good":         "Buena validez discriminante",
		"discriminant.moderate":     "Validez discriminante moderada",
		"discriminant.insufficient": "Validez discriminante insuficiente (dimensiones muy relacionadas)",

		"criterion.excellent":    "Excelente validez de criterio",
		"criterion.good":         "Buena validez de criterio",
		"criterion.acceptable":   "Validez de criterio aceptable",
		"criterion.insufficient": "Validez de criterio insuficiente (no significativa)",

		"hypothesis.reject": "Significativo (se rechaza la hipótesis nula)",
		"hypothesis.retain": "No significativo (no se rechaza la hipótesis nula)",

		"cohen_d.small":      "Efecto pequeño",
		"cohen_d.medium":     "Efecto mediano",
		"cohen_d.large":      "Efecto grande",
		"cohen_d.very_large": "Efecto muy grande",

		"eta_squared.small":  "Efecto pequeño",
		"eta_squared.medium": "Efecto mediano",
		"eta_squared.large":  "Efecto grande",

		"correlation.negligible":  "Correlación despreciable",
		"correlation.weak":        "Correlación débil",
		"correlation.moderate":    "Correlación moderada",
		"correlation.strong":      "Correlación fuerte",
		"correlation.very_strong": "Correlación muy fuerte",

		"cramers_v.weak":     "Asociación débil",
		"cramers_v.moderate": "Asociación moderada",
		"cramers_v.strong":   "Asociación fuerte",
	},
}

// T returns the translated string for key in locale; falls back to English,
// then to the key itself.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
