// Package i18n translates qrstudio's user-facing labels.
//
// Catalogs are YAML documents keyed by language code and then by nested
// message keys. The English and Japanese catalogs ship embedded in the
// binary (BuiltinAdapter); FSAdapter and MapAdapter load others.
//
//	tr, err := i18n.NewTranslator(ctx, i18n.BuiltinAdapter())
//	lang := tr.Match(os.Getenv("LANG"))         // "ja_JP.UTF-8" -> "ja"
//	label := tr.T(lang, "feedback.copied_raster")
//
// Language negotiation uses golang.org/x/text/language, so regional and
// script variants resolve to the closest loaded catalog.
package i18n
