package translation

import (
	"maps"
	"slices"
	"strings"
)

type LanguageOption struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

type languageLabel struct {
	english string
	native  string
	chinese string
}

var translationLanguageLabels = map[string]languageLabel{
	"ar": {english: "Arabic", native: "العربية", chinese: "阿拉伯语"},
	"de": {english: "German", native: "Deutsch", chinese: "德语"},
	"en": {english: "English", native: "English", chinese: "英语"},
	"es": {english: "Spanish", native: "Español", chinese: "西班牙语"},
	"fr": {english: "French", native: "Français", chinese: "法语"},
	"id": {english: "Indonesian", native: "Bahasa Indonesia", chinese: "印度尼西亚语"},
	"it": {english: "Italian", native: "Italiano", chinese: "意大利语"},
	"ja": {english: "Japanese", native: "日本語", chinese: "日语"},
	"ko": {english: "Korean", native: "한국어", chinese: "韩语"},
	"nl": {english: "Dutch", native: "Nederlands", chinese: "荷兰语"},
	"pl": {english: "Polish", native: "Polski", chinese: "波兰语"},
	"pt": {english: "Portuguese", native: "Português", chinese: "葡萄牙语"},
	"ru": {english: "Russian", native: "Русский", chinese: "俄语"},
	"th": {english: "Thai", native: "ไทย", chinese: "泰语"},
	"tr": {english: "Turkish", native: "Türkçe", chinese: "土耳其语"},
	"uk": {english: "Ukrainian", native: "Українська", chinese: "乌克兰语"},
	"vi": {english: "Vietnamese", native: "Tiếng Việt", chinese: "越南语"},
	"zh": {english: "Chinese", native: "中文", chinese: "中文"},
}

func SupportedTranslationLanguageCodes() []string {
	return slices.Sorted(maps.Keys(translationLanguageLabels))
}

// TranslationLanguageOptions lists the targets any registered provider
// accepts, falling back to the labelled set. Codes without a label are shown
// upper-cased.
func TranslationLanguageOptions(registry *Registry) []LanguageOption {
	seen := map[string]struct{}{}
	if registry != nil {
		for _, provider := range registry.providers {
			for _, code := range provider.SupportedLanguages() {
				if code = normalizeLangCode(code); code != "" {
					seen[code] = struct{}{}
				}
			}
		}
	}
	codes := slices.Sorted(maps.Keys(seen))
	if len(codes) == 0 {
		codes = SupportedTranslationLanguageCodes()
	}

	options := make([]LanguageOption, len(codes))
	for i, code := range codes {
		label, ok := translationLanguageLabels[code]
		if !ok {
			options[i] = LanguageOption{Code: code, Label: strings.ToUpper(code)}
			continue
		}
		options[i] = LanguageOption{Code: code, Label: label.english, Native: label.native}
	}
	return options
}
