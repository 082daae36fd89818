package translate

import "strings"

// demoNotes holds the localised disclaimer of each demo translation.
// Languages without an entry use the English note.
var demoNotes = map[string]struct{ tag, note string }{
	"es": {"ESPAÑOL", "Esta es una traducción de demostración. En una implementación real, se utilizaría un servicio de traducción profesional."},
	"fr": {"FRANÇAIS", "Ceci est une traduction de démonstration. Dans une implémentation réelle, un service de traduction professionnel serait utilisé."},
	"de": {"DEUTSCH", "Dies ist eine Demo-Übersetzung. In einer echten Implementierung würde ein professioneller Übersetzungsdienst verwendet werden."},
	"it": {"ITALIANO", "Questa è una traduzione dimostrativa. In un'implementazione reale, verrebbe utilizzato un servizio di traduzione professionale."},
	"pt": {"PORTUGUÊS", "Esta é uma tradução demonstrativa. Em uma implementação real, um serviço de tradução profissional seria usado."},
	"sw": {"KISWAHILI", "Huu ni tafsiri ya onyesho. Katika utekelezaji halisi, huduma ya kitaalamu ya tafsiri ingetumika."},
}

const genericDemoNote = "This is a demo translation. In a real implementation, a professional translation service would be used."

// DemoTranslation is the placeholder shown when no provider could
// translate. It is deterministic for a given text and language.
func DemoTranslation(text string, lang Language) string {
	tag, note := strings.ToUpper(lang.Name), genericDemoNote
	if d, ok := demoNotes[lang.Code]; ok {
		tag, note = d.tag, d.note
	}
	return "[" + tag + "] " + text + "\n\n*" + note + "*"
}
