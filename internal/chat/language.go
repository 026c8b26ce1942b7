package chat

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pack is the interface text of one assistant language.
type Pack struct {
	Language    string
	Tag         language.Tag
	Title       string
	Subtitle    string
	Placeholder string
	Welcome     string
	Suggestions []string
}

// Packs lists the supported languages. English is the fallback.
var Packs = []Pack{
	{
		Language:    "English",
		Tag:         language.English,
		Title:       "🤖 Agri-Assist AI",
		Subtitle:    "Expert farming advice 24/7",
		Placeholder: "Ask about your farm...",
		Welcome:     "Namaste! I am your Advanced AI Agriculture Assistant. I can help with:\n\n🌿 Crop Diseases\n💰 Market Prices\n💧 Irrigation Advice\n📜 Government Schemes\n\nHow can I assist you today?",
		Suggestions: []string{
			"Why are my tomato leaves yellow?",
			"Price of onion in Maharashtra?",
			"Best fertilizer for Rice?",
			"Details of PM Kisan scheme",
		},
	},
	{
		Language:    "Kannada",
		Tag:         language.Make("kn"),
		Title:       "🤖 ಕೃಷಿ-ಸಹಾಯಕ AI",
		Subtitle:    "ತಜ್ಞ ಕೃಷಿ ಸಲಹೆ 24/7",
		Placeholder: "ನಿಮ್ಮ ಕೃಷಿಯ ಬಗ್ಗೆ ಕೇಳಿ...",
		Welcome:     "ನಮಸ್ಕಾರ! ನಾನು ನಿಮ್ಮ ಸುಧಾರಿತ AI ಕೃಷಿ ಸಹಾಯಕ. ನಾನು ಇವುಗಳಿಗೆ ಸಹಾಯ ಮಾಡಬಲ್ಲೆ:\n\n🌿 ಬೆಳೆ ರೋಗಗಳು\n💰 ಮಾರುಕಟ್ಟೆ ಬೆಲೆಗಳು\n💧 ನೀರಾವರಿ ಸಲಹೆ\n📜 ಸರ್ಕಾರಿ ಯೋಜನೆಗಳು\n\nನಾನು ನಿಮಗೆ ಹೇಗೆ ಸಹಾಯ ಮಾಡಲಿ?",
		Suggestions: []string{
			"ಟೊಮೆಟೊ ಎಲೆಗಳು ಏಕೆ ಹಳದಿಯಾಗುತ್ತಿವೆ?",
			"ಮಹಾರಾಷ್ಟ್ರದಲ್ಲಿ ಈರುಳ್ಳಿ ಬೆಲೆ?",
			"ಭತ್ತಕ್ಕೆ ಉತ್ತಮ ಗೊಬ್ಬರ ಯಾವುದು?",
			"ಪಿಎಂ ಕಿಸಾನ್ ಯೋಜನೆಯ ವಿವರಗಳು",
		},
	},
	{
		Language:    "Hindi",
		Tag:         language.Hindi,
		Title:       "🤖 कृषि-सहायक AI",
		Subtitle:    "विशेषज्ञ कृषि सलाह 24/7",
		Placeholder: "अपनी खेती के बारे में पूछें...",
		Welcome:     "नमस्ते! मैं आपका उन्नत AI कृषि सहायक हूँ। मैं मदद कर सकता हूँ:\n\n🌿 फसल रोग\n💰 बाजार मूल्य\n💧 सिंचाई सलाह\n📜 सरकारी योजनाएं\n\nआज मैं आपकी कैसे सहायता कर सकता हूँ?",
		Suggestions: []string{
			"मेरे टमाटर के पत्ते पीले क्यों हो रहे हैं?",
			"महाराष्ट्र में प्याज का भाव?",
			"चावल के लिए सबसे अच्छा उर्वरक?",
			"पीएम किसान योजना का विवरण",
		},
	},
	{
		Language:    "Telugu",
		Tag:         language.Telugu,
		Title:       "🤖 అగ్రి-అసిస్ట్ AI",
		Subtitle:    "నిపుణుల వ్యవసాయ సలహా 24/7",
		Placeholder: "మీ పొలం గురించి అడగండి...",
		Welcome:     "నమస్కారం! నేను మీ అడ్వాన్స్‌డ్ AI అగ్రి అసిస్టెంట్‌ని. నేను సహాయం చేయగలను:\n\n🌿 పంట వ్యాధులు\n💰 మార్కెట్ ధరలు\n💧 నీటిపారుదల సలహా\n📜 ప్రభుత్వ పథకాలు\n\nనేను మీకు ఎలా సహాయం చేయగలను?",
		Suggestions: []string{
			"నా టమోటా ఆకులు ఎందుకు పసుపు రంగులోకి మారుతున్నాయి?",
			"మహారాష్ట్రలో ఉల్లిపాయ ధర?",
			"వరికి ఉత్తమ ఎరువులు?",
			"PM కిసాన్ పథకం వివరాలు",
		},
	},
	{
		Language:    "Tamil",
		Tag:         language.Tamil,
		Title:       "🤖 அக்ரி-அசிஸ்ட் AI",
		Subtitle:    "நிபுணர் விவசாய ஆலோசனை 24/7",
		Placeholder: "உங்கள் பண்ணையைப் பற்றி கேளுங்கள்...",
		Welcome:     "வணக்கம்! நான் உங்கள் மேம்பட்ட AI விவசாய உதவியாளர். நான் உதவ முடியும்:\n\n🌿 பயிர் நோய்கள்\n💰 சந்தை விலைகள்\n💧 நீர்ப்பாசன ஆலோசனை\n📜 அரசு திட்டங்கள்\n\nஇன்று நான் உங்களுக்கு எப்படி உதவ முடியும்?",
		Suggestions: []string{
			"தக்காளி இலைகள் ஏன் மஞ்சளாகின்றன?",
			"மகாராஷ்டிராவில் வெங்காயத்தின் விலை?",
			"நெல்லுக்கு சிறந்த உரம் எது?",
			"பிஎம் கிசான் திட்டத்தின் விவரங்கள்",
		},
	},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(Packs))
	for i, p := range Packs {
		tags[i] = p.Tag
	}
	return language.NewMatcher(tags)
}()

// Resolve finds the pack for a language name ("tamil") or BCP 47 tag
// ("kn", "hi-IN"). Anything else resolves to English.
func Resolve(input string) Pack {
	input = strings.TrimSpace(input)
	name := cases.Title(language.Und).String(strings.ToLower(input))
	for _, p := range Packs {
		if p.Language == name {
			return p
		}
	}

	tag, err := language.Parse(input)
	if err != nil {
		return Packs[0]
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Packs[0]
	}
	return Packs[idx]
}

// Languages returns the supported language names in menu order.
func Languages() []string {
	out := make([]string, len(Packs))
	for i, p := range Packs {
		out[i] = p.Language
	}
	return out
}
