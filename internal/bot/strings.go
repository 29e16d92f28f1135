package bot

// Strings is the user-facing language pack for one medium.
type Strings struct {
	TypeException     string
	PleaseWait        string
	ValidationPending string
	Unregistered      string
	UnhandledStep     string
}

var languagePacks = map[string]Strings{
	"english": {
		TypeException:     "Sorry, I can't process that kind of message yet.",
		PleaseWait:        "Please wait, I'm still working on your previous message.",
		ValidationPending: "Your previous request is still being processed. Please try again in a moment.",
		Unregistered:      "You have been unregistered. Say hi to start over!",
		UnhandledStep:     "Something went wrong with your session. Send \"user reset\" to start over.",
	},
	"hindi": {
		TypeException:     "क्षमा करें, मैं इस प्रकार का संदेश अभी संसाधित नहीं कर सकता।",
		PleaseWait:        "कृपया प्रतीक्षा करें, मैं आपके पिछले संदेश पर काम कर रहा हूँ।",
		ValidationPending: "आपका पिछला अनुरोध अभी संसाधित हो रहा है। कृपया थोड़ी देर में पुनः प्रयास करें।",
		Unregistered:      "आपका पंजीकरण हटा दिया गया है। फिर से शुरू करने के लिए नमस्ते कहें!",
		UnhandledStep:     "आपके सत्र में कुछ गड़बड़ हुई। फिर से शुरू करने के लिए \"user reset\" भेजें।",
	},
}

// StringsForMedium returns the language pack for a medium, falling back to
// english for unknown mediums.
func StringsForMedium(medium string) Strings {
	if pack, ok := languagePacks[medium]; ok {
		return pack
	}
	return languagePacks["english"]
}
