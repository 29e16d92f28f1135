package delivery

// Kind identifies the shape of an outbound message.
type Kind string

const (
	KindText     Kind = "text"
	KindMedia    Kind = "media"
	KindButtons  Kind = "buttons"
	KindLocation Kind = "location"
)

// Message is the abstract outbound message produced by step handlers. It is
// consumed exactly once by the delivery client and never persisted.
type Message struct {
	Kind Kind

	// KindText
	Text string

	// KindMedia
	MediaURL string
	MimeType string
	Caption  string

	// KindButtons
	Body    string
	Buttons []string

	// KindLocation
	Latitude  float64
	Longitude float64
	Name      string
	Address   string
}

// NewText builds a plain text message.
func NewText(text string) Message {
	return Message{Kind: KindText, Text: text}
}

// NewMedia builds a media message with an optional caption.
func NewMedia(url, mimeType, caption string) Message {
	return Message{Kind: KindMedia, MediaURL: url, MimeType: mimeType, Caption: caption}
}

// NewButtons builds a button prompt with ordered reply options.
func NewButtons(body string, buttons []string) Message {
	return Message{Kind: KindButtons, Body: body, Buttons: buttons}
}

// NewLocation builds a structured location message.
func NewLocation(lat, lon float64, name, address string) Message {
	return Message{Kind: KindLocation, Latitude: lat, Longitude: lon, Name: name, Address: address}
}
