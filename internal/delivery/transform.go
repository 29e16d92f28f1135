package delivery

// Transform converts an abstract Message into the wire shape the Kluster API
// expects. Pure and total over the four kinds; unknown kinds degrade to an
// empty text body rather than panicking mid-send.
func Transform(m Message) map[string]any {
	switch m.Kind {
	case KindText:
		return map[string]any{
			"type": "text",
			"text": map[string]any{"body": m.Text},
		}
	case KindMedia:
		media := map[string]any{"url": m.MediaURL}
		if m.MimeType != "" {
			media["mime_type"] = m.MimeType
		}
		if m.Caption != "" {
			media["body"] = m.Caption
		}
		return map[string]any{
			"type":  "media",
			"media": media,
		}
	case KindButtons:
		buttons := make([]map[string]any, 0, len(m.Buttons))
		for _, b := range m.Buttons {
			buttons = append(buttons, map[string]any{
				"type":  "solid",
				"body":  b,
				"reply": b,
			})
		}
		return map[string]any{
			"type": "button",
			"button": map[string]any{
				"body":    m.Body,
				"buttons": buttons,
			},
		}
	case KindLocation:
		return map[string]any{
			"type": "location",
			"location": map[string]any{
				"latitude":  m.Latitude,
				"longitude": m.Longitude,
				"name":      m.Name,
				"address":   m.Address,
			},
		}
	default:
		return map[string]any{
			"type": "text",
			"text": map[string]any{"body": ""},
		}
	}
}
