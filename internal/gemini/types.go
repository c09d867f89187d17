package gemini

// Image is an uploaded or generated image payload: base64 data plus mime type.
type Image struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}
