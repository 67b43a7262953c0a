package gmail

// MessageSummary identifies a message returned by a list call.
type MessageSummary struct {
	ID string
}

// BodyPart is one node of a message payload tree. Data carries the raw
// base64url-encoded payload exactly as the Gmail API returns it.
type BodyPart struct {
	MimeType string
	Data     string
	Parts    []*BodyPart
}

// FullMessage is a fetched message with its headers and payload tree.
type FullMessage struct {
	ID      string
	Headers map[string][]string // keys are lower-cased header names
	Snippet string
	Payload *BodyPart
}

// Header returns the first value of the named header, case-insensitively.
// The second return reports whether the header was present.
func (m *FullMessage) Header(name string) (string, bool) {
	values, ok := m.Headers[lowerASCII(name)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
