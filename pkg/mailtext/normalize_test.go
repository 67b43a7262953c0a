package mailtext_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"placement-reminder/pkg/gmail"
	"placement-reminder/pkg/mailtext"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestNormalize(t *testing.T) {
	t.Run("Nil part", func(t *testing.T) {
		if got := mailtext.Normalize(nil); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("Plain text", func(t *testing.T) {
		part := &gmail.BodyPart{
			MimeType: "text/plain",
			Data:     encode("Interview on 25 March 2025 at 3pm"),
		}
		want := "Interview on 25 March 2025 at 3pm"
		if got := mailtext.Normalize(part); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("Unpadded base64", func(t *testing.T) {
		raw := encode("Drive starts tomorrow")
		part := &gmail.BodyPart{
			MimeType: "text/plain",
			Data:     strings.TrimRight(raw, "="),
		}
		want := "Drive starts tomorrow"
		if got := mailtext.Normalize(part); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("Invalid base64 degrades to empty", func(t *testing.T) {
		part := &gmail.BodyPart{MimeType: "text/plain", Data: "!!notbase64!!"}
		if got := mailtext.Normalize(part); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("Invalid utf8 bytes replaced", func(t *testing.T) {
		data := base64.URLEncoding.EncodeToString([]byte{'o', 'k', ' ', 0xff, 0xfe})
		part := &gmail.BodyPart{MimeType: "text/plain", Data: data}
		got := mailtext.Normalize(part)
		if !strings.HasPrefix(got, "ok ") {
			t.Fatalf("got %q, want prefix %q", got, "ok ")
		}
		if strings.ContainsRune(got, 0xfffd) == false {
			t.Errorf("got %q, want replacement rune present", got)
		}
	})

	t.Run("HTML stripped to visible text", func(t *testing.T) {
		markup := `<html><head><style>p{color:red}</style></head><body>
			<p>Dear student,</p>
			<p>Your interview is on <b>25 March 2025</b> at 3pm.</p>
			<script>alert("x")</script>
		</body></html>`
		part := &gmail.BodyPart{MimeType: "text/html", Data: encode(markup)}
		got := mailtext.Normalize(part)
		if !strings.Contains(got, "Dear student,") {
			t.Errorf("got %q, want greeting line", got)
		}
		if !strings.Contains(got, "Your interview is on 25 March 2025 at 3pm.") {
			t.Errorf("got %q, want flattened bold text", got)
		}
		if strings.Contains(got, "alert") || strings.Contains(got, "color:red") {
			t.Errorf("got %q, script or style leaked through", got)
		}
	})

	t.Run("Br becomes newline", func(t *testing.T) {
		part := &gmail.BodyPart{
			MimeType: "text/html",
			Data:     encode("Round 1<br>Round 2"),
		}
		want := "Round 1\nRound 2"
		if got := mailtext.Normalize(part); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("Multipart flattens children", func(t *testing.T) {
		part := &gmail.BodyPart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.BodyPart{
				{MimeType: "text/plain", Data: encode("plain version")},
				{MimeType: "text/html", Data: encode("<p>html version</p>")},
				{MimeType: "image/png", Data: ""},
			},
		}
		want := "plain version\nhtml version"
		if got := mailtext.Normalize(part); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("Nested multipart", func(t *testing.T) {
		part := &gmail.BodyPart{
			MimeType: "multipart/mixed",
			Parts: []*gmail.BodyPart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.BodyPart{
						{MimeType: "text/plain", Data: encode("inner text")},
					},
				},
				{MimeType: "text/plain", Data: encode("outer text")},
			},
		}
		want := "inner text\nouter text"
		if got := mailtext.Normalize(part); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("Empty payload", func(t *testing.T) {
		part := &gmail.BodyPart{MimeType: "multipart/mixed"}
		if got := mailtext.Normalize(part); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}
