package download

import (
	"mime"
	"net/http"
	"strings"
)

// UserAction is what the user did to reach the resource.
type UserAction int

const (
	// ActionNavigate is a plain link activation.
	ActionNavigate UserAction = iota
	// ActionExplicitSaveAs is "save link as" from a context menu.
	ActionExplicitSaveAs
)

func (a UserAction) String() string {
	if a == ActionExplicitSaveAs {
		return "save-as"
	}
	return "navigate"
}

// Outcome is whether a response is rendered or saved.
type Outcome int

const (
	OutcomeDisplay Outcome = iota
	OutcomeDownload
)

func (o Outcome) String() string {
	if o == OutcomeDownload {
		return "download"
	}
	return "display"
}

// Reason attributes a download to the rule that triggered it.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUserRequestedSaveAs
	ReasonAnchorDownloadAttribute
	ReasonContentDispositionAttachment
	ReasonUnrenderableMimeType
)

func (r Reason) String() string {
	switch r {
	case ReasonUserRequestedSaveAs:
		return "user-requested-save-as"
	case ReasonAnchorDownloadAttribute:
		return "anchor-download-attribute"
	case ReasonContentDispositionAttachment:
		return "content-disposition-attachment"
	case ReasonUnrenderableMimeType:
		return "unrenderable-mime-type"
	default:
		return "none"
	}
}

// sniffLen is the number of body bytes the sniffer looks at.
const sniffLen = 512

// Input describes a response and the context it was requested in.
type Input struct {
	URL                        string
	UserAction                 UserAction
	AnchorHasDownloadAttribute bool
	// AnchorDownloadName is the value of the anchor's download attribute.
	AnchorDownloadName string
	ContentDisposition string
	ContentType        string
	// Body holds at least the first bytes of the response body.
	Body []byte
	// DownloadUnrenderable saves responses whose type cannot be shown inline.
	DownloadUnrenderable bool
}

// Decision is the resolver output.
type Decision struct {
	Outcome           Outcome
	Reason            Reason
	SuggestedFilename string
	MimeType          string
}

// Resolve classifies a response. The first matching rule wins: explicit
// save-as, anchor download attribute, attachment disposition, then
// (when enabled) unrenderable MIME type; everything else is displayed.
func Resolve(in Input) Decision {
	d := Decision{
		MimeType:          DetectMimeType(in.ContentType, in.Body),
		SuggestedFilename: SuggestFilename(in.AnchorDownloadName, in.ContentDisposition, in.URL),
	}

	switch {
	case in.UserAction == ActionExplicitSaveAs:
		d.Outcome, d.Reason = OutcomeDownload, ReasonUserRequestedSaveAs
	case in.AnchorHasDownloadAttribute:
		d.Outcome, d.Reason = OutcomeDownload, ReasonAnchorDownloadAttribute
	case IsAttachment(in.ContentDisposition):
		d.Outcome, d.Reason = OutcomeDownload, ReasonContentDispositionAttachment
	case in.DownloadUnrenderable && d.MimeType != "" && !IsRenderable(d.MimeType):
		d.Outcome, d.Reason = OutcomeDownload, ReasonUnrenderableMimeType
	default:
		d.Outcome, d.Reason = OutcomeDisplay, ReasonNone
	}

	return d
}

// IsAttachment reports whether a Content-Disposition value has the
// attachment type. Parameters are ignored; values that fail to parse are
// judged on the token before the first ';'.
func IsAttachment(contentDisposition string) bool {
	return dispositionType(contentDisposition) == "attachment"
}

func dispositionType(contentDisposition string) string {
	if strings.TrimSpace(contentDisposition) == "" {
		return ""
	}
	if disp, _, err := mime.ParseMediaType(contentDisposition); err == nil {
		return disp
	}
	token, _, _ := strings.Cut(contentDisposition, ";")
	return strings.ToLower(strings.TrimSpace(token))
}

// DetectMimeType returns the declared media type when the server sent one,
// otherwise the sniffed type. Parameters are stripped. An empty body with no
// declared type has no type.
func DetectMimeType(declared string, body []byte) string {
	if mt := mediaType(declared); mt != "" {
		return mt
	}
	return SniffMimeType(body)
}

// SniffMimeType detects a media type from content alone.
func SniffMimeType(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > sniffLen {
		body = body[:sniffLen]
	}
	return mediaType(http.DetectContentType(body))
}

func mediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(value); err == nil {
		return mt
	}
	token, _, _ := strings.Cut(value, ";")
	token = strings.ToLower(strings.TrimSpace(token))
	if !strings.Contains(token, "/") {
		return ""
	}
	return token
}

var renderableTypes = map[string]bool{
	"application/xhtml+xml":  true,
	"application/xml":        true,
	"application/json":       true,
	"application/javascript": true,
	"application/pdf":        true,
	"image/svg+xml":          true,
}

// IsRenderable reports whether a browser shows this media type inline.
func IsRenderable(mimeType string) bool {
	mt := mediaType(mimeType)
	if renderableTypes[mt] {
		return true
	}
	major, _, _ := strings.Cut(mt, "/")
	switch major {
	case "text", "image", "audio", "video":
		return true
	}
	return false
}
