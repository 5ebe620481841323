package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender saves each message as <timestamp>_<tag>.html plus a .json
// metadata file in dir.
type DevSender struct {
	dir string
	now func() time.Time
}

func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir, now: time.Now}
}

type devMetadata struct {
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
}

func (d *DevSender) SendEmail(_ context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrFailedToSendEmail, err)
	}

	now := d.now()
	name := params.Tag
	if name == "" {
		name = params.Subject
	}
	base := filepath.Join(d.dir, now.Format("2006_01_02_150405.000000")+"_"+safeFilename(name))

	body := params.BodyHTML
	if body == "" {
		body = "<pre>" + params.BodyText + "</pre>"
	}
	if err := os.WriteFile(base+".html", []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: write html: %v", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: now.Format(time.RFC3339),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal metadata: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(base+".json", meta, 0o644); err != nil {
		return fmt.Errorf("%w: write metadata: %v", ErrFailedToSendEmail, err)
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func safeFilename(s string) string {
	s = unsafeFilenameChars.ReplaceAllString(strings.ReplaceAll(s, " ", "_"), "")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		return "email"
	}
	return strings.ToLower(s)
}
